// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file converts option `type` expressions into cty types.
//
// Catalog options are scalar: the remote service renders each option as a
// single input field. Only the primitive types are therefore accepted.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"
)

// optionType converts an HCL type expression (e.g. `string`) into its cty
// type, rejecting anything that is not a primitive.
func optionType(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, diags
	}

	if !ty.IsPrimitiveType() {
		return cty.NilType, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported option type",
			Detail:   fmt.Sprintf("Option type %s is not supported. Supported types are: string, number, bool.", ty.FriendlyName()),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return ty, nil
}
