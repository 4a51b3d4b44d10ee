// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
)

// ModuleManifest is a decoded `module` block.
type ModuleManifest struct {
	Name          string
	Initializer   string
	FSInformation *FSInfo
}

type moduleFileSchema struct {
	Modules []*hclModule `hcl:"module,block"`
}

type hclModule struct {
	Name        string `hcl:"name,label"`
	Initializer string `hcl:"initializer,optional"`
}

// ParseModuleFile parses path and decodes the single `module` block it must
// contain.
func (p *Parser) ParseModuleFile(path string) (*ModuleManifest, error) {
	file, diags := p.ParseFile(path)
	if diags.HasErrors() {
		return nil, diags
	}
	return DecodeModule(file, path)
}

// DecodeModule decodes the `module` block of an already parsed file.
func DecodeModule(file *hcl.File, path string) (*ModuleManifest, error) {
	if file == nil {
		return nil, fmt.Errorf("HCL file is nil")
	}

	schema := &moduleFileSchema{}
	if diags := gohcl.DecodeBody(file.Body, nil, schema); diags.HasErrors() {
		return nil, diags
	}
	if len(schema.Modules) != 1 {
		return nil, fmt.Errorf("expected exactly one module block, found %d", len(schema.Modules))
	}

	block := schema.Modules[0]
	if block.Name == "" {
		return nil, fmt.Errorf("module identifier is empty")
	}
	if block.Initializer == "" {
		return nil, fmt.Errorf("module %q does not name an initializer", block.Name)
	}

	return &ModuleManifest{
		Name:          block.Name,
		Initializer:   block.Initializer,
		FSInformation: NewFSInfo(path),
	}, nil
}
