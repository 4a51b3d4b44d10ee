// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the CommandManifest, the declarative half of a command
// unit. The other half is the compiled Go handler it names.
//
// The CommandSpec is the part that leaves the process: it is what the remote
// catalog advertises. The handler name never does.
package model

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
)

var commandNamePattern = regexp.MustCompile(`^[-_a-z0-9]{1,32}$`)

// CommandSpec is the serializable description of a command.
type CommandSpec struct {
	Name        string
	Description string
	Options     []OptionSpec
}

// OptionSpec describes a single typed command option.
type OptionSpec struct {
	Name        string
	Description string
	Type        cty.Type
	Required    bool
}

// Option returns the option with the given name.
func (s CommandSpec) Option(name string) (OptionSpec, bool) {
	for _, opt := range s.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return OptionSpec{}, false
}

// CommandManifest is a decoded `command` block.
type CommandManifest struct {
	Spec          CommandSpec
	Handler       string
	FSInformation *FSInfo
}

type commandFileSchema struct {
	Commands []*hclCommand `hcl:"command,block"`
}

type hclCommand struct {
	Name        string       `hcl:"name,label"`
	Description string       `hcl:"description,optional"`
	Handler     string       `hcl:"handler,optional"`
	Options     []*hclOption `hcl:"option,block"`
}

type hclOption struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Required    bool           `hcl:"required,optional"`
}

// ParseCommandFile parses path and decodes the single `command` block it
// must contain.
func (p *Parser) ParseCommandFile(path string) (*CommandManifest, error) {
	file, diags := p.ParseFile(path)
	if diags.HasErrors() {
		return nil, diags
	}
	return DecodeCommand(file, path)
}

// DecodeCommand decodes and structurally validates the `command` block of
// an already parsed file.
func DecodeCommand(file *hcl.File, path string) (*CommandManifest, error) {
	if file == nil {
		return nil, fmt.Errorf("HCL file is nil")
	}

	schema := &commandFileSchema{}
	if diags := gohcl.DecodeBody(file.Body, nil, schema); diags.HasErrors() {
		return nil, diags
	}

	switch len(schema.Commands) {
	case 0:
		return nil, fmt.Errorf("no command block found")
	case 1:
	default:
		return nil, fmt.Errorf("expected exactly one command block, found %d", len(schema.Commands))
	}
	block := schema.Commands[0]

	if block.Name == "" {
		return nil, fmt.Errorf("command identifier is empty")
	}
	if !commandNamePattern.MatchString(block.Name) {
		return nil, fmt.Errorf("command identifier %q must match %s", block.Name, commandNamePattern)
	}
	if block.Handler == "" {
		return nil, fmt.Errorf("command %q does not name a handler", block.Name)
	}

	spec := CommandSpec{
		Name:        block.Name,
		Description: block.Description,
		Options:     make([]OptionSpec, 0, len(block.Options)),
	}

	seen := make(map[string]struct{}, len(block.Options))
	sawOptional := false
	for _, opt := range block.Options {
		if !commandNamePattern.MatchString(opt.Name) {
			return nil, fmt.Errorf("option name %q must match %s", opt.Name, commandNamePattern)
		}
		if _, dup := seen[opt.Name]; dup {
			return nil, fmt.Errorf("option %q is declared more than once", opt.Name)
		}
		seen[opt.Name] = struct{}{}

		if opt.Required && sawOptional {
			return nil, fmt.Errorf("required option %q must be declared before optional options", opt.Name)
		}
		sawOptional = sawOptional || !opt.Required

		ty, diags := optionType(opt.Type)
		if diags.HasErrors() {
			return nil, diags
		}

		spec.Options = append(spec.Options, OptionSpec{
			Name:        opt.Name,
			Description: opt.Description,
			Type:        ty,
			Required:    opt.Required,
		})
	}

	return &CommandManifest{
		Spec:          spec,
		Handler:       block.Handler,
		FSInformation: NewFSInfo(path),
	}, nil
}
