// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Parser parses manifest files. It is safe for concurrent use.
type Parser struct {
	mu    sync.Mutex
	files map[string]*hcl.File
}

// NewParser returns an empty Parser.
func NewParser() *Parser {
	return &Parser{files: make(map[string]*hcl.File)}
}

// ParseFile discards any cached parse of path, then reads and parses the
// file again.
func (p *Parser) ParseFile(path string) (*hcl.File, hcl.Diagnostics) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.files, path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read file",
			Detail:   fmt.Sprintf("The manifest %q could not be read: %s.", path, err),
		}}
	}

	file, diags := hclsyntax.ParseConfig(src, path, hcl.Pos{Line: 1, Column: 1})
	if file != nil {
		p.files[path] = file
	}
	return file, diags
}

// Retain drops the cached parses of every path not in paths, so files
// removed from disk do not linger in the cache.
func (p *Parser) Retain(paths []string) {
	keep := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		keep[path] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for path := range p.files {
		if _, ok := keep[path]; !ok {
			delete(p.files, path)
		}
	}
}

// RenderError formats err with source snippets when it carries HCL
// diagnostics, and returns its plain message otherwise.
func (p *Parser) RenderError(err error) string {
	var diags hcl.Diagnostics
	if errors.As(err, &diags) {
		return p.Render(diags)
	}
	return err.Error()
}

// Cached reports whether a parse of path is currently cached.
func (p *Parser) Cached(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.files[path]
	return ok
}

// Render formats diagnostics with source snippets from the cached files.
func (p *Parser) Render(diags hcl.Diagnostics) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf bytes.Buffer
	wr := hcl.NewDiagnosticTextWriter(&buf, p.files, 0, false)
	if err := wr.WriteDiagnostics(diags); err != nil {
		return diags.Error()
	}
	return buf.String()
}
