// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"fmt"
	"path/filepath"
)

// LoadError records a single unit that could not be loaded. The unit is
// skipped and the rest of its directory keeps loading.
type LoadError struct {
	Source string
	Reason string
}

// NewLoadError builds a LoadError for the file at path.
func NewLoadError(path string, err error) LoadError {
	return LoadError{Source: filepath.Base(path), Reason: err.Error()}
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}
