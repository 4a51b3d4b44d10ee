// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which stores file system metadata.
//
// The source path connects a decoded manifest back to its file on disk. It is
// used for load error reporting and for explaining identifier collisions,
// where the file enumerated later replaces the earlier one.
package model

import "path/filepath"

type FSInfo struct {
	FilePath string
}

func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// Name returns the base name of the source file.
func (i *FSInfo) Name() string {
	if i == nil {
		return ""
	}
	return filepath.Base(i.FilePath)
}
