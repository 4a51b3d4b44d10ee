// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model decodes extension manifests from HCL files into typed Go
// structures.
//
// # Core Concepts
//
//   - CommandManifest: one `command` block. It declares the command's public
//     identity (name, description, typed options), which is what the remote
//     catalog advertises, and names the compiled Go handler that serves it.
//
//   - ModuleManifest: one `module` block naming a compiled Go initializer
//     that runs once per load cycle.
//
//   - Parser: parses manifest files and keeps the parsed sources for
//     diagnostic rendering. Every parse first discards the cached copy of the
//     path, so an edited file is always read fresh.
//
// Why bind names instead of code?
//
// Go code cannot be loaded from a watched directory at runtime. A manifest
// carries everything that may change without a rebuild: the identifier, the
// catalog description, the options, and which compiled handler answers. The
// registry validates the binding when it loads the manifest.
package model
