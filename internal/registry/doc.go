// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package registry builds command snapshots from the commands directory.
//
// A Snapshot is the immutable set of commands the host serves at one point
// in time. The Loader produces a complete replacement snapshot on every load
// cycle: each manifest is parsed fresh, bound to its compiled Go handler and
// validated in isolation, so a single broken manifest only removes that
// command. The caller installs the result with a single pointer swap;
// readers never see a partially built snapshot.
package registry
