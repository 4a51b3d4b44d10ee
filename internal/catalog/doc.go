// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package catalog publishes the command registry to the remote service.
//
// The Coordinator serializes "replace the whole catalog" calls: at most one
// call is in flight, requests made meanwhile collapse into a single rerun
// carrying the latest snapshot, and requests made before the connection is
// ready are held in a deferred slot until MarkReady.
package catalog
