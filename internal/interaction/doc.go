// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package interaction models an inbound command request and the responses
// sent back for it.
//
// Every request must receive exactly one initial response. The Request
// tracks this with a Status that leaves NotStarted exactly once, by
// compare-and-swap, so concurrent or repeated attempts cannot produce two
// initial responses. Fail uses the same flag to pick between a reply and a
// follow-up when a handler errors out.
package interaction
