// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package interaction

import (
	"context"
	"time"
)

// Event is an inbound request to run a command.
type Event struct {
	ID        string         `json:"id"`
	Command   string         `json:"command"`
	Options   map[string]any `json:"options,omitempty"`
	User      User           `json:"user"`
	ChannelID string         `json:"channel_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// User identifies who issued the request.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Message is a response body.
type Message struct {
	Content   string `json:"content"`
	Ephemeral bool   `json:"ephemeral,omitempty"`
}

// Responder delivers responses for an event to the remote service.
type Responder interface {
	Reply(ctx context.Context, eventID string, msg Message) error
	Defer(ctx context.Context, eventID string, ephemeral bool) error
	FollowUp(ctx context.Context, eventID string, msg Message) error
	EditReply(ctx context.Context, eventID string, msg Message) error
}
