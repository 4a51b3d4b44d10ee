// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package host provides the execution context shared by module
// initializers: event listeners, the outbound HTTP client, the config store
// and the messenger.
package host

import (
	"context"
	"log/slog"

	"github.com/vk/hookhost/internal/configstore"
	"github.com/vk/hookhost/internal/ctxlog"
	"resty.dev/v3"
)

// Messenger posts messages through the remote connection.
type Messenger interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// Services are the long-lived handles shared read-only by every module
// and command handler.
type Services struct {
	HTTP      *resty.Client
	Configs   *configstore.Store
	Messenger Messenger
}

// Context is what a module initializer receives.
type Context struct {
	module   string
	services Services
	pending  *Listeners
	logger   *slog.Logger
}

// NewContext returns the context for one module. Listeners registered
// through it join the generation gen.
func NewContext(ctx context.Context, module string, services Services, gen *Listeners) *Context {
	return &Context{
		module:   module,
		services: services,
		pending:  gen,
		logger:   ctxlog.FromContext(ctx).With("module", module),
	}
}

// Module returns the identifier of the module being initialized.
func (c *Context) Module() string { return c.module }

// On registers a listener for a named event.
func (c *Context) On(event string, fn Listener) {
	c.pending.add(c.module, event, fn)
}

// HTTP returns the shared HTTP client.
func (c *Context) HTTP() *resty.Client { return c.services.HTTP }

// Configs returns the shared config store.
func (c *Context) Configs() *configstore.Store { return c.services.Configs }

// Messenger returns the outbound messenger.
func (c *Context) Messenger() Messenger { return c.services.Messenger }

// Logger returns a logger tagged with the module identifier.
func (c *Context) Logger() *slog.Logger { return c.logger }
