// Package echo provides the handler behind the "test" command.
package echo

import (
	"context"

	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/interaction"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Reply is the fixed response of the handler.
const Reply = "Test successful!"

// OnEcho replies with a fixed message.
func OnEcho(ctx context.Context, req *interaction.Request) error {
	ctxlog.FromContext(ctx).Debug("Echo handler invoked.", "user", req.Event.User.Username)
	return req.Reply(ctx, interaction.Message{Content: Reply})
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterCommand("echo", OnEcho)
}
