// Package fetch provides the "fetch" command, which issues a GET request
// with the shared HTTP client.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/host"
	"github.com/vk/hookhost/internal/interaction"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnFetch defers the response, fetches the "url" option and follows up
// with the status and body size.
func OnFetch(ctx context.Context, req *interaction.Request) error {
	url, ok := req.String("url")
	if !ok || url == "" {
		return req.Reply(ctx, interaction.Message{Content: "Please provide a url.", Ephemeral: true})
	}

	client := host.ServicesFrom(ctx).HTTP
	if client == nil {
		return errors.New("http client is not available")
	}

	logger := ctxlog.FromContext(ctx).With("url", url)
	if err := req.Defer(ctx, false); err != nil {
		return err
	}

	logger.Info("Making HTTP request")
	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	logger.Info("Received HTTP response", "status", res.Status())

	return req.FollowUp(ctx, interaction.Message{
		Content: fmt.Sprintf("%s responded with %d (%d bytes).", url, res.StatusCode(), len(res.Bytes())),
	})
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterCommand("fetch", OnFetch)
}
