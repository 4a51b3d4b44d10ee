// Package ping provides the "ping" command: it measures latency and shows
// a value from the shared config store.
package ping

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/hookhost/internal/ctxlog"
	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/host"
	"github.com/vk/hookhost/internal/interaction"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// ConfigName is the config document the command reads.
const ConfigName = "config.json"

// Config is the shape of ConfigName.
type Config struct {
	Greeting string `json:"greeting"`
	Version  string `json:"version"`
}

// DefaultConfig is written when ConfigName does not exist yet.
var DefaultConfig = Config{Greeting: "Hello from config!", Version: "1.0.0"}

// OnPing replies immediately, then edits the reply with the measured
// latency and the configured greeting.
func OnPing(ctx context.Context, req *interaction.Request) error {
	logger := ctxlog.FromContext(ctx)
	started := time.Now()

	if err := req.Reply(ctx, interaction.Message{Content: "Pinging..."}); err != nil {
		return err
	}
	roundTrip := time.Since(started)

	cfg := DefaultConfig
	if store := host.ServicesFrom(ctx).Configs; store != nil {
		if err := store.Decode(ConfigName, DefaultConfig, &cfg); err != nil {
			logger.Warn("Failed to read config document, using defaults.", "config", ConfigName, "error", err)
			cfg = DefaultConfig
		}
	}

	latency := started.Sub(req.Event.CreatedAt)
	if req.Event.CreatedAt.IsZero() || latency < 0 {
		latency = 0
	}

	content := fmt.Sprintf("Pong! Latency is %dms. API Latency is %dms.\nConfig greeting: %s",
		latency.Milliseconds(), roundTrip.Milliseconds(), cfg.Greeting)
	if verbose, _ := req.Bool("verbose"); verbose {
		content += fmt.Sprintf("\nConfig version: %s", cfg.Version)
	}

	logger.Debug("Ping measured.", "latency", latency, "round_trip", roundTrip)
	return req.EditReply(ctx, interaction.Message{Content: content})
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterCommand("ping", OnPing)
}
