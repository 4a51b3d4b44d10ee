// Package welcome provides the "welcome" module initializer, which greets
// members joining the server.
package welcome

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/hookhost/internal/handlers"
	"github.com/vk/hookhost/internal/host"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// ConfigName is the config document the module reads.
const ConfigName = "welcome.json"

// EventMemberJoin is the event the module listens for.
const EventMemberJoin = "member_join"

// placeholderChannel marks a channel id that was never configured.
const placeholderChannel = "YOUR_CHANNEL_ID"

// Config is the shape of ConfigName.
type Config struct {
	WelcomeChannelID string `json:"welcomeChannelId"`
	WelcomeMessage   string `json:"welcomeMessage"`
}

// DefaultConfig is written when ConfigName does not exist yet.
var DefaultConfig = Config{
	WelcomeChannelID: placeholderChannel,
	WelcomeMessage:   "Welcome to the server, {username}!",
}

// Initialize reads the module config and subscribes to member joins.
func Initialize(ctx context.Context, hctx *host.Context) error {
	cfg := DefaultConfig
	if err := hctx.Configs().Decode(ConfigName, DefaultConfig, &cfg); err != nil {
		return fmt.Errorf("failed to load %s: %w", ConfigName, err)
	}

	logger := hctx.Logger()
	if cfg.WelcomeChannelID == "" || cfg.WelcomeChannelID == placeholderChannel {
		logger.Warn("Welcome channel is not configured, greetings are disabled.", "config", ConfigName)
	}

	hctx.On(EventMemberJoin, func(ctx context.Context, data map[string]any) error {
		if cfg.WelcomeChannelID == "" || cfg.WelcomeChannelID == placeholderChannel {
			return nil
		}
		username, _ := data["username"].(string)
		if username == "" {
			username = "friend"
		}
		content := strings.ReplaceAll(cfg.WelcomeMessage, "{username}", username)

		messenger := hctx.Messenger()
		if messenger == nil {
			return fmt.Errorf("no messenger available")
		}
		return messenger.SendMessage(ctx, cfg.WelcomeChannelID, content)
	})

	logger.Info("Welcome module initialized.", "channel", cfg.WelcomeChannelID)
	return nil
}

// Register registers the initializer with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterInitializer("welcome", Initialize)
}
