package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/hookhost/internal/watcher"
)

// Default locations of the three extension directories.
const (
	DefaultCommandsDir = "extensions/commands"
	DefaultModulesDir  = "extensions/modules"
	DefaultConfigDir   = "extensions/config"
)

// DefaultHTTPTimeout applies to the shared HTTP client and the catalog API.
const DefaultHTTPTimeout = 10 * time.Second

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CommandsDir string
	ModulesDir  string
	ConfigDir   string

	DebounceWindow time.Duration
	NoWatch        bool

	GatewayURL         string
	GatewayNamespace   string
	InsecureSkipVerify bool
	Token              string

	APIBaseURL    string
	ApplicationID string
	HTTPTimeout   time.Duration

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CommandsDir == "" {
		cfg.CommandsDir = DefaultCommandsDir
	}
	if cfg.ModulesDir == "" {
		cfg.ModulesDir = DefaultModulesDir
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = watcher.DefaultWindow
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.GatewayURL == "" {
		return nil, errors.New("gateway URL is a required configuration field and cannot be empty")
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("API base URL is a required configuration field and cannot be empty")
	}
	if cfg.ApplicationID == "" {
		return nil, errors.New("application ID is a required configuration field and cannot be empty")
	}
	if cfg.Token == "" {
		return nil, errors.New("token is required; set it in the environment")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}

	return &cfg, nil
}
