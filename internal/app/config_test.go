package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hookhost/internal/watcher"
)

func validConfig() Config {
	return Config{
		GatewayURL:    "http://localhost:3000",
		APIBaseURL:    "http://localhost:3000/api",
		ApplicationID: "app",
		Token:         "secret",
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(validConfig())

	require.NoError(t, err)
	assert.Equal(t, DefaultCommandsDir, cfg.CommandsDir)
	assert.Equal(t, DefaultModulesDir, cfg.ModulesDir)
	assert.Equal(t, DefaultConfigDir, cfg.ConfigDir)
	assert.Equal(t, watcher.DefaultWindow, cfg.DebounceWindow)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewConfig_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing gateway", func(c *Config) { c.GatewayURL = "" }, "gateway URL"},
		{"missing api", func(c *Config) { c.APIBaseURL = "" }, "API base URL"},
		{"missing application", func(c *Config) { c.ApplicationID = "" }, "application ID"},
		{"missing token", func(c *Config) { c.Token = "" }, "token"},
		{"bad port", func(c *Config) { c.HealthcheckPort = 70000 }, "healthcheck port"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			_, err := NewConfig(cfg)

			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}
