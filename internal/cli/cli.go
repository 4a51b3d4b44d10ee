package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/vk/hookhost/internal/app"
)

// TokenEnv is the environment variable holding the bot token.
const TokenEnv = "HOOKHOST_TOKEN"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// fileConfig mirrors the flags in a TOML config file.
type fileConfig struct {
	CommandsDir        string `toml:"commands_dir"`
	ModulesDir         string `toml:"modules_dir"`
	ConfigDir          string `toml:"config_dir"`
	Debounce           string `toml:"debounce"`
	NoWatch            bool   `toml:"no_watch"`
	GatewayURL         string `toml:"gateway_url"`
	GatewayNamespace   string `toml:"gateway_namespace"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	APIBaseURL         string `toml:"api_base_url"`
	ApplicationID      string `toml:"application_id"`
	HTTPTimeout        string `toml:"http_timeout"`
	LogFormat          string `toml:"log_format"`
	LogLevel           string `toml:"log_level"`
	HealthcheckPort    int    `toml:"healthcheck_port"`
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("hookhost", pflag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
hookhost - A hot-reloading extension host for chat bots.

Usage:
  hookhost [options]

The bot token is read from the `+TokenEnv+` environment variable.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.StringP("config", "c", "", "Path to a TOML config file. Flags override its values.")
	commandsFlag := flagSet.String("commands-dir", app.DefaultCommandsDir, "Directory of command manifests.")
	modulesFlag := flagSet.String("modules-dir", app.DefaultModulesDir, "Directory of module manifests.")
	configDirFlag := flagSet.String("config-dir", app.DefaultConfigDir, "Directory of JSON config documents.")
	debounceFlag := flagSet.Duration("debounce", 100*time.Millisecond, "Quiet period before a directory change is reloaded.")
	noWatchFlag := flagSet.Bool("no-watch", false, "Disable hot reload.")
	gatewayFlag := flagSet.String("gateway-url", "", "socket.io URL of the remote service.")
	namespaceFlag := flagSet.String("gateway-namespace", "", "socket.io namespace.")
	insecureFlag := flagSet.Bool("insecure-skip-verify", false, "Skip TLS certificate verification.")
	apiFlag := flagSet.String("api-base-url", "", "Base URL of the remote REST API.")
	appIDFlag := flagSet.String("application-id", "", "Application identifier used for the command catalog.")
	httpTimeoutFlag := flagSet.Duration("http-timeout", app.DefaultHTTPTimeout, "Timeout of outbound HTTP requests.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := app.Config{
		CommandsDir:        *commandsFlag,
		ModulesDir:         *modulesFlag,
		ConfigDir:          *configDirFlag,
		DebounceWindow:     *debounceFlag,
		NoWatch:            *noWatchFlag,
		GatewayURL:         *gatewayFlag,
		GatewayNamespace:   *namespaceFlag,
		InsecureSkipVerify: *insecureFlag,
		APIBaseURL:         *apiFlag,
		ApplicationID:      *appIDFlag,
		HTTPTimeout:        *httpTimeoutFlag,
		HealthcheckPort:    *healthPortFlag,
		LogFormat:          *logFormatFlag,
		LogLevel:           *logLevelFlag,
		Token:              os.Getenv(TokenEnv),
	}

	if *configFlag != "" {
		if err := applyFile(&cfg, *configFlag, flagSet); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "commands_dir", config.CommandsDir, "gateway_url", config.GatewayURL)
	return config, false, nil
}

// applyFile overlays the values of a TOML file onto cfg, skipping every
// key whose flag was set explicitly.
func applyFile(cfg *app.Config, path string, flags *pflag.FlagSet) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown keys %v", path, undecoded)
	}

	set := func(key, flag string, apply func() error) error {
		if !md.IsDefined(key) || flags.Changed(flag) {
			return nil
		}
		return apply()
	}
	str := func(dst *string, v string) func() error {
		return func() error { *dst = v; return nil }
	}
	dur := func(dst *time.Duration, v, key string) func() error {
		return func() error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config file %s: invalid %s: %w", path, key, err)
			}
			*dst = d
			return nil
		}
	}

	steps := []error{
		set("commands_dir", "commands-dir", str(&cfg.CommandsDir, fc.CommandsDir)),
		set("modules_dir", "modules-dir", str(&cfg.ModulesDir, fc.ModulesDir)),
		set("config_dir", "config-dir", str(&cfg.ConfigDir, fc.ConfigDir)),
		set("debounce", "debounce", dur(&cfg.DebounceWindow, fc.Debounce, "debounce")),
		set("no_watch", "no-watch", func() error { cfg.NoWatch = fc.NoWatch; return nil }),
		set("gateway_url", "gateway-url", str(&cfg.GatewayURL, fc.GatewayURL)),
		set("gateway_namespace", "gateway-namespace", str(&cfg.GatewayNamespace, fc.GatewayNamespace)),
		set("insecure_skip_verify", "insecure-skip-verify", func() error { cfg.InsecureSkipVerify = fc.InsecureSkipVerify; return nil }),
		set("api_base_url", "api-base-url", str(&cfg.APIBaseURL, fc.APIBaseURL)),
		set("application_id", "application-id", str(&cfg.ApplicationID, fc.ApplicationID)),
		set("http_timeout", "http-timeout", dur(&cfg.HTTPTimeout, fc.HTTPTimeout, "http_timeout")),
		set("log_format", "log-format", str(&cfg.LogFormat, fc.LogFormat)),
		set("log_level", "log-level", str(&cfg.LogLevel, fc.LogLevel)),
		set("healthcheck_port", "healthcheck-port", func() error { cfg.HealthcheckPort = fc.HealthcheckPort; return nil }),
	}
	return errors.Join(steps...)
}
