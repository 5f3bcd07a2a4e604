package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Commands understood by the application.
const (
	CommandRun       = "run"
	CommandDump      = "dump"
	CommandWatch     = "watch"
	CommandRemoteSet = "remote-set"
)

// Config holds all the necessary configuration for an App instance to run.
// Fields tagged env are read by LoadEnv; CLI flags override them.
type Config struct {
	Command string

	ConfigPaths []string `env:"SCRIPTVARS_CONFIG" envSeparator:","`
	// StateDir holds one state file per registry unless a registry declares
	// its own save_path.
	StateDir string `env:"SCRIPTVARS_STATE_DIR" envDefault:"state"`
	// Registry limits the run to a single declared registry.
	Registry    string `env:"SCRIPTVARS_REGISTRY"`
	ListenAddr  string `env:"SCRIPTVARS_LISTEN"`
	HistoryPath string `env:"SCRIPTVARS_HISTORY"`
	// FromHistory restores registries from the newest history entry instead
	// of their state files.
	FromHistory bool `env:"SCRIPTVARS_FROM_HISTORY"`

	LogFormat string `env:"SCRIPTVARS_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"SCRIPTVARS_LOG_LEVEL" envDefault:"info"`

	RemoteURL string `env:"SCRIPTVARS_URL" envDefault:"http://localhost:8080/socket.io/"`
	Namespace string `env:"SCRIPTVARS_NAMESPACE" envDefault:"/"`

	// Reset restores every resettable variable to its default before Sets
	// are applied.
	Reset   bool
	Sets    []string
	Signals []string
}

// LoadEnv returns a Config populated from SCRIPTVARS_* environment
// variables.
func LoadEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// NewConfig validates cfg and fills in the default command.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		cfg.Command = CommandRun
	}
	switch cfg.Command {
	case CommandRun, CommandDump:
		if len(cfg.ConfigPaths) == 0 {
			return nil, errors.New("at least one CONFIG_PATH is required")
		}
	case CommandWatch:
		if cfg.RemoteURL == "" {
			return nil, errors.New("a hub URL is required")
		}
	case CommandRemoteSet:
		if cfg.RemoteURL == "" {
			return nil, errors.New("a hub URL is required")
		}
		if len(cfg.Sets) == 0 && len(cfg.Signals) == 0 {
			return nil, errors.New("remote-set needs at least one -set or -signal")
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.FromHistory && cfg.HistoryPath == "" {
		return nil, errors.New("-from-history needs -history")
	}

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := ValidateFormat(cfg.LogFormat); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
}

// ValidateFormat checks a log format name.
func ValidateFormat(formatStr string) error {
	switch strings.ToLower(formatStr) {
	case "text", "json":
		return nil
	}
	return errors.New("invalid log-format: must be 'text' or 'json'")
}
