// Package serverconfig holds the process-level tunables of
// SPEC_FULL.md §7's "Ambient addition — configuration loading": listen
// address, default round timings, and log configuration, loaded once at
// process start and overridable by environment variables.
//
// Grounded on internal/config/config.go's single Config struct plus
// WithDefaultConfig() constructor idiom; BitTorrent networking/choke
// tunables are replaced by this domain's listen address and room
// defaults.
package serverconfig

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config is the thicketd server process's full set of tunables.
type Config struct {
	// ListenAddr is the TCP address the Server accepts connections on.
	ListenAddr string

	// ReadTimeout is the receive-inactivity timeout armed on every
	// accepted connection: a peer silent for longer is treated as
	// stalled. WriteTimeout is loaded like the other fields, but no
	// write deadline is applied to connections.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DefaultSelectionSeconds is loaded like the other fields but is not
	// read by rooms or the draft engine; a round that leaves its
	// selection time unspecified gets draftconfig.DefaultSelectionSeconds.
	DefaultSelectionSeconds int

	// LogLevel controls the minimum level the process's slog.Logger
	// emits.
	LogLevel slog.Level

	// LogAddSource appends the calling function's name to the file:line
	// source annotation on log records.
	LogAddSource bool
}

// WithDefaultConfig returns the process's baseline configuration before
// any environment overrides are applied.
func WithDefaultConfig() *Config {
	return &Config{
		ListenAddr:              ":7862",
		ReadTimeout:             45 * time.Second,
		WriteTimeout:            30 * time.Second,
		DefaultSelectionSeconds: 60,
		LogLevel:                slog.LevelInfo,
		LogAddSource:            false,
	}
}

// FromEnvironment overlays environment variable overrides onto cfg,
// mirroring the corpus's single config.Init() pass read once at process
// start. Unset variables leave cfg's existing value untouched;
// malformed values are ignored rather than aborting startup.
func FromEnvironment(cfg *Config) *Config {
	if v := os.Getenv("THICKETD_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("THICKETD_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReadTimeout = d
		}
	}
	if v := os.Getenv("THICKETD_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WriteTimeout = d
		}
	}
	if v := os.Getenv("THICKETD_DEFAULT_SELECTION_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultSelectionSeconds = n
		}
	}
	if v := os.Getenv("THICKETD_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := os.Getenv("THICKETD_LOG_ADD_SOURCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogAddSource = b
		}
	}

	return cfg
}
