// Package config resolves shelluse configuration from defaults, an optional
// TOML file, and environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/steveyegge/shelluse/internal/tmux"
)

// Environment variables read by Load.
const (
	EnvConfig         = "SHELL_USE_CONFIG"
	EnvSessions       = "SHELL_USE_SESSIONS"
	EnvSocket         = "SHELL_USE_SOCKET"
	EnvTmuxBin        = "SHELL_USE_TMUX_BIN"
	EnvLockDir        = "SHELL_USE_LOCK_DIR"
	EnvOTELMetricsURL = "SHELL_USE_OTEL_METRICS_URL"
	EnvOTELLogsURL    = "SHELL_USE_OTEL_LOGS_URL"
)

const (
	defaultConfigDir   = "shelluse"
	defaultConfigFile  = "config.toml"
	sessionsSeparator  = ","
	sessionsEnvExample = "Example: SHELL_USE_SESSIONS=dev,work shelluse sessions"
)

// ErrNoSessions is returned by Validate when no session is allowlisted.
var ErrNoSessions = errors.New(EnvSessions + " environment variable is required")

// Config is the resolved shelluse configuration.
type Config struct {
	// Sessions is the allowlist, in order.
	Sessions []string `toml:"sessions"`

	// Socket routes every tmux call through this control socket (tmux -S).
	Socket string `toml:"socket,omitempty"`

	// TmuxBin is the tmux executable; looked up on PATH when not absolute.
	TmuxBin string `toml:"tmux_bin"`

	// LockDir holds per-session lock files. Empty means the runtime default.
	LockDir string `toml:"lock_dir,omitempty"`

	Telemetry TelemetryConfig `toml:"telemetry"`

	// Path is the config file that was read, if any.
	Path string `toml:"-"`
}

// TelemetryConfig selects OTLP endpoints. Both empty disables telemetry.
type TelemetryConfig struct {
	MetricsURL string `toml:"metrics_url,omitempty"`
	LogsURL    string `toml:"logs_url,omitempty"`
}

// Default returns the built-in configuration. It has no sessions and is
// therefore not valid on its own.
func Default() *Config {
	return &Config{TmuxBin: tmux.DefaultBinary}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load resolves configuration from the process environment.
func Load() (*Config, error) {
	return LoadWith(os.LookupEnv)
}

// LoadWith resolves configuration using lookup for environment access.
// A missing config file is not an error; a malformed one is.
func LoadWith(lookup LookupFunc) (*Config, error) {
	cfg := Default()

	// The default location is optional; an explicitly named file is not.
	if path, explicit := configPath(lookup); path != "" {
		err := cfg.loadFile(path)
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, err
		}
	}

	cfg.applyEnv(lookup)
	return cfg, nil
}

// configPath returns the file to read and whether it was named explicitly.
func configPath(lookup LookupFunc) (string, bool) {
	if p, ok := lookup(EnvConfig); ok && p != "" {
		return p, true
	}
	if dir, ok := lookup("XDG_CONFIG_HOME"); ok && dir != "" {
		return filepath.Join(dir, defaultConfigDir, defaultConfigFile), false
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile), false
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator configuration
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
		}
		return fmt.Errorf("reading config: %w", err)
	}

	md, err := toml.Decode(string(data), c)
	if err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("parsing config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if c.TmuxBin == "" {
		c.TmuxBin = tmux.DefaultBinary
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv(lookup LookupFunc) {
	if v, ok := lookup(EnvSessions); ok && v != "" {
		c.Sessions = ParseSessions(v)
	}
	if v, ok := lookup(EnvSocket); ok && v != "" {
		c.Socket = v
	}
	if v, ok := lookup(EnvTmuxBin); ok && v != "" {
		c.TmuxBin = v
	}
	if v, ok := lookup(EnvLockDir); ok && v != "" {
		c.LockDir = v
	}
	if v, ok := lookup(EnvOTELMetricsURL); ok && v != "" {
		c.Telemetry.MetricsURL = v
	}
	if v, ok := lookup(EnvOTELLogsURL); ok && v != "" {
		c.Telemetry.LogsURL = v
	}
}

// ParseSessions splits a comma-separated allowlist. Entries are trimmed and
// empty entries dropped; no other normalization is applied.
func ParseSessions(s string) []string {
	var sessions []string
	for _, part := range strings.Split(s, sessionsSeparator) {
		if name := strings.TrimSpace(part); name != "" {
			sessions = append(sessions, name)
		}
	}
	return sessions
}

// Validate reports a configuration the gateway cannot start with.
func (c *Config) Validate() error {
	if len(c.Sessions) == 0 {
		return fmt.Errorf("%w\n%s", ErrNoSessions, sessionsEnvExample)
	}
	for _, s := range c.Sessions {
		if s == "" {
			return errors.New("config: empty session name in allowlist")
		}
	}
	return nil
}

// Runner builds the Command Runner this configuration selects: a
// SocketRunner when a socket is configured, a LocalRunner otherwise.
func (c *Config) Runner() tmux.Runner {
	if c.Socket != "" {
		return tmux.NewSocketRunner(c.Socket, c.TmuxBin)
	}
	return tmux.NewLocalRunner(c.TmuxBin)
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
