package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// PathEnv overrides the location of the global config file.
const PathEnv = "WTS_CONFIG"

// Defaults for [list] and [ci].
const (
	DefaultConcurrency    = 32
	DefaultTimeout        = 5 * time.Second
	DefaultStaleThreshold = 50
	DefaultCITTL          = 30 * time.Second
)

// Duration is a time.Duration written as a string ("5s", "1m30s") in TOML.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration the way time.Duration prints it.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ListConfig holds defaults for "wts list". Flags override them.
type ListConfig struct {
	Concurrency    int      `toml:"concurrency"`
	Timeout        Duration `toml:"timeout"`  // per job; 0 disables
	Deadline       Duration `toml:"deadline"` // whole collection; 0 disables
	Full           bool     `toml:"full"`
	Branches       bool     `toml:"branches"`
	Remotes        bool     `toml:"remotes"`
	StaleThreshold int      `toml:"stale_threshold"`
	Format         string   `toml:"format"`
}

// CIConfig holds CI lookup settings.
type CIConfig struct {
	TTL Duration `toml:"ttl"`
}

// ThemeConfig selects a colour preset and optional per-colour overrides.
type ThemeConfig struct {
	Name    string `toml:"name"`
	Mode    string `toml:"mode"` // "auto", "light" or "dark"
	Primary string `toml:"primary"`
	Accent  string `toml:"accent"`
	Success string `toml:"success"`
	Error   string `toml:"error"`
	Muted   string `toml:"muted"`
	Normal  string `toml:"normal"`
	Info    string `toml:"info"`
	Warning string `toml:"warning"`
}

// Config holds the wts configuration
type Config struct {
	List  ListConfig        `toml:"list"`
	CI    CIConfig          `toml:"ci"`
	Hosts map[string]string `toml:"hosts,omitempty"` // domain -> forge type mapping
	Theme ThemeConfig       `toml:"theme"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		List: ListConfig{
			Concurrency:    DefaultConcurrency,
			Timeout:        Duration(DefaultTimeout),
			StaleThreshold: DefaultStaleThreshold,
			Format:         "table",
		},
		CI: CIConfig{TTL: Duration(DefaultCITTL)},
	}
}

// Path returns the location of the global config file.
func Path() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wts", "config.toml"), nil
}

// Load reads the global config file.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads config from path, filling unset fields with defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

type ctxKey struct{}

// WithConfig attaches the effective config to the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the config attached by WithConfig, or nil.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}
	return nil
}

const defaultConfig = `# wts configuration

# Defaults for "wts list"; command-line flags override these.
[list]
# concurrency = 32        # jobs in flight at once
# timeout = "5s"          # per job; a slow job shows ⧖ and is abandoned
# deadline = "0s"         # whole collection; 0 waits for every job
# full = false            # include CI status and branch diff stats
# branches = false        # include branches without a worktree
# remotes = false         # include remote branches without a local branch
# stale_threshold = 50    # skip expensive checks for branches this far behind
# format = "table"        # table or json

# CI status is cached between runs for ttl plus up to the same amount again.
[ci]
# ttl = "30s"

# Host mappings for self-hosted GitHub Enterprise or GitLab instances.
# [hosts]
# "github.mycompany.com" = "github"
# "gitlab.internal.corp" = "gitlab"

# Colours. Presets: none, default, dracula, nord, gruvbox, catppuccin.
# [theme]
# name = "default"
# mode = "auto"           # auto, light or dark
# primary = "#89b4fa"     # per-colour overrides
`

// Init creates a default config file at Path().
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}
