package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repo config file, read from the worktree root.
const LocalConfigFileName = ".wts.toml"

// LocalConfig holds per-repo overrides. Nil pointers inherit from the
// global config.
type LocalConfig struct {
	List LocalList `toml:"list"`
	CI   LocalCI   `toml:"ci"`
}

// LocalList holds [list] overrides.
type LocalList struct {
	Full           *bool     `toml:"full"`
	Branches       *bool     `toml:"branches"`
	Remotes        *bool     `toml:"remotes"`
	Timeout        *Duration `toml:"timeout"`
	StaleThreshold *int      `toml:"stale_threshold"`
}

// LocalCI holds [ci] overrides.
type LocalCI struct {
	TTL *Duration `toml:"ttl"`
}

// LoadLocal reads .wts.toml from dir.
// Returns nil (no error) if the file doesn't exist.
func LoadLocal(dir string) (*LocalConfig, error) {
	configFile := filepath.Join(dir, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	if t := local.List.Timeout; t != nil && *t < 0 {
		return nil, fmt.Errorf("invalid list.timeout %s in %s: must not be negative", t.Std(), configFile)
	}
	if n := local.List.StaleThreshold; n != nil && *n < 0 {
		return nil, fmt.Errorf("invalid list.stale_threshold %d in %s: must not be negative", *n, configFile)
	}
	if ttl := local.CI.TTL; ttl != nil && *ttl < 0 {
		return nil, fmt.Errorf("invalid ci.ttl %s in %s: must not be negative", ttl.Std(), configFile)
	}
	return &local, nil
}
