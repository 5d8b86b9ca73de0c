package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Allowed values for enum fields.
var (
	ValidForgeTypes = []string{"github", "gitlab"}
	ValidFormats    = []string{"table", "json"}
	ValidThemeNames = []string{"none", "default", "dracula", "nord", "gruvbox", "catppuccin"}
	ValidThemeModes = []string{"auto", "light", "dark"}
)

// KeyName renders a [list] key the way it appears in the config file.
func KeyName(key string) string {
	return "list." + key
}

// FlagName renders a [list] key as the matching "wts list" flag.
func FlagName(key string) string {
	return "--" + strings.ReplaceAll(key, "_", "-")
}

// Validate checks list settings. name controls how a bad key is reported,
// see KeyName and FlagName.
func (l ListConfig) Validate(name func(key string) string) error {
	counts := []struct {
		key string
		v   int
	}{
		{"concurrency", l.Concurrency},
		{"stale_threshold", l.StaleThreshold},
	}
	for _, c := range counts {
		if c.v < 0 {
			return fmt.Errorf("invalid %s %d: must not be negative", name(c.key), c.v)
		}
	}

	durations := []struct {
		key string
		v   Duration
	}{
		{"timeout", l.Timeout},
		{"deadline", l.Deadline},
	}
	for _, d := range durations {
		if d.v < 0 {
			return fmt.Errorf("invalid %s %s: must not be negative", name(d.key), time.Duration(d.v))
		}
	}

	return validateEnum(l.Format, name("format"), ValidFormats)
}

func (c *Config) validate() error {
	if err := c.List.Validate(KeyName); err != nil {
		return err
	}
	if c.CI.TTL < 0 {
		return fmt.Errorf("invalid ci.ttl %s: must not be negative", c.CI.TTL.Std())
	}
	for host, forgeType := range c.Hosts {
		if err := validateEnum(forgeType, fmt.Sprintf("forge type for host %q", host), ValidForgeTypes); err != nil {
			return err
		}
	}
	if err := validateEnum(c.Theme.Name, "theme.name", ValidThemeNames); err != nil {
		return err
	}
	return validateEnum(c.Theme.Mode, "theme.mode", ValidThemeModes)
}

// validateEnum accepts an empty value or one of allowed.
func validateEnum(value, field string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
}

// formatOptions joins quoted options: `"a" or "b"`, `"a", "b", or "c"`.
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
