package config

import "maps"

// MergeLocal applies per-repo overrides on top of global, returning a new
// Config without mutating global. Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	merged := *global
	merged.Hosts = maps.Clone(global.Hosts)

	if local.List.Full != nil {
		merged.List.Full = *local.List.Full
	}
	if local.List.Branches != nil {
		merged.List.Branches = *local.List.Branches
	}
	if local.List.Remotes != nil {
		merged.List.Remotes = *local.List.Remotes
	}
	if local.List.Timeout != nil {
		merged.List.Timeout = *local.List.Timeout
	}
	if local.List.StaleThreshold != nil {
		merged.List.StaleThreshold = *local.List.StaleThreshold
	}
	if local.CI.TTL != nil {
		merged.CI.TTL = *local.CI.TTL
	}
	return &merged
}
