// Package config handles loading and validation of wts configuration.
//
// Configuration is read from ~/.config/wts/config.toml, or from the file
// named by the WTS_CONFIG environment variable.
//
// # Configuration Sources (highest priority first)
//
//   - Command-line flags
//   - Per-repo .wts.toml at the worktree root
//   - Global config file
//   - Default values
//
// # Key Settings
//
//   - list.concurrency: jobs in flight at once (default 32)
//   - list.timeout: per-job budget (default "5s")
//   - list.deadline: budget for the whole collection (default off)
//   - list.stale_threshold: commits behind the target after which only
//     cheap classification runs (default 50)
//   - ci.ttl: base lifetime of cached CI status (default "30s")
//
// Durations are Go duration strings ("750ms", "1m30s").
//
// The [hosts] section maps custom domains to forge types for self-hosted
// instances:
//
//	[hosts]
//	"gitlab.internal.corp" = "gitlab"
//
// The [theme] section picks a colour preset and mode (auto, light, dark).
package config
