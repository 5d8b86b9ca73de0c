// Command wts lists every worktree and branch of a repository together with
// its status relative to the default branch.
package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set by goreleaser. A plain "go install" leaves them at their defaults and
// versionString falls back to the embedded VCS stamp.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute()
}

func versionString() string {
	v, c, d := version, commit, date
	if c == "none" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}
	return fmt.Sprintf("wts %s (%s, %s, %s)", v, c[:min(7, len(c))], d, runtime.Version())
}
