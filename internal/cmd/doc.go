// Package cmd provides helpers for executing external commands with proper error handling.
//
// Every command runs under a context, is logged in verbose mode via the
// context logger, and has its stderr folded into the returned error.
//
// # Usage
//
//	out, err := cmd.OutputContext(ctx, repoPath, "git", "rev-parse", "HEAD")
//	if err != nil {
//	    return fmt.Errorf("rev-parse: %w", err)
//	}
//
// # Exit codes as data
//
// Several git plumbing commands report results through their exit status
// (merge-base with no common ancestor, diff --quiet, merge-tree conflicts).
// Non-zero exits are returned as [*ExitError], and [ExitCode] extracts the
// status so callers can distinguish "answered no" from "failed".
//
// A cancelled or expired context kills the process and the context error is
// returned unchanged, so callers can test it with [errors.Is].
package cmd
