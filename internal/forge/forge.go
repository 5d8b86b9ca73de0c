package forge

import (
	"context"
	"errors"
	"strings"

	"github.com/raphi011/wts/internal/cmd"
)

// Status is the aggregated CI state of a branch or pull request.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusRunning   Status = "running"
	StatusFailed    Status = "failed"
	StatusConflicts Status = "conflicts"
	StatusNoCI      Status = "no_ci"
	// StatusError means CI could not be queried right now (rate limit, network).
	StatusError Status = "error"
)

// Source says where a CI status came from.
type Source string

const (
	SourcePullRequest Source = "pull_request"
	SourceBranch      Source = "branch"
)

// MaxPRsToFetch bounds how many open PRs/MRs are listed per branch when
// looking for the one whose head lives in our repository.
const MaxPRsToFetch = 20

// CIStatus is the CI state reported for one branch.
type CIStatus struct {
	Status Status `json:"status"`
	Source Source `json:"source,omitempty"`
	// Stale is set when the PR head is not the local head commit.
	Stale bool   `json:"stale"`
	URL   string `json:"url,omitempty"`
}

// Query identifies the branch to look up.
type Query struct {
	// Dir is a directory inside the repository; the CLIs read the remote from it.
	Dir string
	// Branch is the branch name on the remote.
	Branch string
	// Head is the local head commit of the branch.
	Head string
	// HasUpstream reports whether the branch is pushed. Without a PR,
	// branch pipelines are only looked up for pushed branches.
	HasUpstream bool
	// RepoPath is the owner/repo (or GitLab group/project) path from the origin URL.
	RepoPath string
}

// Owner returns the first path component of RepoPath.
func (q Query) Owner() string {
	owner, _, _ := strings.Cut(q.RepoPath, "/")
	return owner
}

// Forge represents a git hosting service (GitHub, GitLab).
type Forge interface {
	// Name returns the forge name ("github" or "gitlab")
	Name() string

	// Check verifies the CLI is installed and authenticated
	Check(ctx context.Context) error

	// CIStatus fetches the CI state for a branch. A branch without any PR
	// or pipeline yields StatusNoCI, not an error.
	CIStatus(ctx context.Context, q Query) (CIStatus, error)
}

// RetriableError marks a failure that is likely to go away on its own,
// such as a rate limit or a network problem.
type RetriableError struct {
	Err error
}

func (e *RetriableError) Error() string {
	return e.Err.Error()
}

func (e *RetriableError) Unwrap() error {
	return e.Err
}

// IsRetriable reports whether err is a RetriableError.
func IsRetriable(err error) bool {
	var re *RetriableError
	return errors.As(err, &re)
}

var retriablePatterns = []string{
	"rate limit",
	"api rate",
	"403",
	"429",
	"timeout",
	"connection",
	"network",
}

// classify wraps a CLI failure as retriable when its stderr says so.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *cmd.ExitError
	if !errors.As(err, &ee) {
		return err
	}
	msg := strings.ToLower(ee.Msg)
	for _, p := range retriablePatterns {
		if strings.Contains(msg, p) {
			return &RetriableError{Err: err}
		}
	}
	return err
}

// nonInteractive keeps the CLIs from prompting or colouring their JSON.
var nonInteractive = cmd.Options{Env: []string{
	"NO_COLOR=1",
	"CLICOLOR=0",
	"CLICOLOR_FORCE=",
	"GH_FORCE_TTY=",
	"GH_PROMPT_DISABLED=1",
	"GLAB_NO_PROMPT=1",
	"PAGER=cat",
}}

// check is one CI check, as found in statusCheckRollup or the check-runs API.
// Check runs carry status and conclusion; commit status contexts carry state.
type check struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	State      string `json:"state"`
}

// aggregateChecks folds checks into one status. Anything still running wins
// over failures, since the build may yet succeed; skipped and neutral
// checks count for nothing.
func aggregateChecks(checks []check) Status {
	var running, failed, passed bool

	for _, c := range checks {
		switch strings.ToLower(c.Status) {
		case "in_progress", "queued", "pending", "expected":
			running = true
		}

		switch strings.ToLower(c.State) {
		case "pending":
			running = true
		case "failure", "error":
			failed = true
		case "success":
			passed = true
		}

		switch strings.ToLower(c.Conclusion) {
		case "failure", "error", "cancelled", "timed_out", "action_required":
			failed = true
		case "success":
			passed = true
		}
	}

	switch {
	case running:
		return StatusRunning
	case failed:
		return StatusFailed
	case passed:
		return StatusPassed
	default:
		return StatusNoCI
	}
}
