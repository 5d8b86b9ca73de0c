package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = fmt.Errorf("git not found: please install git (https://git-scm.com)")

// ErrNotRepository is returned when the directory is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	_, err := exec.LookPath("git")
	if err != nil {
		return ErrGitNotFound
	}
	return nil
}

// Repo locates a repository as seen from one directory inside it.
type Repo struct {
	// Dir is the directory repository-wide queries run in.
	Dir string
	// Toplevel is the root of the worktree containing Dir. Empty for bare repos.
	Toplevel string
	// CommonDir is the git directory shared by all worktrees.
	CommonDir string
	// Bare is true when Dir belongs to a bare repository.
	Bare bool
}

// OpenRepo resolves the repository containing dir.
func OpenRepo(ctx context.Context, dir string) (*Repo, error) {
	out, err := outputGit(ctx, dir, "rev-parse", "--path-format=absolute", "--git-common-dir", "--is-bare-repository")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s (%v)", ErrNotRepository, dir, err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: unexpected rev-parse output %q", ErrNotRepository, string(out))
	}

	repo := &Repo{
		Dir:       dir,
		CommonDir: filepath.Clean(strings.TrimSpace(lines[0])),
		Bare:      strings.TrimSpace(lines[1]) == "true",
	}
	if !repo.Bare {
		// Fails inside the git dir itself; Toplevel then stays empty.
		if top, err := outputGitLine(ctx, dir, "rev-parse", "--show-toplevel"); err == nil {
			repo.Toplevel = filepath.Clean(top)
		}
	}
	return repo, nil
}

// GetOriginURL gets the origin URL for a repository
func GetOriginURL(ctx context.Context, repoPath string) (string, error) {
	url, err := outputGitLine(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("failed to get origin URL: %w", err)
	}
	return url, nil
}

// PreviousBranch returns the branch checked out before the current one in dir
// (the @{-1} reflog entry), or "" if there is none.
func PreviousBranch(ctx context.Context, dir string) string {
	name, err := outputGitLine(ctx, dir, "rev-parse", "--abbrev-ref", "@{-1}")
	if err != nil || name == "HEAD" {
		return ""
	}
	return name
}
