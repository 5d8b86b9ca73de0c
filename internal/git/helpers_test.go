package git

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// resolveTempDir returns a temp directory with symlinks resolved, so paths
// compare equal to what git prints on macOS.
func resolveTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	return dir
}

// mustGit runs a git command in dir and fails the test on error.
func mustGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	if err := runGit(context.Background(), dir, args...); err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
}

// configureTestRepo sets an identity and turns off commit signing.
func configureTestRepo(t *testing.T, repoPath string) {
	t.Helper()
	mustGit(t, repoPath, "config", "user.email", "dev@example.com")
	mustGit(t, repoPath, "config", "user.name", "Dev")
	mustGit(t, repoPath, "config", "commit.gpgsign", "false")
}

// setupTestRepo creates a repository on main with one commit.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	repoPath := filepath.Join(resolveTempDir(t), "repo")
	mustGit(t, "", "init", "-b", "main", repoPath)
	configureTestRepo(t, repoPath)
	commitFile(t, repoPath, "README.md", "# test\n", "Initial commit")
	return repoPath
}

// setupTestRepoWithOrigin clones an empty bare origin and pushes main to it.
func setupTestRepoWithOrigin(t *testing.T) (repoPath, originPath string) {
	t.Helper()
	dir := resolveTempDir(t)
	originPath = filepath.Join(dir, "origin.git")
	repoPath = filepath.Join(dir, "repo")

	mustGit(t, "", "init", "--bare", "-b", "main", originPath)
	mustGit(t, "", "clone", originPath, repoPath)
	configureTestRepo(t, repoPath)
	// An empty clone keeps init.defaultBranch; pin it.
	mustGit(t, repoPath, "symbolic-ref", "HEAD", "refs/heads/main")
	commitFile(t, repoPath, "README.md", "# test\n", "Initial commit")
	mustGit(t, repoPath, "push", "-u", "origin", "HEAD")
	return repoPath, originPath
}

// commitFile writes content to name in dir, commits it and returns the new HEAD.
func commitFile(t *testing.T, dir, name, content, msg string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	mustGit(t, dir, "add", name)
	mustGit(t, dir, "commit", "-m", msg)
	return headOf(t, dir, "HEAD")
}

// headOf resolves rev in dir.
func headOf(t *testing.T, dir, rev string) string {
	t.Helper()
	sha, err := outputGitLine(context.Background(), dir, "rev-parse", rev)
	if err != nil {
		t.Fatalf("rev-parse %s: %v", rev, err)
	}
	return sha
}

// assertContains fails for every wanted item missing from got.
func assertContains(t *testing.T, got []string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !slices.Contains(got, w) {
			t.Errorf("missing %q in %v", w, got)
		}
	}
}
