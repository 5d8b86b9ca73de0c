package collect

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/raphi011/wts/internal/cmd"
	"github.com/raphi011/wts/internal/render"
	"github.com/raphi011/wts/internal/status"
)

// recorder is a Renderer that keeps the latest state of every row.
type recorder struct {
	mu      sync.Mutex
	rows    []status.Row
	started bool
	updates int
}

func (r *recorder) Start(rows []status.Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
	r.started = true
}

func (r *recorder) Update(i int, row status.Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[i] = row
	r.updates++
}

func (r *recorder) Finish(render.Summary) error { return nil }

func (r *recorder) row(t *testing.T, branch string) status.Row {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Branch == branch {
			return row
		}
	}
	t.Fatalf("no row for branch %q", branch)
	return status.Row{}
}

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolve temp dir: %v", err)
	}
	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := cmd.OutputContext(context.Background(), dir, "git", args...)
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func commitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	runGit(t, dir, "add", name)
	runGit(t, dir, "commit", "-m", msg)
}

func configure(t *testing.T, dir string) {
	t.Helper()
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
}

// setupRepo creates a repository on main with one commit.
func setupRepo(t *testing.T) string {
	t.Helper()
	repo := filepath.Join(tempDir(t), "repo")
	runGit(t, "", "init", "-b", "main", repo)
	configure(t, repo)
	commitFile(t, repo, "README.md", "# test\n", "initial commit")
	return repo
}

// setupClone creates a clone of a bare origin with main pushed.
func setupClone(t *testing.T) string {
	t.Helper()
	tmp := tempDir(t)
	origin := filepath.Join(tmp, "origin.git")
	repo := filepath.Join(tmp, "repo")
	runGit(t, "", "init", "--bare", "-b", "main", origin)
	runGit(t, "", "clone", origin, repo)
	configure(t, repo)
	runGit(t, repo, "symbolic-ref", "HEAD", "refs/heads/main")
	commitFile(t, repo, "README.md", "# test\n", "initial commit")
	runGit(t, repo, "push", "-u", "origin", "HEAD")
	return repo
}
