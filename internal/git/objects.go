package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/raphi011/wts/internal/log"
)

// Commit is the metadata shown for a row before any fact has been fetched.
type Commit struct {
	SHA     string
	Tree    string
	Subject string
	Time    time.Time
}

// ObjectReader reads immutable commit objects.
type ObjectReader interface {
	// Commits returns metadata for each sha. Unknown shas are omitted.
	Commits(ctx context.Context, shas []string) (map[string]Commit, error)
	// TreeID returns the root tree of a commit.
	TreeID(ctx context.Context, sha string) (string, error)
}

// NewObjectReader returns a reader that decodes objects in-process with
// go-git, falling back to the git CLI for anything go-git cannot read
// (unsupported repository extensions, sha256 object format).
func NewObjectReader(ctx context.Context, repo *Repo) ObjectReader {
	cli := &cliReader{dir: repo.Dir}
	native, err := gogit.PlainOpen(repo.CommonDir)
	if err != nil {
		log.FromContext(ctx).Debug("native object reader unavailable", "dir", repo.CommonDir, "err", err)
		return cli
	}
	return &nativeReader{repo: native, fallback: cli}
}

// nativeReader reads objects through go-git. The repository handle is
// guarded by a mutex because its object cache is not safe for concurrent use.
type nativeReader struct {
	mu       sync.Mutex
	repo     *gogit.Repository
	fallback *cliReader
}

func (r *nativeReader) Commits(ctx context.Context, shas []string) (map[string]Commit, error) {
	commits := make(map[string]Commit, len(shas))
	var missing []string

	r.mu.Lock()
	for _, sha := range shas {
		if _, ok := commits[sha]; ok || sha == "" {
			continue
		}
		c, err := r.repo.CommitObject(plumbing.NewHash(sha))
		if err != nil {
			missing = append(missing, sha)
			continue
		}
		subject, _, _ := strings.Cut(strings.TrimSpace(c.Message), "\n")
		commits[sha] = Commit{
			SHA:     sha,
			Tree:    c.TreeHash.String(),
			Subject: subject,
			Time:    c.Committer.When,
		}
	}
	r.mu.Unlock()

	if len(missing) > 0 {
		log.FromContext(ctx).Debug("falling back to git for commits", "count", len(missing))
		rest, err := r.fallback.Commits(ctx, missing)
		if err != nil {
			return commits, err
		}
		for sha, c := range rest {
			commits[sha] = c
		}
	}
	return commits, nil
}

func (r *nativeReader) TreeID(ctx context.Context, sha string) (string, error) {
	r.mu.Lock()
	c, err := r.repo.CommitObject(plumbing.NewHash(sha))
	r.mu.Unlock()
	if err != nil {
		return r.fallback.TreeID(ctx, sha)
	}
	return c.TreeHash.String(), nil
}

// cliReader reads objects by shelling out to git.
type cliReader struct {
	dir string
}

const commitFormat = "--format=%H%x00%T%x00%ct%x00%s"

func (r *cliReader) Commits(ctx context.Context, shas []string) (map[string]Commit, error) {
	commits := make(map[string]Commit, len(shas))
	if len(shas) == 0 {
		return commits, nil
	}
	args := append([]string{"log", "--no-walk=unsorted", commitFormat}, shas...)
	out, err := outputGit(ctx, r.dir, args...)
	if err != nil {
		return commits, fmt.Errorf("read commits: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.SplitN(line, "\x00", 4)
		if len(fields) != 4 {
			continue
		}
		c := Commit{SHA: fields[0], Tree: fields[1], Subject: fields[3]}
		if ts, err := strconv.ParseInt(fields[2], 10, 64); err == nil {
			c.Time = time.Unix(ts, 0)
		}
		commits[c.SHA] = c
	}
	return commits, nil
}

func (r *cliReader) TreeID(ctx context.Context, sha string) (string, error) {
	tree, err := outputGitLine(ctx, r.dir, "rev-parse", "--verify", sha+"^{tree}")
	if err != nil {
		return "", fmt.Errorf("tree of %s: %w", sha, err)
	}
	return tree, nil
}
