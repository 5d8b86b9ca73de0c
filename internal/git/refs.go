package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Branch is a local or remote-tracking ref.
type Branch struct {
	// Name is the short name ("feature", or "origin/feature" for remotes).
	Name   string
	Head   string
	Remote bool

	// Upstream is the configured tracking branch, e.g. "origin/feature".
	Upstream       string
	UpstreamRemote string
	UpstreamBranch string

	CommitTime time.Time
	Subject    string
}

const refFormat = "%(refname)%00%(objectname)%00%(upstream:short)%00%(upstream:remotename)%00%(upstream:remoteref)%00%(committerdate:unix)%00%(subject)"

// ListBranches returns all local branches.
func ListBranches(ctx context.Context, dir string) ([]Branch, error) {
	out, err := outputGit(ctx, dir, "for-each-ref", "--format="+refFormat, "refs/heads")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return parseRefs(string(out)), nil
}

// ListRemoteBranches returns all remote-tracking branches except the
// symbolic <remote>/HEAD entries.
func ListRemoteBranches(ctx context.Context, dir string) ([]Branch, error) {
	out, err := outputGit(ctx, dir, "for-each-ref", "--format="+refFormat, "refs/remotes")
	if err != nil {
		return nil, fmt.Errorf("failed to list remote branches: %w", err)
	}
	var branches []Branch
	for _, b := range parseRefs(string(out)) {
		if strings.HasSuffix(b.Name, "/HEAD") {
			continue
		}
		branches = append(branches, b)
	}
	return branches, nil
}

func parseRefs(s string) []Branch {
	var branches []Branch
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Split(line, "\x00")
		if len(fields) < 7 {
			continue
		}
		ref := fields[0]
		b := Branch{
			Head:           fields[1],
			Upstream:       fields[2],
			UpstreamRemote: fields[3],
			UpstreamBranch: strings.TrimPrefix(fields[4], "refs/heads/"),
			Subject:        fields[6],
		}
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			b.Name = strings.TrimPrefix(ref, "refs/heads/")
		case strings.HasPrefix(ref, "refs/remotes/"):
			b.Name = strings.TrimPrefix(ref, "refs/remotes/")
			b.Remote = true
		default:
			continue
		}
		if ts, err := strconv.ParseInt(fields[5], 10, 64); err == nil {
			b.CommitTime = time.Unix(ts, 0)
		}
		branches = append(branches, b)
	}
	return branches
}

// RevParse resolves rev to a full commit id.
func RevParse(ctx context.Context, dir, rev string) (string, error) {
	sha, err := outputGitLine(ctx, dir, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rev, err)
	}
	return sha, nil
}
