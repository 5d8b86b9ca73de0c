package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/raphi011/wts/internal/cmd"
	"github.com/raphi011/wts/internal/log"
)

// GitHub implements Forge for GitHub repositories using the gh CLI.
type GitHub struct{}

// Name returns "github"
func (g *GitHub) Name() string {
	return "github"
}

// Check verifies that gh CLI is available and authenticated
func (g *GitHub) Check(ctx context.Context) error {
	if _, err := exec.LookPath("gh"); err != nil {
		return fmt.Errorf("gh not found: please install GitHub CLI (https://cli.github.com)")
	}

	_, err := cmd.OutputContextWith(ctx, nonInteractive, "", "gh", "auth", "status")
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		var errMsg string
		var ee *cmd.ExitError
		if errors.As(err, &ee) {
			errMsg = ee.Msg
		}
		if strings.Contains(errMsg, "not logged") || strings.Contains(errMsg, "no accounts") || errMsg == "" {
			return fmt.Errorf("gh not authenticated: please run 'gh auth login'")
		}
		return classify(fmt.Errorf("gh auth check failed: %w", err))
	}

	return nil
}

type githubPR struct {
	HeadRefOid          string  `json:"headRefOid"`
	MergeStateStatus    string  `json:"mergeStateStatus"`
	StatusCheckRollup   []check `json:"statusCheckRollup"`
	URL                 string  `json:"url"`
	HeadRepositoryOwner *struct {
		Login string `json:"login"`
	} `json:"headRepositoryOwner"`
}

// CIStatus looks for an open PR from the branch first; without one, pushed
// branches fall back to the check runs of the head commit.
func (g *GitHub) CIStatus(ctx context.Context, q Query) (CIStatus, error) {
	st, found, err := g.prStatus(ctx, q)
	if err != nil || found {
		return st, err
	}
	if !q.HasUpstream {
		return CIStatus{Status: StatusNoCI}, nil
	}
	return g.commitStatus(ctx, q)
}

func (g *GitHub) prStatus(ctx context.Context, q Query) (CIStatus, bool, error) {
	output, err := cmd.OutputContextWith(ctx, nonInteractive, q.Dir, "gh", "pr", "list",
		"--head", q.Branch,
		"--state", "open",
		"--limit", fmt.Sprint(MaxPRsToFetch),
		"--json", "headRefOid,mergeStateStatus,statusCheckRollup,url,headRepositoryOwner")
	if err != nil {
		return CIStatus{}, false, classify(fmt.Errorf("gh pr list failed: %w", err))
	}

	var prs []githubPR
	if err := json.Unmarshal(output, &prs); err != nil {
		return CIStatus{}, false, fmt.Errorf("failed to parse gh output: %w", err)
	}

	pr := pickPR(prs, q.Owner())
	if pr == nil {
		if len(prs) > 0 {
			log.FromContext(ctx).Debug("no PR from origin owner", "branch", q.Branch, "owner", q.Owner(), "prs", len(prs))
		}
		return CIStatus{}, false, nil
	}

	return githubPRStatus(pr, q.Head), true, nil
}

// pickPR returns the first PR whose head repository belongs to owner.
// Branch names are not unique across forks, so a PR from someone else's
// fork with the same branch name must not be reported. A PR without owner
// information is taken as a match.
func pickPR(prs []githubPR, owner string) *githubPR {
	for i := range prs {
		pr := &prs[i]
		if owner == "" || pr.HeadRepositoryOwner == nil || strings.EqualFold(pr.HeadRepositoryOwner.Login, owner) {
			return pr
		}
	}
	return nil
}

func githubPRStatus(pr *githubPR, head string) CIStatus {
	st := CIStatus{
		Source: SourcePullRequest,
		Stale:  pr.HeadRefOid != "" && pr.HeadRefOid != head,
		URL:    pr.URL,
	}
	if pr.MergeStateStatus == "DIRTY" {
		st.Status = StatusConflicts
	} else {
		st.Status = aggregateChecks(pr.StatusCheckRollup)
	}
	return st
}

func (g *GitHub) commitStatus(ctx context.Context, q Query) (CIStatus, error) {
	if q.RepoPath == "" || q.Head == "" {
		return CIStatus{Status: StatusNoCI}, nil
	}

	output, err := cmd.OutputContextWith(ctx, nonInteractive, q.Dir, "gh", "api",
		fmt.Sprintf("repos/%s/commits/%s/check-runs", q.RepoPath, q.Head),
		"--jq", ".check_runs | map({status, conclusion})")
	if err != nil {
		return CIStatus{}, classify(fmt.Errorf("gh api check-runs failed: %w", err))
	}

	var checks []check
	if err := json.Unmarshal(output, &checks); err != nil {
		return CIStatus{}, fmt.Errorf("failed to parse gh output: %w", err)
	}

	// Queried by sha, so never stale.
	return CIStatus{Status: aggregateChecks(checks), Source: SourceBranch}, nil
}
