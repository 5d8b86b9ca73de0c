package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"github.com/raphi011/wts/internal/cmd"
)

// GitLab implements Forge for GitLab repositories using the glab CLI.
type GitLab struct{}

// Name returns "gitlab"
func (g *GitLab) Name() string {
	return "gitlab"
}

// Check verifies that glab CLI is available and authenticated
func (g *GitLab) Check(ctx context.Context) error {
	if _, err := exec.LookPath("glab"); err != nil {
		return fmt.Errorf("glab not found: please install GitLab CLI (https://gitlab.com/gitlab-org/cli)")
	}

	_, err := cmd.OutputContextWith(ctx, nonInteractive, "", "glab", "auth", "status")
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		var errMsg string
		var ee *cmd.ExitError
		if errors.As(err, &ee) {
			errMsg = ee.Msg
		}
		if strings.Contains(errMsg, "not logged") || strings.Contains(errMsg, "no token") || errMsg == "" {
			return fmt.Errorf("glab not authenticated: please run 'glab auth login'")
		}
		return classify(fmt.Errorf("glab auth check failed: %w", err))
	}

	return nil
}

type gitlabPipeline struct {
	Status string `json:"status"`
	SHA    string `json:"sha"`
	WebURL string `json:"web_url"`
}

type gitlabMR struct {
	SHA                 string          `json:"sha"`
	HasConflicts        bool            `json:"has_conflicts"`
	DetailedMergeStatus string          `json:"detailed_merge_status"`
	HeadPipeline        *gitlabPipeline `json:"head_pipeline"`
	Pipeline            *gitlabPipeline `json:"pipeline"`
	WebURL              string          `json:"web_url"`
}

// CIStatus looks for an open MR from the branch first; without one, pushed
// branches fall back to the latest pipeline for the branch.
func (g *GitLab) CIStatus(ctx context.Context, q Query) (CIStatus, error) {
	st, found, err := g.mrStatus(ctx, q)
	if err != nil || found {
		return st, err
	}
	if !q.HasUpstream {
		return CIStatus{Status: StatusNoCI}, nil
	}
	return g.pipelineStatus(ctx, q)
}

func (g *GitLab) mrStatus(ctx context.Context, q Query) (CIStatus, bool, error) {
	args := []string{"mr", "list",
		"--source-branch", q.Branch,
		"--state", "opened",
		"--per-page", fmt.Sprint(MaxPRsToFetch),
		"--output", "json"}
	if q.RepoPath != "" {
		args = append(args, "-R", q.RepoPath)
	}

	output, err := cmd.OutputContextWith(ctx, nonInteractive, q.Dir, "glab", args...)
	if err != nil {
		return CIStatus{}, false, classify(fmt.Errorf("glab mr list failed: %w", err))
	}

	var mrs []gitlabMR
	if err := json.Unmarshal(output, &mrs); err != nil {
		return CIStatus{}, false, fmt.Errorf("failed to parse glab output: %w", err)
	}
	if len(mrs) == 0 {
		return CIStatus{}, false, nil
	}

	return gitlabMRStatus(&mrs[0], q.Head), true, nil
}

func gitlabMRStatus(mr *gitlabMR, head string) CIStatus {
	st := CIStatus{
		Source: SourcePullRequest,
		Stale:  mr.SHA != head,
		URL:    mr.WebURL,
	}

	switch {
	case mr.HasConflicts || mr.DetailedMergeStatus == "conflict":
		st.Status = StatusConflicts
	case mr.DetailedMergeStatus == "ci_still_running":
		st.Status = StatusRunning
	case mr.DetailedMergeStatus == "ci_must_pass":
		st.Status = StatusFailed
	case mr.HeadPipeline != nil:
		st.Status = parsePipelineStatus(mr.HeadPipeline.Status)
	case mr.Pipeline != nil:
		st.Status = parsePipelineStatus(mr.Pipeline.Status)
	default:
		st.Status = StatusNoCI
	}
	return st
}

func (g *GitLab) pipelineStatus(ctx context.Context, q Query) (CIStatus, error) {
	endpoint := "projects/:id/pipelines?per_page=1&ref=" + url.QueryEscape(q.Branch)

	output, err := cmd.OutputContextWith(ctx, nonInteractive, q.Dir, "glab", "api", endpoint)
	if err != nil {
		return CIStatus{}, classify(fmt.Errorf("glab api pipelines failed: %w", err))
	}

	var pipelines []gitlabPipeline
	if err := json.Unmarshal(output, &pipelines); err != nil {
		return CIStatus{}, fmt.Errorf("failed to parse glab output: %w", err)
	}
	if len(pipelines) == 0 {
		return CIStatus{Status: StatusNoCI}, nil
	}

	p := pipelines[0]
	return CIStatus{
		Status: parsePipelineStatus(p.Status),
		Source: SourceBranch,
		Stale:  p.SHA == "" || p.SHA != q.Head,
		URL:    p.WebURL,
	}, nil
}

// parsePipelineStatus maps a GitLab pipeline status to a Status.
func parsePipelineStatus(status string) Status {
	switch status {
	case "running", "pending", "preparing", "waiting_for_resource", "created", "scheduled":
		return StatusRunning
	case "failed", "canceled", "manual":
		return StatusFailed
	case "success":
		return StatusPassed
	default:
		return StatusNoCI
	}
}
