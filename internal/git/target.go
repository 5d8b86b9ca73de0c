package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultRemote is the remote consulted for the default branch.
const DefaultRemote = "origin"

// ErrNoDefaultBranch is returned when no default branch can be determined.
var ErrNoDefaultBranch = errors.New("could not determine default branch")

// fallbackBranches are tried in order when the remote gives no answer.
var fallbackBranches = []string{"main", "master", "develop", "trunk"}

// DetectDefaultBranch determines the repository's default branch name.
//
// Sources, in order: the remote's HEAD symref as cached locally, the remote's
// HEAD as reported by ls-remote, init.defaultBranch, and finally well-known
// names. Only names that exist as local branches are accepted from the
// last two sources.
func DetectDefaultBranch(ctx context.Context, dir string) (string, error) {
	if ref, err := outputGitLine(ctx, dir, "symbolic-ref", "--quiet", "--short", "refs/remotes/"+DefaultRemote+"/HEAD"); err == nil && ref != "" {
		if name := strings.TrimPrefix(ref, DefaultRemote+"/"); name != "" {
			return name, nil
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if hasRemote(ctx, dir, DefaultRemote) {
		if out, err := outputGit(ctx, dir, "ls-remote", "--symref", DefaultRemote, "HEAD"); err == nil {
			if name := parseLsRemoteSymref(string(out)); name != "" {
				return name, nil
			}
		} else if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	if name, err := outputGitLine(ctx, dir, "config", "--get", "init.defaultBranch"); err == nil && name != "" {
		if localBranchExists(ctx, dir, name) {
			return name, nil
		}
	}

	for _, name := range fallbackBranches {
		if localBranchExists(ctx, dir, name) {
			return name, nil
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return "", ErrNoDefaultBranch
}

// parseLsRemoteSymref extracts the branch from "ref: refs/heads/main\tHEAD".
func parseLsRemoteSymref(s string) string {
	for _, line := range strings.Split(s, "\n") {
		rest, ok := strings.CutPrefix(line, "ref: ")
		if !ok {
			continue
		}
		ref, _, _ := strings.Cut(rest, "\t")
		return strings.TrimPrefix(strings.TrimSpace(ref), "refs/heads/")
	}
	return ""
}

func hasRemote(ctx context.Context, dir, remote string) bool {
	return runGit(ctx, dir, "config", "--get", "remote."+remote+".url") == nil
}

func localBranchExists(ctx context.Context, dir, name string) bool {
	return runGit(ctx, dir, "show-ref", "--verify", "--quiet", "refs/heads/"+name) == nil
}

// Target is the branch every other branch is measured against.
type Target struct {
	// Branch is the local default branch name.
	Branch string
	// Ref is what comparisons use: Branch, or its upstream when that is ahead.
	Ref  string
	Head string
	// LocalHead is the head of Branch, which differs from Head when the
	// upstream is used.
	LocalHead string
}

// UsesUpstream reports whether the upstream replaced the local branch.
func (t Target) UsesUpstream() bool {
	return t.Ref != t.Branch
}

// ResolveTarget picks the comparison ref for defaultBranch. The upstream is
// used instead of the local branch when it is strictly ahead, which catches
// branches merged remotely but not yet pulled.
func ResolveTarget(ctx context.Context, dir, defaultBranch string) (Target, error) {
	head, err := RevParse(ctx, dir, "refs/heads/"+defaultBranch)
	if err != nil {
		return Target{}, fmt.Errorf("default branch %q: %w", defaultBranch, err)
	}
	target := Target{Branch: defaultBranch, Ref: defaultBranch, Head: head, LocalHead: head}

	upstream, err := outputGitLine(ctx, dir, "rev-parse", "--abbrev-ref", defaultBranch+"@{upstream}")
	if err != nil || upstream == "" {
		return target, nil
	}
	upHead, err := RevParse(ctx, dir, upstream)
	if err != nil || upHead == head {
		return target, nil
	}
	ahead, err := IsAncestor(ctx, dir, head, upHead)
	if err != nil {
		return Target{}, err
	}
	if ahead {
		target.Ref = upstream
		target.Head = upHead
	}
	return target, nil
}
