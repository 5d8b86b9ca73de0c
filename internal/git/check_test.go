package git

import (
	"context"
	"errors"
	"testing"
)

func TestCheckGit(t *testing.T) {
	if err := CheckGit(); err != nil {
		t.Fatalf("CheckGit() = %v with git installed", err)
	}

	t.Setenv("PATH", t.TempDir())
	if err := CheckGit(); !errors.Is(err, ErrGitNotFound) {
		t.Errorf("CheckGit() with empty PATH = %v, want ErrGitNotFound", err)
	}
}

func TestPreviousBranch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupTestRepo(t)

	if got := PreviousBranch(ctx, repo); got != "" {
		t.Errorf("PreviousBranch() on fresh repo = %q, want empty", got)
	}

	for _, args := range [][]string{
		{"switch", "-c", "topic"},
		{"switch", "main"},
	} {
		if err := runGit(ctx, repo, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	if got := PreviousBranch(ctx, repo); got != "topic" {
		t.Errorf("PreviousBranch() = %q, want %q", got, "topic")
	}
}

func TestGetOriginURL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupTestRepo(t)

	if _, err := GetOriginURL(ctx, repo); err == nil {
		t.Error("GetOriginURL() without origin succeeded")
	}

	const url = "git@gitlab.example.com:platform/api.git"
	if err := runGit(ctx, repo, "remote", "add", "origin", url); err != nil {
		t.Fatalf("add remote: %v", err)
	}
	got, err := GetOriginURL(ctx, repo)
	if err != nil {
		t.Fatalf("GetOriginURL() error = %v", err)
	}
	if got != url {
		t.Errorf("GetOriginURL() = %q, want %q", got, url)
	}
}
