package main

import (
	"strings"
	"testing"
)

func TestCache(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)

	// A listing persists the detected default branch.
	if _, _, err := execute(t, "list", "-C", repo, "--format", "json"); err != nil {
		t.Fatalf("list: %v", err)
	}

	out, _, err := execute(t, "cache", "show", "-C", repo)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	if !strings.Contains(out, "default-branch:") || !strings.Contains(out, `"main"`) {
		t.Errorf("cache show missing the default branch:\n%s", out)
	}

	out, _, err = execute(t, "cache", "clear", "-C", repo, "--kind", "ci")
	if err != nil {
		t.Fatalf("cache clear --kind ci: %v", err)
	}
	if !strings.Contains(out, "Removed 0 cached facts") {
		t.Errorf("clear ci printed %q", out)
	}

	out, _, err = execute(t, "cache", "clear", "-C", repo, "--kind", "default-branch")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Removed 1 cached fact") {
		t.Errorf("clear default-branch printed %q", out)
	}

	out, _, err = execute(t, "cache", "show", "-C", repo)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	if !strings.Contains(out, "No cached facts") {
		t.Errorf("cache not empty after clear:\n%s", out)
	}
}

func TestCacheClear_InvalidKind(t *testing.T) {
	t.Parallel()

	repo := setupRepo(t)
	_, _, err := execute(t, "cache", "clear", "-C", repo, "--kind", "tree")
	if err == nil || !strings.Contains(err.Error(), "invalid --kind") {
		t.Errorf("err = %v, want invalid kind", err)
	}
}
