package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadLocal_NoFile(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLocal() error = %v", err)
	}
	if local != nil {
		t.Errorf("LoadLocal() = %+v, want nil", local)
	}
}

func TestLoadLocal_Fields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, LocalConfigFileName, `
[list]
full = true
timeout = "2s"

[ci]
ttl = "10s"
`)

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal() error = %v", err)
	}
	if local.List.Full == nil || !*local.List.Full {
		t.Errorf("list.full = %v, want true", local.List.Full)
	}
	if local.List.Branches != nil {
		t.Errorf("list.branches should stay unset, got %v", *local.List.Branches)
	}
	if local.List.Timeout == nil || local.List.Timeout.Std() != 2*time.Second {
		t.Errorf("list.timeout = %v, want 2s", local.List.Timeout)
	}
	if local.CI.TTL == nil || local.CI.TTL.Std() != 10*time.Second {
		t.Errorf("ci.ttl = %v, want 10s", local.CI.TTL)
	}
}

func TestLoadLocal_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "bad toml", content: "[list\n", errMsg: "failed to parse local config"},
		{name: "negative threshold", content: "[list]\nstale_threshold = -3\n", errMsg: "list.stale_threshold"},
		{name: "negative timeout", content: "[list]\ntimeout = \"-2s\"\n", errMsg: "list.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeFile(t, dir, LocalConfigFileName, tt.content)
			_, err := LoadLocal(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestMergeLocal(t *testing.T) {
	t.Parallel()

	global := Default()
	global.Hosts = map[string]string{"git.example.com": "gitlab"}

	t.Run("nil local returns global", func(t *testing.T) {
		t.Parallel()
		if got := MergeLocal(&global, nil); got != &global {
			t.Error("MergeLocal(nil) should return the global config")
		}
	})

	t.Run("overrides set fields only", func(t *testing.T) {
		t.Parallel()
		full := true
		threshold := 5
		ttl := Duration(time.Minute)
		local := &LocalConfig{
			List: LocalList{Full: &full, StaleThreshold: &threshold},
			CI:   LocalCI{TTL: &ttl},
		}

		got := MergeLocal(&global, local)
		if !got.List.Full || got.List.StaleThreshold != 5 || got.CI.TTL.Std() != time.Minute {
			t.Errorf("overrides not applied: %+v", got)
		}
		if got.List.Concurrency != global.List.Concurrency {
			t.Errorf("concurrency changed to %d", got.List.Concurrency)
		}
		if global.List.Full {
			t.Error("global config was mutated")
		}
		got.Hosts["other"] = "github"
		if _, ok := global.Hosts["other"]; ok {
			t.Error("hosts map shared with global")
		}
	})
}
