package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/raphi011/wts/internal/forge"
)

func TestCISymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status forge.Status
		want   string
	}{
		{forge.StatusPassed, "●"},
		{forge.StatusRunning, "●"},
		{forge.StatusFailed, "●"},
		{forge.StatusConflicts, "✗"},
		{forge.StatusError, "⚠"},
		{forge.StatusNoCI, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CISymbol(tt.status); got != tt.want {
			t.Errorf("CISymbol(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestFormatCI(t *testing.T) {
	t.Parallel()

	t.Run("no ci is blank", func(t *testing.T) {
		t.Parallel()
		if got := FormatCI(forge.CIStatus{Status: forge.StatusNoCI, URL: "https://x"}); got != "" {
			t.Errorf("FormatCI(no_ci) = %q, want empty", got)
		}
	})

	t.Run("hyperlinked", func(t *testing.T) {
		t.Parallel()
		url := "https://github.com/org/repo/pull/7"
		got := FormatCI(forge.CIStatus{Status: forge.StatusPassed, URL: url})
		if !strings.Contains(got, url) {
			t.Errorf("FormatCI() = %q, want hyperlink to %s", got, url)
		}
		if plain := ansi.Strip(got); plain != "●" {
			t.Errorf("visible text = %q, want %q", plain, "●")
		}
	})

	t.Run("without url", func(t *testing.T) {
		t.Parallel()
		got := FormatCI(forge.CIStatus{Status: forge.StatusFailed})
		if strings.Contains(got, "\x1b]8;") {
			t.Errorf("FormatCI() = %q, should not contain a hyperlink", got)
		}
		if plain := ansi.Strip(got); plain != "●" {
			t.Errorf("visible text = %q, want %q", plain, "●")
		}
	})
}
