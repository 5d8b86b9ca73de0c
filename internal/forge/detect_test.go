package forge

import "testing"

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		hosts    map[string]string
		want     string
		wantHost string
	}{
		{"github ssh", "git@github.com:acme/api.git", nil, "github", "github.com"},
		{"github https", "https://github.com/acme/api", nil, "github", "github.com"},
		{"gitlab ssh", "git@gitlab.com:acme/api.git", nil, "gitlab", "gitlab.com"},
		{"self-hosted gitlab by name", "https://gitlab.acme.dev/team/api.git", nil, "gitlab", "gitlab.acme.dev"},
		{"gitlab under path", "https://code.acme.dev/gitlab/team/api.git", nil, "gitlab", "code.acme.dev"},
		{"ssh scheme with port", "ssh://git@scm.acme.dev:2222/team/api.git", map[string]string{"scm.acme.dev": "gitlab"}, "gitlab", "scm.acme.dev"},
		{"host map beats name", "git@gitlab.acme.dev:team/api.git", map[string]string{"gitlab.acme.dev": "github"}, "github", "gitlab.acme.dev"},
		{"host map case-insensitive forge", "https://git.acme.dev/team/api", map[string]string{"git.acme.dev": "GitLab"}, "gitlab", "git.acme.dev"},
		{"unknown host defaults to github", "git@git.acme.dev:team/api.git", nil, "github", "git.acme.dev"},
		{"local path", "/srv/git/api.git", nil, "github", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractHost(tt.url); got != tt.wantHost {
				t.Errorf("extractHost(%q) = %q, want %q", tt.url, got, tt.wantHost)
			}
			if got := Detect(tt.url, tt.hosts).Name(); got != tt.want {
				t.Errorf("Detect(%q).Name() = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestRepoPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:acme/api.git", "acme/api"},
		{"git@github.com-work:acme/api.git", "acme/api"},
		{"git@gitlab.com:acme/platform/api.git", "acme/platform/api"},
		{"https://github.com/acme/api", "acme/api"},
		{"https://gitlab.acme.dev/acme/platform/api.git/", "acme/platform/api"},
		{"ssh://git@scm.acme.dev:2222/acme/api.git", "acme/api"},
		{"/srv/git/api.git", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := RepoPath(tt.url); got != tt.want {
				t.Errorf("RepoPath(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
