package forge

import (
	"net/url"
	"strings"
)

// Detect returns the appropriate Forge implementation based on the remote URL.
// If hostMap is provided, checks for exact domain matches first.
// Falls back to pattern matching, then defaults to GitHub.
func Detect(remoteURL string, hostMap map[string]string) Forge {
	// Check hostMap first for exact domain match
	if len(hostMap) > 0 {
		host := extractHost(remoteURL)
		if forgeType, ok := hostMap[host]; ok {
			return ByName(forgeType)
		}
	}

	if isGitLab(remoteURL) {
		return &GitLab{}
	}
	return &GitHub{}
}

// RepoPath returns the owner/repo path of a remote URL, or "" if it
// cannot be parsed.
func RepoPath(remoteURL string) string {
	return extractRepoPath(remoteURL)
}

// extractHost parses the hostname from a git remote URL.
// Handles SSH format (git@host:path) and HTTPS format (https://host/path).
func extractHost(remoteURL string) string {
	// SSH format: git@github.com:user/repo.git
	if strings.HasPrefix(remoteURL, "git@") {
		withoutPrefix := strings.TrimPrefix(remoteURL, "git@")
		if idx := strings.Index(withoutPrefix, ":"); idx > 0 {
			return withoutPrefix[:idx]
		}
	}

	if strings.HasPrefix(remoteURL, "http://") || strings.HasPrefix(remoteURL, "https://") || strings.HasPrefix(remoteURL, "ssh://") {
		if parsed, err := url.Parse(remoteURL); err == nil {
			return parsed.Hostname()
		}
	}

	return ""
}

// extractRepoPath returns the path part of a remote URL without the .git
// suffix: "user/repo", or "group/subgroup/repo" on GitLab.
func extractRepoPath(remoteURL string) string {
	var path string
	switch {
	case strings.HasPrefix(remoteURL, "git@"):
		// The host may be an ssh config alias (git@github.com-work:org/repo).
		_, after, ok := strings.Cut(remoteURL, ":")
		if !ok {
			return ""
		}
		path = after
	case strings.Contains(remoteURL, "://"):
		parsed, err := url.Parse(remoteURL)
		if err != nil {
			return ""
		}
		path = parsed.Path
	default:
		return ""
	}

	path = strings.Trim(path, "/")
	return strings.TrimSuffix(path, ".git")
}

// ByName returns a Forge implementation by name.
// Supported names: "github", "gitlab"
// Returns GitHub as default for unknown names.
func ByName(name string) Forge {
	switch strings.ToLower(name) {
	case "gitlab":
		return &GitLab{}
	default:
		return &GitHub{}
	}
}

// isGitLab checks if a URL points to a GitLab instance
func isGitLab(url string) bool {
	url = strings.ToLower(url)

	// gitlab.com and common self-hosted gitlab.* domains
	if strings.Contains(url, "gitlab.") {
		return true
	}

	// Some orgs host at company.com/gitlab/
	return strings.Contains(url, "/gitlab/")
}
