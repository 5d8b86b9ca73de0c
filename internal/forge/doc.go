// Package forge fetches CI status from git hosting services.
//
// GitHub is queried through the gh CLI and GitLab through glab, so wts
// never handles credentials itself.
//
// # Lookup Order
//
// For a branch, [Forge.CIStatus] first looks for an open PR/MR whose head
// is the branch. Its checks (or pipeline) decide the status, and a PR
// that cannot merge cleanly reports [StatusConflicts]. When there is no
// PR and the branch has been pushed, the checks of the branch itself are
// used instead. A PR whose head differs from the local head is marked
// Stale.
//
// # Platform Detection
//
// Use [Detect] to determine the forge from a repository's origin URL:
//
//  1. Custom host mappings from config (for self-hosted instances)
//  2. URL patterns (gitlab.com, gitlab.* domains)
//  3. Falls back to GitHub (most common)
//
// # Errors
//
// Failures that usually resolve on their own (rate limits, network) are
// wrapped in [RetriableError]. Callers show them as [StatusError] and do
// not cache them.
//
// Never call gh or glab directly outside this package.
package forge
