// Package status holds the per-row data model of a listing and composes
// the status symbols shown for each row.
//
// A [Row] starts as a skeleton built from local metadata. Its facts are
// filled in by jobs as they finish. [Compose] can be called at any point
// and only uses facts that are known, so a symbol appears once its fact
// arrives and never changes afterwards.
//
// Symbols come in six categories, at most one per category, concatenated
// in priority order: conflicts, worktree attributes, operations in
// progress, relation to the target branch, relation to the upstream, and
// uncommitted changes.
package status
