// Package git provides read-only git queries via shell commands.
//
// Queries call the git CLI through [github.com/raphi011/wts/internal/cmd] so
// user configuration (alternates, extensions, credential helpers for
// ls-remote) behaves exactly as it does on the command line. Commit objects
// are the exception: [NewObjectReader] decodes them in-process with go-git
// and only falls back to the CLI when go-git cannot read the repository.
//
// Nothing in this package writes to the repository.
//
// # Enumeration
//
//   - [OpenRepo]: locate the repository and its common git dir
//   - [LoadInventory]: worktrees, local and remote branches in parallel
//   - [ListWorktrees]: parse `git worktree list --porcelain`
//
// # Comparisons
//
//   - [MergeBase], [IsAncestor], [CountDivergence]
//   - [HasChanges], [DiffStat]: tree and line comparisons
//   - [MergeTree]: simulated merge producing a tree id
//
// # Worktree state
//
//   - [GetWorkingTree]: dirty flags and uncommitted line diff
//   - [GetOperation]: rebase or merge in progress
//
// # Target
//
//   - [DetectDefaultBranch]: origin HEAD, ls-remote, init.defaultBranch, well-known names
//   - [ResolveTarget]: default branch, or its upstream when strictly ahead
package git
