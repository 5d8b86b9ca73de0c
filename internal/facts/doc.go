// Package facts holds the per-row fact model and the fact cache.
//
// A [Fact] is a single datum about one worktree or branch row (its working
// tree state, its divergence from the target, its CI status). Facts start
// [Absent], become [Pending] when a job is scheduled, and settle exactly once
// into [Available], [TimedOut] or [Failed].
//
// The [Store] sits between fetch jobs and the expensive queries they make.
// [GetOrFetch] returns a fresh cached value, joins an in-flight fetch for the
// same [Key], or starts one. TTLs are chosen by the caller per [Kind]:
//
//   - merge-base, tree ids, forge auth: [NoExpiry] for the invocation
//   - CI status: [CITTL] (30-60s), persisted
//   - default branch: [NoExpiry], persisted until explicitly cleared
//
// Persistent kinds are read from and written to a [Backing] (the on-disk
// cache), which the command loads at start and flushes at exit.
package facts
