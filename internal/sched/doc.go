// Package sched runs independent jobs on a bounded pool.
//
// The pool size caps how many external processes a command has running
// at once, no matter how many worktrees and branches it covers. Each job
// gets its own timeout; a job that exceeds it is reported as timed out
// and abandoned so it cannot hold a slot.
//
// Two contexts control cancellation. The one passed to [Scheduler.Run]
// is soft: it stops dispatch but lets running jobs finish. The one given
// with [WithHardContext] is hard: cancelling it cancels every running job,
// which kills their processes.
package sched
