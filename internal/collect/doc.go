// Package collect gathers the status of every worktree and branch of a
// repository.
//
// Run builds a skeleton row per worktree (and optionally per branch) from
// local metadata, then schedules one job per fact on a bounded pool. Facts
// shared between rows, such as merge bases and CI results, go through a
// facts.Store so they are fetched once. Every settled fact is handed to a
// render.Renderer as it arrives.
package collect
