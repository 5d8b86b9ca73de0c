// Package format turns row facts into short display strings.
//
// Everything here is pure and colour-free; styling is applied by the
// renderers on top of these strings.
//
// # Times
//
// [RelativeTime] renders commit ages as "5m ago", "yesterday" or, from a
// week on, an ISO date.
//
// # Counts
//
// [Diff] renders line counts as "+12 -3" and [Divergence] renders
// ahead/behind counts as "↑2 ↓1" ([Tracking] uses "⇡2 ⇣1" for the
// upstream). All return "" for zero values so empty
// cells stay blank.
package format
