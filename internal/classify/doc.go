// Package classify decides how a branch relates to the target branch.
//
// Squash merges and rebases leave a branch's commits out of the target's
// history even though their content landed, so ancestry alone misses
// most integrated branches. [Classify] runs an ordered chain of rules,
// cheapest first, and stops at the first one that matches:
//
//  1. same commit as the target
//  2. ancestor: the branch head is in the target's history
//  3. no added changes: the branch's own commits change nothing
//  4. trees match: the branch tip has the target tip's files
//  5. merge adds nothing: merging the branch into the target yields the
//     target's tree (or conflicts)
//
// When no rule matches, the ahead/behind counts decide between Ahead,
// Behind and Diverged. Branches far behind the target skip rules 2-5.
//
// Rules only see immutable snapshots and an [Oracle], so each can be
// tested on its own.
package classify
