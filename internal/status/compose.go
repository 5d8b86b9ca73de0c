package status

import (
	"strings"

	"github.com/raphi011/wts/internal/classify"
	"github.com/raphi011/wts/internal/git"
)

// Symbols, grouped by category in display order.
const (
	SymbolConflict = "✘"

	SymbolLocked     = "⊞"
	SymbolPrunable   = "⊟"
	SymbolBare       = "⊡"
	SymbolNoWorktree = "/"

	SymbolRebase = "⤴"
	SymbolMerge  = "⤵"

	SymbolIsTarget        = "^"
	SymbolWouldConflict   = "✗"
	SymbolSameCommit      = "_"
	SymbolSameCommitDirty = "–"
	SymbolIntegrated      = "⊂"
	SymbolDiverged        = "↕"
	SymbolAhead           = "↑"
	SymbolBehind          = "↓"

	SymbolRemoteDiverged = "⇅"
	SymbolRemoteAhead    = "⇡"
	SymbolRemoteBehind   = "⇣"
	SymbolRemoteInSync   = "|"

	SymbolStaged    = "+"
	SymbolModified  = "!"
	SymbolUntracked = "?"
)

// Status is the composed summary of one row.
type Status struct {
	Symbols string
	// Dimmed marks rows without unique, unintegrated work.
	Dimmed bool
}

// category yields at most one symbol for a row.
type category func(r *Row) string

// categories in priority order.
var categories = []category{
	conflictSymbol,
	attributeSymbol,
	operationSymbol,
	mainSymbol,
	remoteSymbol,
	workingTreeSymbol,
}

// Compose builds the symbol string and dimmed flag for r from whatever
// facts are known. Unknown facts contribute nothing.
func Compose(r *Row) Status {
	var b strings.Builder
	for _, c := range categories {
		b.WriteString(c(r))
	}
	return Status{Symbols: b.String(), Dimmed: Dimmed(r)}
}

// Dimmed reports whether r is on the target commit with nothing
// uncommitted, or already integrated.
func Dimmed(r *Row) bool {
	res, ok := r.Classification()
	if !ok {
		return false
	}
	switch res.State {
	case classify.Empty, classify.Integrated:
		return true
	case classify.SameCommit:
		return r.Clean()
	}
	return false
}

func conflictSymbol(r *Row) string {
	if wt, ok := r.WorkingTree.Get(); ok && wt.Conflicts {
		return SymbolConflict
	}
	return ""
}

func attributeSymbol(r *Row) string {
	switch {
	case r.Locked:
		return SymbolLocked
	case r.Prunable:
		return SymbolPrunable
	case r.Bare:
		return SymbolBare
	case r.Kind == KindBranch:
		return SymbolNoWorktree
	}
	return ""
}

func operationSymbol(r *Row) string {
	op, _ := r.Operation.Get()
	switch op {
	case git.OperationRebase:
		return SymbolRebase
	case git.OperationMerge:
		return SymbolMerge
	}
	return ""
}

var mainSymbols = map[classify.State]string{
	classify.IsTarget:      SymbolIsTarget,
	classify.WouldConflict: SymbolWouldConflict,
	classify.Empty:         SymbolSameCommit,
	classify.SameCommit:    SymbolSameCommitDirty,
	classify.Integrated:    SymbolIntegrated,
	classify.Diverged:      SymbolDiverged,
	classify.Ahead:         SymbolAhead,
	classify.Behind:        SymbolBehind,
}

func mainSymbol(r *Row) string {
	res, ok := r.Classification()
	if !ok {
		return ""
	}
	return mainSymbols[res.State]
}

func remoteSymbol(r *Row) string {
	rem, ok := r.Remote.Get()
	if !ok {
		return ""
	}
	switch {
	case rem.Ahead > 0 && rem.Behind > 0:
		return SymbolRemoteDiverged
	case rem.Ahead > 0:
		return SymbolRemoteAhead
	case rem.Behind > 0:
		return SymbolRemoteBehind
	}
	return SymbolRemoteInSync
}

func workingTreeSymbol(r *Row) string {
	wt, ok := r.WorkingTree.Get()
	if !ok {
		return ""
	}
	switch {
	case wt.Staged:
		return SymbolStaged
	case wt.Modified || wt.Renamed || wt.Deleted:
		return SymbolModified
	case wt.Untracked:
		return SymbolUntracked
	}
	return ""
}

// MainState is the classification tag for structured output, or "" if unknown.
func MainState(r *Row) string {
	res, ok := r.Classification()
	if !ok {
		return ""
	}
	return string(res.State)
}

// IsTarget reports whether the row is the comparison target itself.
func IsTarget(r *Row) bool {
	res, ok := r.Classification()
	return ok && res.State == classify.IsTarget
}

// IntegrationReason is set only for integrated rows.
func IntegrationReason(r *Row) string {
	res, ok := r.Classification()
	if !ok || res.State != classify.Integrated {
		return ""
	}
	return string(res.Reason)
}

// OperationState is "conflicts", "rebase", "merge", or "" when clean.
func OperationState(r *Row) string {
	if wt, ok := r.WorkingTree.Get(); ok && wt.Conflicts {
		return "conflicts"
	}
	op, _ := r.Operation.Get()
	return string(op)
}
