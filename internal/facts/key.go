package facts

import (
	"hash/fnv"
	"math"
	"time"
)

// Kind names a category of cached fact.
type Kind string

const (
	KindCI            Kind = "ci"
	KindMergeBase     Kind = "merge-base"
	KindTree          Kind = "tree"
	KindDivergence    Kind = "divergence"
	KindDefaultBranch Kind = "default-branch"
	KindForgeAuth     Kind = "forge-auth"
)

// NoExpiry keeps an entry for the lifetime of the store.
const NoExpiry time.Duration = math.MaxInt64

// Key identifies a cached fact.
type Key struct {
	Kind   Kind
	Branch string
	Commit string
}

// String renders the key as used in the persisted cache file.
func (k Key) String() string {
	s := string(k.Kind) + ":" + k.Branch
	if k.Commit != "" {
		s += "@" + k.Commit
	}
	return s
}

// PairKey builds an order-independent key for a fact about two commits,
// so merge-base(a, b) and merge-base(b, a) share one entry.
func PairKey(kind Kind, a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key{Kind: kind, Branch: a, Commit: b}
}

// Persistent reports whether entries of this kind outlive one invocation.
func (k Kind) Persistent() bool {
	return k == KindCI || k == KindDefaultBranch
}

// CITTL spreads CI expiry between base and 2*base, derived from seed
// (normally the repository path) so concurrent invocations in different
// repositories don't refresh in lockstep while one repository stays stable.
func CITTL(base time.Duration, seed string) time.Duration {
	if base <= 0 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(seed))
	jitter := time.Duration(h.Sum32()%1000) * base / 1000
	return base + jitter
}
