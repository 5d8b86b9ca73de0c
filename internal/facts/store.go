package facts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Backing persists entries of persistent kinds between invocations.
// Values are stored as JSON; freshness is decided by the Store.
type Backing interface {
	Load(key string) (raw []byte, fetchedAt time.Time, ok bool)
	Store(key string, raw []byte, fetchedAt time.Time)
}

// Store caches fetched values by Key and collapses concurrent fetches of the
// same key into one call. Locking is per key: a slow fetch only blocks
// callers asking for that same key.
//
// A shared fetch runs detached from the caller that started it, so one
// caller giving up never fails the others. It ends when it returns, when
// the fetch timeout passes, or when the hard context is cancelled.
//
// Entries are never collected; an expired entry is simply refetched on the
// next request.
type Store struct {
	slots   sync.Map // Key -> *slot
	flights singleflight.Group
	backing Backing
	now     func() time.Time
	hard    context.Context
	timeout time.Duration

	hits     atomic.Int64
	misses   atomic.Int64
	joined   atomic.Int64
	rechecks atomic.Int64
}

type slot struct {
	mu        sync.Mutex
	ok        bool
	value     any
	fetchedAt time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBacking persists entries of persistent kinds through b.
func WithBacking(b Backing) Option {
	return func(s *Store) { s.backing = b }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithHardContext cancels running fetches when ctx is done.
func WithHardContext(ctx context.Context) Option {
	return func(s *Store) { s.hard = ctx }
}

// WithFetchTimeout bounds every fetch. Callers still waiting when it
// passes start a new fetch. Zero leaves fetches unbounded.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now, hard: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats counts how requests were served.
type Stats struct {
	Hits   int64 // served from a fresh entry
	Misses int64 // triggered a fetch
	Shared int64 // waited on another caller's fetch
}

// Stats returns the request counters.
func (s *Store) Stats() Stats {
	rechecks := s.rechecks.Load()
	misses := s.misses.Load()
	return Stats{
		Hits:   s.hits.Load() + rechecks,
		Misses: misses,
		Shared: s.joined.Load() - misses - rechecks,
	}
}

func (s *Store) slot(key Key) *slot {
	if v, ok := s.slots.Load(key); ok {
		return v.(*slot)
	}
	v, _ := s.slots.LoadOrStore(key, &slot{})
	return v.(*slot)
}

func (s *Store) fresh(fetchedAt time.Time, ttl time.Duration) bool {
	if ttl == NoExpiry {
		return true
	}
	return s.now().Sub(fetchedAt) < ttl
}

// cached returns a fresh value for key from memory or the backing.
func cached[T any](s *Store, sl *slot, key Key, ttl time.Duration) (T, bool) {
	var zero T
	if ttl <= 0 {
		return zero, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.ok && s.fresh(sl.fetchedAt, ttl) {
		if v, ok := sl.value.(T); ok {
			return v, true
		}
	}
	if !sl.ok && key.Kind.Persistent() && s.backing != nil {
		if v, at, ok := loadBacked[T](s.backing, key); ok && s.fresh(at, ttl) {
			sl.ok, sl.value, sl.fetchedAt = true, v, at
			return v, true
		}
	}
	return zero, false
}

func (s *Store) remember(sl *slot, key Key, v any) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.ok, sl.value, sl.fetchedAt = true, v, s.now()
	if key.Kind.Persistent() && s.backing != nil {
		if raw, err := json.Marshal(v); err == nil {
			s.backing.Store(key.String(), raw, sl.fetchedAt)
		}
	}
}

// expiredError marks a shared fetch that was cut off by the store, not by
// a failure of its own.
type expiredError struct{ err error }

func (e *expiredError) Error() string { return e.err.Error() }
func (e *expiredError) Unwrap() error { return e.err }

// GetOrFetch returns the cached value for key if it is younger than ttl.
// Otherwise it calls fetch, unless a fetch for key is already running, in
// which case it waits for that result. Each caller stops waiting only when
// its own ctx ends.
//
// Errors are returned to every waiter but never cached. A ttl <= 0 only
// de-duplicates concurrent calls. Values of one Kind must share one type T.
func GetOrFetch[T any](ctx context.Context, s *Store, key Key, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	sl := s.slot(key)

	for {
		if v, ok := cached[T](s, sl, key, ttl); ok {
			s.hits.Add(1)
			return v, nil
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		s.joined.Add(1)
		ch := s.flights.DoChan(key.String(), func() (any, error) {
			if v, ok := cached[T](s, sl, key, ttl); ok {
				s.rechecks.Add(1)
				return v, nil
			}
			s.misses.Add(1)
			return s.run(ctx, func(fctx context.Context) (any, error) {
				v, err := fetch(fctx)
				if err == nil && ttl > 0 {
					s.remember(sl, key, v)
				}
				return v, err
			})
		})

		select {
		case res := <-ch:
			var expired *expiredError
			if errors.As(res.Err, &expired) {
				if err := ctx.Err(); err != nil {
					return zero, err
				}
				if s.hard.Err() == nil {
					continue
				}
			}
			if res.Err != nil {
				return zero, res.Err
			}
			v, ok := res.Val.(T)
			if !ok {
				return zero, fmt.Errorf("facts: %s holds %T, not %T", key, res.Val, zero)
			}
			return v, nil
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// run calls fetch under a context that keeps the values of ctx but is
// cancelled only by the store.
func (s *Store) run(ctx context.Context, fetch func(context.Context) (any, error)) (any, error) {
	var (
		fctx   context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		fctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	} else {
		fctx, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}
	defer cancel()
	stop := context.AfterFunc(s.hard, cancel)
	defer stop()

	v, err := fetch(fctx)
	if err != nil && fctx.Err() != nil {
		return nil, &expiredError{err: fctx.Err()}
	}
	return v, err
}

func loadBacked[T any](b Backing, key Key) (T, time.Time, bool) {
	var v T
	raw, at, ok := b.Load(key.String())
	if !ok {
		return v, at, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, at, false
	}
	return v, at, true
}
