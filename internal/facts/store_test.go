package facts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrFetch_DeduplicatesConcurrentCalls(t *testing.T) {
	t.Parallel()

	const callers = 50
	s := NewStore()
	key := Key{Kind: KindCI, Branch: "feature", Commit: "abc123"}

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "passed", nil
	}

	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = GetOrFetch(context.Background(), s, key, time.Minute, fetch)
		}()
	}

	// Wait until every other caller is parked on the in-flight fetch.
	deadline := time.Now().Add(5 * time.Second)
	for s.Stats().Shared < callers-1 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d callers joined the in-flight fetch", s.Stats().Shared)
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	for i := range callers {
		if errs[i] != nil || results[i] != "passed" {
			t.Errorf("caller %d got (%q, %v), want (passed, nil)", i, results[i], errs[i])
		}
	}
	if st := s.Stats(); st.Misses != 1 {
		t.Errorf("Misses = %d, want 1", st.Misses)
	}
}

func TestGetOrFetch_TTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))
	key := Key{Kind: KindCI, Branch: "b", Commit: "c"}

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}
	get := func() int {
		t.Helper()
		v, err := GetOrFetch(context.Background(), s, key, 30*time.Second, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch = %v", err)
		}
		return v
	}

	if v := get(); v != 1 {
		t.Fatalf("first fetch = %d, want 1", v)
	}
	now = now.Add(29 * time.Second)
	if v := get(); v != 1 {
		t.Errorf("within ttl = %d, want cached 1", v)
	}
	now = now.Add(2 * time.Second)
	if v := get(); v != 2 {
		t.Errorf("after ttl = %d, want refetched 2", v)
	}
}

func TestGetOrFetch_NoExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewStore(WithClock(func() time.Time { return now }))
	key := PairKey(KindMergeBase, "aaa", "bbb")

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "base", nil
	}
	for range 3 {
		if _, err := GetOrFetch(context.Background(), s, key, NoExpiry, fetch); err != nil {
			t.Fatal(err)
		}
		now = now.Add(24 * time.Hour)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestGetOrFetch_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	s := NewStore()
	key := Key{Kind: KindTree, Commit: "abc"}
	boom := errors.New("boom")

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "tree", nil
	}

	if _, err := GetOrFetch(context.Background(), s, key, NoExpiry, fetch); !errors.Is(err, boom) {
		t.Fatalf("first call error = %v, want boom", err)
	}
	v, err := GetOrFetch(context.Background(), s, key, NoExpiry, fetch)
	if err != nil || v != "tree" {
		t.Errorf("second call = (%q, %v), want (tree, nil)", v, err)
	}
}

func TestGetOrFetch_ZeroTTLOnlyDeduplicates(t *testing.T) {
	t.Parallel()

	s := NewStore()
	key := Key{Kind: KindDivergence, Branch: "x"}
	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}
	for range 3 {
		if _, err := GetOrFetch(context.Background(), s, key, 0, fetch); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Errorf("fetch called %d times, want 3 (sequential calls with ttl 0)", calls)
	}
}

func TestGetOrFetch_PerKeyLocking(t *testing.T) {
	t.Parallel()

	s := NewStore()
	slowKey := Key{Kind: KindCI, Branch: "slow"}
	fastKey := Key{Kind: KindCI, Branch: "fast"}

	fastDone := make(chan struct{})
	slowStarted := make(chan struct{})
	slowResult := make(chan error, 1)

	go func() {
		_, err := GetOrFetch(context.Background(), s, slowKey, time.Minute, func(ctx context.Context) (string, error) {
			close(slowStarted)
			select {
			case <-fastDone:
				return "slow", nil
			case <-time.After(5 * time.Second):
				return "", errors.New("fast key was blocked by slow key")
			}
		})
		slowResult <- err
	}()

	<-slowStarted
	if _, err := GetOrFetch(context.Background(), s, fastKey, time.Minute, func(ctx context.Context) (string, error) {
		return "fast", nil
	}); err != nil {
		t.Fatalf("fast fetch = %v", err)
	}
	close(fastDone)

	if err := <-slowResult; err != nil {
		t.Error(err)
	}
}

func TestGetOrFetch_WaiterHonoursContext(t *testing.T) {
	t.Parallel()

	s := NewStore()
	key := Key{Kind: KindCI, Branch: "hang"}
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = GetOrFetch(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "late", nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := GetOrFetch(ctx, s, key, time.Minute, func(ctx context.Context) (string, error) {
		t.Error("waiter must not start its own fetch")
		return "", nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("waiter error = %v, want context.DeadlineExceeded", err)
	}
}

func TestGetOrFetch_OwnerTimeoutSparesWaiters(t *testing.T) {
	t.Parallel()

	s := NewStore()
	key := Key{Kind: KindTree, Commit: "target"}
	started := make(chan struct{})

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		close(started)
		select {
		case <-time.After(200 * time.Millisecond):
			return "tree", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	ownerCtx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	ownerErr := make(chan error, 1)
	go func() {
		_, err := GetOrFetch(ownerCtx, s, key, NoExpiry, fetch)
		ownerErr <- err
	}()
	<-started

	v, err := GetOrFetch(context.Background(), s, key, NoExpiry, fetch)
	if err != nil || v != "tree" {
		t.Errorf("waiter got (%q, %v), want (tree, nil)", v, err)
	}
	if err := <-ownerErr; !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("owner error = %v, want context.DeadlineExceeded", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

func TestGetOrFetch_ExpiredFetchRetried(t *testing.T) {
	t.Parallel()

	s := NewStore(WithFetchTimeout(50 * time.Millisecond))
	key := Key{Kind: KindMergeBase, Branch: "a", Commit: "b"}

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "base", nil
	}

	v, err := GetOrFetch(context.Background(), s, key, NoExpiry, fetch)
	if err != nil || v != "base" {
		t.Errorf("GetOrFetch = (%q, %v), want (base, nil)", v, err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("fetch called %d times, want 2", got)
	}
}

func TestGetOrFetch_HardContextStopsFetch(t *testing.T) {
	t.Parallel()

	hard, kill := context.WithCancel(context.Background())
	s := NewStore(WithHardContext(hard))
	key := Key{Kind: KindCI, Branch: "hang"}

	var calls atomic.Int32
	started := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := GetOrFetch(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
			calls.Add(1)
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		})
		errc <- err
	}()
	<-started
	kill()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fetch kept running after the hard context ended")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}

type mapBacking struct {
	mu      sync.Mutex
	entries map[string]backed
}

type backed struct {
	raw []byte
	at  time.Time
}

func (m *mapBacking) Load(key string) ([]byte, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e.raw, e.at, ok
}

func (m *mapBacking) Store(key string, raw []byte, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = backed{raw: raw, at: at}
}

func TestGetOrFetch_Backing(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := &mapBacking{entries: map[string]backed{
		"default-branch:repo": {raw: []byte(`"trunk"`), at: now.Add(-90 * 24 * time.Hour)},
	}}
	s := NewStore(WithBacking(b), WithClock(func() time.Time { return now }))

	t.Run("persisted value served without fetch", func(t *testing.T) {
		v, err := GetOrFetch(context.Background(), s, Key{Kind: KindDefaultBranch, Branch: "repo"}, NoExpiry,
			func(ctx context.Context) (string, error) {
				t.Error("fetch called despite persisted entry")
				return "", nil
			})
		if err != nil || v != "trunk" {
			t.Errorf("GetOrFetch = (%q, %v), want (trunk, nil)", v, err)
		}
	})

	t.Run("persistent kind written through", func(t *testing.T) {
		key := Key{Kind: KindCI, Branch: "feature", Commit: "abc"}
		if _, err := GetOrFetch(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
			return "running", nil
		}); err != nil {
			t.Fatal(err)
		}
		raw, at, ok := b.Load(key.String())
		if !ok || string(raw) != `"running"` || !at.Equal(now) {
			t.Errorf("backing entry = (%s, %v, %v)", raw, at, ok)
		}
	})

	t.Run("non-persistent kind kept in memory only", func(t *testing.T) {
		key := PairKey(KindMergeBase, "a", "b")
		if _, err := GetOrFetch(context.Background(), s, key, NoExpiry, func(ctx context.Context) (string, error) {
			return "base", nil
		}); err != nil {
			t.Fatal(err)
		}
		if _, _, ok := b.Load(key.String()); ok {
			t.Error("merge-base entry was persisted")
		}
	})

	t.Run("stale persisted value refetched", func(t *testing.T) {
		key := Key{Kind: KindCI, Branch: "old", Commit: "def"}
		b.Store(key.String(), []byte(`"failed"`), now.Add(-time.Hour))
		v, err := GetOrFetch(context.Background(), s, key, time.Minute, func(ctx context.Context) (string, error) {
			return "passed", nil
		})
		if err != nil || v != "passed" {
			t.Errorf("GetOrFetch = (%q, %v), want (passed, nil)", v, err)
		}
	})
}

func TestPairKey_Symmetric(t *testing.T) {
	t.Parallel()
	if PairKey(KindMergeBase, "abc", "def") != PairKey(KindMergeBase, "def", "abc") {
		t.Error("PairKey should not depend on argument order")
	}
}

func TestCITTL(t *testing.T) {
	t.Parallel()

	base := 30 * time.Second
	for _, seed := range []string{"/home/a/repo", "/home/b/other", ""} {
		got := CITTL(base, seed)
		if got < base || got >= 2*base {
			t.Errorf("CITTL(%q) = %v, want within [%v, %v)", seed, got, base, 2*base)
		}
		if again := CITTL(base, seed); again != got {
			t.Errorf("CITTL(%q) not deterministic: %v then %v", seed, got, again)
		}
	}
	if got := CITTL(0, "x"); got != 0 {
		t.Errorf("CITTL(0) = %v, want 0", got)
	}
}
