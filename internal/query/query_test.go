package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRefetchUpdatesSnapshot(t *testing.T) {
	q := New("markets:list", func(ctx context.Context) (int, error) {
		return 42, nil
	}, Options{}, nil)

	snap, err := q.Refetch(context.Background())
	if err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if snap.Data != 42 || snap.IsError || snap.IsLoading {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestRefetchKeepsLastDataOnError(t *testing.T) {
	calls := 0
	q := New("market:1", func(ctx context.Context) (int, error) {
		calls++
		if calls > 1 {
			return 0, errors.New("rpc down")
		}
		return 7, nil
	}, Options{}, nil)

	ctx := context.Background()
	if _, err := q.Refetch(ctx); err != nil {
		t.Fatalf("first Refetch: %v", err)
	}

	snap, err := q.Refetch(ctx)
	if err == nil {
		t.Fatal("second Refetch should fail")
	}
	if !snap.IsError {
		t.Error("IsError not set after failure")
	}
	// Stale-while-error: the previous value must survive.
	if snap.Data != 7 {
		t.Errorf("Data = %d, want previous value 7", snap.Data)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	// The first fetch is slow and returns an old value; a second fetch
	// started later completes first. The slow response must not overwrite
	// the fresher one.
	release := make(chan struct{})
	first := true
	var mu sync.Mutex

	q := New("market:9", func(ctx context.Context) (string, error) {
		mu.Lock()
		slow := first
		first = false
		mu.Unlock()
		if slow {
			<-release
			return "stale", nil
		}
		return "fresh", nil
	}, Options{}, nil)

	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = q.Refetch(ctx) // slow, seq 1
	}()

	// Give the slow fetch time to start, then run the fast one.
	time.Sleep(20 * time.Millisecond)
	snap, err := q.Refetch(ctx) // fast, seq 2
	if err != nil {
		t.Fatalf("fast Refetch: %v", err)
	}
	if snap.Data != "fresh" {
		t.Fatalf("fast snapshot = %q", snap.Data)
	}

	close(release)
	wg.Wait()

	if got := q.Get().Data; got != "fresh" {
		t.Errorf("after stale completion Data = %q, want fresh", got)
	}
}

func TestRunPollsUntilStopped(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	q := New("platform", func(ctx context.Context) (int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		return n, nil
	}, Options{Interval: 10 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	n := calls
	mu.Unlock()
	if n < 2 {
		t.Errorf("poll loop ran %d times, want at least 2", n)
	}
	if q.Get().Data == 0 {
		t.Error("snapshot never populated")
	}
}

func TestPollRetriesWithBackoff(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	q := New("market:3", func(ctx context.Context) (int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			return 0, errors.New("flaky")
		}
		return 99, nil
	}, Options{MaxRetries: 3, Backoff: time.Millisecond}, nil)

	q.pollOnce(context.Background())

	if got := q.Get().Data; got != 99 {
		t.Errorf("Data = %d after retries, want 99", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Errorf("fetch called %d times, want 3", calls)
	}
}

func TestRegistryCoalescesByKey(t *testing.T) {
	r := NewRegistry()
	fetch := func(ctx context.Context) (int, error) { return 1, nil }

	a := Lookup(r, Key("market", 5), fetch, Options{}, nil)
	b := Lookup(r, Key("market", 5), fetch, Options{}, nil)
	c := Lookup(r, Key("market", 6), fetch, Options{}, nil)

	if a != b {
		t.Error("same key should return the same query")
	}
	if a == c {
		t.Error("different keys must not share a query")
	}

	r.Remove(Key("market", 5))
	d := Lookup(r, Key("market", 5), fetch, Options{}, nil)
	if d == a {
		t.Error("removed key should be rebuilt on next lookup")
	}
}

func TestKey(t *testing.T) {
	if got := Key("markets", 10, 0); got != "markets:10:0" {
		t.Errorf("Key = %q", got)
	}
	if got := Key("platform"); got != "platform" {
		t.Errorf("Key = %q", got)
	}
}
