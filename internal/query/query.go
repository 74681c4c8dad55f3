// Package query implements the read-accessor and mutation layer between the
// services and the contract. Reads are polled snapshots with explicit
// request coalescing and last-write-wins staleness resolution; writes are a
// two-phase submit/confirm lifecycle modelled as a state machine.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Snapshot is the state of one polled read at a point in time. Data holds the
// last successfully fetched value even while a refresh is in flight or after
// a failed refresh.
type Snapshot[T any] struct {
	Data      T         `json:"data"`
	UpdatedAt time.Time `json:"updatedAt"`
	Err       error     `json:"-"`
	IsLoading bool      `json:"isLoading"`
	IsError   bool      `json:"isError"`
}

// FetchFunc produces a fresh value for a query.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Options tunes one query's polling behaviour.
type Options struct {
	// Interval between background polls. Zero disables the poll loop; the
	// query then only refreshes on explicit Refetch.
	Interval time.Duration
	// MaxRetries bounds retry attempts within one poll tick.
	MaxRetries int
	// Backoff is the base delay between retries, doubled per attempt.
	Backoff time.Duration
	// Timeout applied to each fetch. Zero means no per-fetch deadline.
	Timeout time.Duration
}

// Query is a polled, cached read keyed by (endpoint, args). Concurrent
// callers share one Query per key via Registry; whichever fetch completes
// with the highest sequence number wins, so an out-of-order stale response
// never overwrites fresher data.
type Query[T any] struct {
	key   string
	fetch FetchFunc[T]
	opts  Options
	log   *slog.Logger

	mu       sync.Mutex
	snap     Snapshot[T]
	nextSeq  uint64
	applied  uint64
	inflight int

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a Query. The key names the endpoint plus arguments and is used
// for logging and registry lookup.
func New[T any](key string, fetch FetchFunc[T], opts Options, log *slog.Logger) *Query[T] {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Query[T]{
		key:   key,
		fetch: fetch,
		opts:  opts,
		log:   log.With("component", "query", "key", key),
		stop:  make(chan struct{}),
	}
}

// Key returns the query's registry key.
func (q *Query[T]) Key() string { return q.key }

// Get returns the current snapshot without triggering a fetch.
func (q *Query[T]) Get() Snapshot[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snap
}

// Refetch performs a fetch right away and returns the snapshot it produced.
// Each call gets its own sequence number; if a newer fetch has already
// completed by the time this one does, the result is discarded and the
// fresher snapshot is returned instead.
func (q *Query[T]) Refetch(ctx context.Context) (Snapshot[T], error) {
	q.mu.Lock()
	q.nextSeq++
	seq := q.nextSeq
	q.inflight++
	q.snap.IsLoading = true
	q.mu.Unlock()

	fetchCtx := ctx
	if q.opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, q.opts.Timeout)
		defer cancel()
	}
	data, err := q.fetch(fetchCtx)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.inflight--
	if q.inflight == 0 {
		q.snap.IsLoading = false
	}

	// Last-write-wins: a response from an older request never overwrites the
	// result of a newer one.
	if seq > q.applied {
		q.applied = seq
		if err != nil {
			q.snap.Err = err
			q.snap.IsError = true
		} else {
			q.snap.Data = data
			q.snap.Err = nil
			q.snap.IsError = false
			q.snap.UpdatedAt = time.Now()
		}
	}
	return q.snap, err
}

// Run polls at the configured interval until the context is cancelled or
// Stop is called. Failed polls are retried with doubling backoff up to
// MaxRetries, then surfaced in the snapshot until the next tick.
func (q *Query[T]) Run(ctx context.Context) {
	if q.opts.Interval <= 0 {
		return
	}

	// Prime the snapshot before the first tick.
	q.pollOnce(ctx)

	ticker := time.NewTicker(q.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.stop:
			return
		case <-ticker.C:
			q.pollOnce(ctx)
		}
	}
}

// Stop terminates the poll loop. In-flight fetches are abandoned, not
// interrupted mid-RPC.
func (q *Query[T]) Stop() {
	q.stopOnce.Do(func() { close(q.stop) })
}

func (q *Query[T]) pollOnce(ctx context.Context) {
	backoff := q.opts.Backoff
	for attempt := 0; ; attempt++ {
		_, err := q.Refetch(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		if attempt >= q.opts.MaxRetries {
			q.log.Warn("poll failed", "attempts", attempt+1, "error", err)
			return
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-q.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff *= 2
	}
}

// Registry coalesces queries by key so concurrent callers asking for the
// same (endpoint, args) pair share one poll loop and one in-flight fetch
// budget instead of issuing duplicate RPCs.
type Registry struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]any)}
}

// Key builds a registry key from an endpoint name and its arguments.
func Key(endpoint string, args ...any) string {
	key := endpoint
	for _, a := range args {
		key += fmt.Sprintf(":%v", a)
	}
	return key
}

// Lookup returns the existing Query for key, or registers a new one built
// from fetch and opts. A key previously registered at a different type is
// replaced.
func Lookup[T any](r *Registry, key string, fetch FetchFunc[T], opts Options, log *slog.Logger) *Query[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		if typed, ok := existing.(*Query[T]); ok {
			return typed
		}
	}
	q := New(key, fetch, opts, log)
	r.entries[key] = q
	return q
}

// Remove drops a key from the registry, stopping its poll loop if the entry
// exposes one.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		if stopper, ok := existing.(interface{ Stop() }); ok {
			stopper.Stop()
		}
		delete(r.entries, key)
	}
}
