package domain

import (
	"context"
	"time"
)

// MarketCache caches contract market reads so the HTTP layer does not hit the
// RPC node on every request. Implementations are free to expire entries.
type MarketCache interface {
	Set(ctx context.Context, market Market) error
	Get(ctx context.Context, id uint64) (Market, error)
	SetPage(ctx context.Context, offset, limit int, markets []Market) error
	GetPage(ctx context.Context, offset, limit int) ([]Market, error)
	Invalidate(ctx context.Context, id uint64) error
	InvalidatePages(ctx context.Context) error
}

// SignalBus provides pub/sub fan-out plus durable stream append/read. It
// carries activity items from the indexer to the WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// RateLimiter throttles outbound RPC calls.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// LockManager provides distributed locks so only one indexer instance tails
// the chain at a time.
type LockManager interface {
	// Acquire returns an unlock function on success, or ErrLockHeld when the
	// lock is already taken.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
