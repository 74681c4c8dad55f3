package domain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ActivityStore persists decoded contract events for the activity feed.
type ActivityStore interface {
	// Insert stores an activity item. Re-inserting the same (TxHash,
	// LogIndex) pair is a no-op, making indexing idempotent.
	Insert(ctx context.Context, a Activity) error
	// InsertBatch stores many items and returns the subset that was newly
	// inserted, so callers can fold derived state exactly once per event
	// even when a block range is replayed.
	InsertBatch(ctx context.Context, items []Activity) ([]Activity, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]Activity, error)
	ListByMarket(ctx context.Context, marketID uint64, opts ListOpts) ([]Activity, error)
	ListByUser(ctx context.Context, user common.Address, opts ListOpts) ([]Activity, error)
	// ListBefore returns activity older than the cutoff, for archival.
	ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]Activity, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StatsStore persists per-user cumulative statistics materialized from
// contract events, powering the leaderboard.
type StatsStore interface {
	Upsert(ctx context.Context, user common.Address, stats UserStats) error
	Get(ctx context.Context, user common.Address) (UserStats, error)
	// ListRanked returns entries ordered by points descending, winnings as
	// tiebreak, with Rank filled from the overall ordering.
	ListRanked(ctx context.Context, opts ListOpts) ([]LeaderboardEntry, error)
	Rank(ctx context.Context, user common.Address) (LeaderboardEntry, error)
	Count(ctx context.Context) (int64, error)
}

// CheckpointStore tracks the last block the indexer has fully processed.
type CheckpointStore interface {
	Get(ctx context.Context, name string) (uint64, error)
	Set(ctx context.Context, name string, block uint64) error
}
