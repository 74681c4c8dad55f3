// Package indexer tails the contract's event logs, materializes the activity
// feed and leaderboard in Postgres, and fans decoded events out over the
// signal bus. It is the platform's source for everything the contract does
// not serve directly.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

const (
	// checkpointName keys the indexer's progress row.
	checkpointName = "activity_indexer"
	// lockKey guards against concurrent indexer replicas.
	lockKey = "indexer"
	// lockTTL is refreshed implicitly by reacquiring each cycle.
	lockTTL = 2 * time.Minute

	// ActivityChannel is the pub/sub channel carrying decoded activity.
	ActivityChannel = "activity"
	// ActivityStream is the durable stream mirror of the same payloads.
	ActivityStream = "stream:activity"
)

// LogSource yields decoded activity for a block range. *contract.Filterer
// satisfies it.
type LogSource interface {
	FilterActivity(ctx context.Context, fromBlock, toBlock uint64) ([]domain.Activity, error)
}

// HeadSource reports the current chain head. *ethclient.Client satisfies it.
type HeadSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Notifier is the slice of the notify package the indexer uses.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Config tunes the indexing loop.
type Config struct {
	// StartBlock is where indexing begins when no checkpoint exists,
	// normally the contract deployment block.
	StartBlock uint64
	// BatchBlocks caps the span of one log filter query.
	BatchBlocks uint64
	// Confirmations lags the head to stay clear of shallow reorgs.
	Confirmations uint64
	// PollInterval is the pause between head checks.
	PollInterval time.Duration
	// ArchiveInterval is the pause between archival passes. Zero disables
	// the archive loop.
	ArchiveInterval time.Duration
}

// Indexer drives the tail-decode-store-publish cycle. Writes are idempotent
// on (tx hash, log index), so the loop is safe to re-run over any range.
type Indexer struct {
	logs        LogSource
	head        HeadSource
	activities  domain.ActivityStore
	stats       domain.StatsStore
	checkpoints domain.CheckpointStore
	bus         domain.SignalBus
	locks       domain.LockManager
	cache       domain.MarketCache
	notifier    Notifier
	archiver    domain.Archiver
	cfg         Config
	logger      *slog.Logger
}

// New creates an Indexer. bus, cache, notifier, and archiver may be nil; the
// corresponding side effects are skipped.
func New(
	logs LogSource,
	head HeadSource,
	activities domain.ActivityStore,
	stats domain.StatsStore,
	checkpoints domain.CheckpointStore,
	bus domain.SignalBus,
	locks domain.LockManager,
	cache domain.MarketCache,
	notifier Notifier,
	archiver domain.Archiver,
	cfg Config,
	logger *slog.Logger,
) *Indexer {
	if cfg.BatchBlocks == 0 {
		cfg.BatchBlocks = 2000
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Indexer{
		logs:        logs,
		head:        head,
		activities:  activities,
		stats:       stats,
		checkpoints: checkpoints,
		bus:         bus,
		locks:       locks,
		cache:       cache,
		notifier:    notifier,
		archiver:    archiver,
		cfg:         cfg,
		logger:      logger.With("component", "indexer"),
	}
}

// Run blocks until the context is cancelled. It acquires the distributed
// indexer lock first, waiting if another replica holds it, then alternates
// between catching up on new blocks and sleeping out the poll interval.
func (ix *Indexer) Run(ctx context.Context) error {
	unlock, err := ix.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	ix.logger.InfoContext(ctx, "indexer started",
		slog.Uint64("start_block", ix.cfg.StartBlock),
		slog.Uint64("confirmations", ix.cfg.Confirmations),
	)

	ticker := time.NewTicker(ix.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := ix.CatchUp(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ix.logger.WarnContext(ctx, "catch-up failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunArchiver blocks until the context is cancelled, periodically moving
// aged activity to cold storage.
func (ix *Indexer) RunArchiver(ctx context.Context) error {
	if ix.archiver == nil || ix.cfg.ArchiveInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(ix.cfg.ArchiveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := ix.archiver.ArchiveOnce(ctx)
			if err != nil {
				ix.logger.WarnContext(ctx, "archive pass failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				ix.logger.InfoContext(ctx, "archived activity", slog.Int("rows", n))
			}
		}
	}
}

func (ix *Indexer) acquireLock(ctx context.Context) (func(), error) {
	for {
		unlock, err := ix.locks.Acquire(ctx, lockKey, lockTTL)
		if err == nil {
			return unlock, nil
		}
		if !errors.Is(err, domain.ErrLockHeld) {
			return nil, fmt.Errorf("indexer: acquire lock: %w", err)
		}

		ix.logger.InfoContext(ctx, "indexer lock held elsewhere, waiting")
		timer := time.NewTimer(lockTTL / 4)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// CatchUp processes every confirmed block past the checkpoint in batches.
// It is exported so the "index once" maintenance path can invoke a single
// pass without the loop.
func (ix *Indexer) CatchUp(ctx context.Context) error {
	head, err := ix.head.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("indexer: block number: %w", err)
	}
	if head < ix.cfg.Confirmations {
		return nil
	}
	safe := head - ix.cfg.Confirmations

	from, err := ix.nextBlock(ctx)
	if err != nil {
		return err
	}

	for from <= safe {
		to := from + ix.cfg.BatchBlocks - 1
		if to > safe {
			to = safe
		}

		if err := ix.processRange(ctx, from, to); err != nil {
			return err
		}
		if err := ix.checkpoints.Set(ctx, checkpointName, to); err != nil {
			return fmt.Errorf("indexer: set checkpoint: %w", err)
		}
		from = to + 1
	}
	return nil
}

func (ix *Indexer) nextBlock(ctx context.Context) (uint64, error) {
	last, err := ix.checkpoints.Get(ctx, checkpointName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ix.cfg.StartBlock, nil
		}
		return 0, fmt.Errorf("indexer: get checkpoint: %w", err)
	}
	return last + 1, nil
}

func (ix *Indexer) processRange(ctx context.Context, from, to uint64) error {
	items, err := ix.logs.FilterActivity(ctx, from, to)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	// Only newly inserted rows feed the derived pipeline. A replay after a
	// crash between here and the checkpoint write re-fetches the same logs,
	// but duplicates are filtered out before they can double-count stats or
	// re-announce events.
	inserted, err := ix.activities.InsertBatch(ctx, items)
	if err != nil {
		return err
	}

	for _, a := range inserted {
		if err := ix.applyStats(ctx, a); err != nil {
			return err
		}
		ix.publish(ctx, a)
		ix.invalidate(ctx, a)
		ix.alert(ctx, a)
	}

	ix.logger.InfoContext(ctx, "indexed range",
		slog.Uint64("from", from),
		slog.Uint64("to", to),
		slog.Int("events", len(inserted)),
		slog.Int("duplicates", len(items)-len(inserted)),
	)
	return nil
}

// applyStats folds one event into the user's materialized stats row.
// Points are accumulated from PointsEarned only; WinningsClaimed carries a
// points field too, but the contract emits both for the same claim and
// counting each would double the total.
func (ix *Indexer) applyStats(ctx context.Context, a domain.Activity) error {
	var delta func(*domain.UserStats)

	switch a.Type {
	case domain.ActivityBetPlaced:
		delta = func(s *domain.UserStats) { s.TotalBets++ }
	case domain.ActivityWinningsClaimed:
		delta = func(s *domain.UserStats) {
			s.CorrectBets++
			if a.Amount != nil {
				s.TotalWinnings = new(big.Int).Add(s.TotalWinnings, a.Amount)
			}
		}
	case domain.ActivityPointsEarned:
		delta = func(s *domain.UserStats) {
			if a.Points != nil {
				s.TotalPoints = new(big.Int).Add(s.TotalPoints, a.Points)
			}
		}
	default:
		return nil
	}

	stats, err := ix.stats.Get(ctx, a.User)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("indexer: get stats: %w", err)
		}
		stats = domain.UserStats{}
	}
	if stats.TotalPoints == nil {
		stats.TotalPoints = new(big.Int)
	}
	if stats.TotalWinnings == nil {
		stats.TotalWinnings = new(big.Int)
	}

	delta(&stats)

	if err := ix.stats.Upsert(ctx, a.User, stats); err != nil {
		return fmt.Errorf("indexer: upsert stats: %w", err)
	}
	return nil
}

// publish fans the activity item out over pub/sub and appends it to the
// durable stream. Delivery is best-effort; a bus outage never stalls
// indexing.
func (ix *Indexer) publish(ctx context.Context, a domain.Activity) {
	if ix.bus == nil {
		return
	}

	payload, err := json.Marshal(a)
	if err != nil {
		ix.logger.WarnContext(ctx, "marshal activity failed", slog.String("error", err.Error()))
		return
	}
	if err := ix.bus.Publish(ctx, ActivityChannel, payload); err != nil {
		ix.logger.WarnContext(ctx, "publish failed", slog.String("error", err.Error()))
	}
	if err := ix.bus.StreamAppend(ctx, ActivityStream, payload); err != nil {
		ix.logger.WarnContext(ctx, "stream append failed", slog.String("error", err.Error()))
	}
}

// invalidate clears cached reads the event made stale.
func (ix *Indexer) invalidate(ctx context.Context, a domain.Activity) {
	if ix.cache == nil {
		return
	}

	if a.MarketID != 0 || a.Type == domain.ActivityMarketCreated {
		if err := ix.cache.Invalidate(ctx, a.MarketID); err != nil {
			ix.logger.WarnContext(ctx, "cache invalidate failed", slog.String("error", err.Error()))
		}
	}
	if err := ix.cache.InvalidatePages(ctx); err != nil {
		ix.logger.WarnContext(ctx, "page invalidate failed", slog.String("error", err.Error()))
	}
}

// alert raises operator notifications for the market lifecycle events worth
// waking someone for.
func (ix *Indexer) alert(ctx context.Context, a domain.Activity) {
	if ix.notifier == nil {
		return
	}

	// The contract emits no cancellation or pause events; those alerts come
	// from the admin path instead.
	if a.Type != domain.ActivityMarketResolved {
		return
	}

	outcome := "NO"
	if a.Outcome != nil && *a.Outcome {
		outcome = "YES"
	}
	_ = ix.notifier.Notify(ctx, string(a.Type),
		"Market resolved",
		fmt.Sprintf("Market #%d resolved %s (block %d)", a.MarketID, outcome, a.BlockNumber))
}
