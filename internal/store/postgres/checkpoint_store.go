package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// CheckpointStore implements domain.CheckpointStore using PostgreSQL.
type CheckpointStore struct {
	pool *pgxpool.Pool
}

// NewCheckpointStore creates a CheckpointStore backed by the given pool.
func NewCheckpointStore(pool *pgxpool.Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

// Get returns the stored block number for the named checkpoint, or
// domain.ErrNotFound when the indexer has never run.
func (s *CheckpointStore) Get(ctx context.Context, name string) (uint64, error) {
	var block int64
	err := s.pool.QueryRow(ctx,
		`SELECT block_number FROM checkpoints WHERE name = $1`, name,
	).Scan(&block)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("postgres: get checkpoint %s: %w", name, err)
	}
	return uint64(block), nil
}

// Set records the last fully processed block for the named checkpoint.
func (s *CheckpointStore) Set(ctx context.Context, name string, block uint64) error {
	const query = `
		INSERT INTO checkpoints (name, block_number, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			block_number = EXCLUDED.block_number,
			updated_at = NOW()`

	if _, err := s.pool.Exec(ctx, query, name, int64(block)); err != nil {
		return fmt.Errorf("postgres: set checkpoint %s: %w", name, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.CheckpointStore = (*CheckpointStore)(nil)
