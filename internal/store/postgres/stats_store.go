package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// StatsStore implements domain.StatsStore using PostgreSQL.
type StatsStore struct {
	pool *pgxpool.Pool
}

// NewStatsStore creates a StatsStore backed by the given pool.
func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

// Upsert writes the full stats row for a user. The indexer recomputes the
// cumulative values, so the row is replaced rather than incremented.
func (s *StatsStore) Upsert(ctx context.Context, user common.Address, stats domain.UserStats) error {
	const query = `
		INSERT INTO user_stats (address, total_points, total_bets, correct_bets, total_winnings, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (address) DO UPDATE SET
			total_points = EXCLUDED.total_points,
			total_bets = EXCLUDED.total_bets,
			correct_bets = EXCLUDED.correct_bets,
			total_winnings = EXCLUDED.total_winnings,
			updated_at = NOW()`

	_, err := s.pool.Exec(ctx, query,
		user.Hex(), bigToDB(stats.TotalPoints), int64(stats.TotalBets),
		int64(stats.CorrectBets), bigToDB(stats.TotalWinnings),
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert stats %s: %w", user.Hex(), err)
	}
	return nil
}

// Get returns the stats row for one user, or domain.ErrNotFound.
func (s *StatsStore) Get(ctx context.Context, user common.Address) (domain.UserStats, error) {
	const query = `
		SELECT total_points::text, total_bets, correct_bets, total_winnings::text
		FROM user_stats WHERE address = $1`

	var (
		stats              domain.UserStats
		points, winnings   *string
		totalBets, correct int64
	)
	err := s.pool.QueryRow(ctx, query, user.Hex()).
		Scan(&points, &totalBets, &correct, &winnings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserStats{}, domain.ErrNotFound
		}
		return domain.UserStats{}, fmt.Errorf("postgres: get stats %s: %w", user.Hex(), err)
	}

	stats.TotalPoints = dbToBig(points)
	stats.TotalBets = uint64(totalBets)
	stats.CorrectBets = uint64(correct)
	stats.TotalWinnings = dbToBig(winnings)
	return stats, nil
}

const rankedSelect = `
	SELECT address, total_points::text, total_bets, correct_bets, total_winnings::text,
		RANK() OVER (ORDER BY total_points DESC, total_winnings DESC) AS rank
	FROM user_stats`

func scanEntry(row pgx.Row) (domain.LeaderboardEntry, error) {
	var (
		e                  domain.LeaderboardEntry
		addr               string
		points, winnings   *string
		totalBets, correct int64
		rank               int64
	)
	if err := row.Scan(&addr, &points, &totalBets, &correct, &winnings, &rank); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	e.Rank = int(rank)
	e.Address = common.HexToAddress(addr)
	e.Stats = domain.UserStats{
		TotalPoints:   dbToBig(points),
		TotalBets:     uint64(totalBets),
		CorrectBets:   uint64(correct),
		TotalWinnings: dbToBig(winnings),
	}
	return e, nil
}

// ListRanked returns leaderboard entries ordered by points, winnings as
// tiebreak. Rank reflects the overall ordering even with pagination.
func (s *StatsStore) ListRanked(ctx context.Context, opts domain.ListOpts) ([]domain.LeaderboardEntry, error) {
	query := rankedSelect + ` ORDER BY rank`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan leaderboard: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Rank returns the leaderboard entry for one user, including their overall
// rank, or domain.ErrNotFound.
func (s *StatsStore) Rank(ctx context.Context, user common.Address) (domain.LeaderboardEntry, error) {
	query := `SELECT * FROM (` + rankedSelect + `) ranked WHERE address = $1`

	e, err := scanEntry(s.pool.QueryRow(ctx, query, user.Hex()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LeaderboardEntry{}, domain.ErrNotFound
		}
		return domain.LeaderboardEntry{}, fmt.Errorf("postgres: rank %s: %w", user.Hex(), err)
	}
	return e, nil
}

// Count returns the number of users on the leaderboard.
func (s *StatsStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_stats`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count stats: %w", err)
	}
	return n, nil
}

// Compile-time interface check.
var _ domain.StatsStore = (*StatsStore)(nil)
