package postgres

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// ActivityStore implements domain.ActivityStore using PostgreSQL.
type ActivityStore struct {
	pool *pgxpool.Pool
}

// NewActivityStore creates an ActivityStore backed by the given pool.
func NewActivityStore(pool *pgxpool.Pool) *ActivityStore {
	return &ActivityStore{pool: pool}
}

const activitySelectCols = `id, type, market_id, user_addr, amount::text,
	is_yes, outcome, points::text, tx_hash, log_index, block_number, timestamp`

const activityInsert = `
	INSERT INTO activity (
		id, type, market_id, user_addr, amount,
		is_yes, outcome, points, tx_hash, log_index, block_number, timestamp
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10, $11, $12
	) ON CONFLICT (tx_hash, log_index) DO NOTHING`

// bigToDB renders a big integer as a string for a NUMERIC column, keeping
// NULL for absent values.
func bigToDB(v *big.Int) any {
	if v == nil {
		return nil
	}
	return v.String()
}

func dbToBig(s *string) *big.Int {
	if s == nil {
		return nil
	}
	v, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		return nil
	}
	return v
}

func activityArgs(a domain.Activity) []any {
	return []any{
		a.ID, string(a.Type), int64(a.MarketID), a.User.Hex(), bigToDB(a.Amount),
		a.IsYes, a.Outcome, bigToDB(a.Points),
		a.TxHash.Hex(), int32(a.LogIndex), int64(a.BlockNumber), a.Timestamp,
	}
}

func scanActivityRows(rows pgx.Rows) ([]domain.Activity, error) {
	var items []domain.Activity
	for rows.Next() {
		var (
			a              domain.Activity
			typ            string
			marketID       int64
			userAddr       string
			amount, points *string
			txHash         string
			logIndex       int32
			blockNumber    int64
		)
		if err := rows.Scan(
			&a.ID, &typ, &marketID, &userAddr, &amount,
			&a.IsYes, &a.Outcome, &points,
			&txHash, &logIndex, &blockNumber, &a.Timestamp,
		); err != nil {
			return nil, err
		}
		a.Type = domain.ActivityType(typ)
		a.MarketID = uint64(marketID)
		a.User = common.HexToAddress(userAddr)
		a.Amount = dbToBig(amount)
		a.Points = dbToBig(points)
		a.TxHash = common.HexToHash(txHash)
		a.LogIndex = uint(logIndex)
		a.BlockNumber = uint64(blockNumber)
		a.Timestamp = a.Timestamp.UTC()
		items = append(items, a)
	}
	return items, rows.Err()
}

// Insert stores one activity item. Duplicate (tx_hash, log_index) pairs are
// skipped, so re-indexing a block range is safe.
func (s *ActivityStore) Insert(ctx context.Context, a domain.Activity) error {
	if _, err := s.pool.Exec(ctx, activityInsert, activityArgs(a)...); err != nil {
		return fmt.Errorf("postgres: insert activity %s: %w", a.ID, err)
	}
	return nil
}

// InsertBatch inserts multiple activity items efficiently using pgx Batch.
// The (tx_hash, log_index) conflict clause turns duplicates into no-ops; the
// returned slice holds only the items that were newly inserted, so a replayed
// range never double-counts into materialized stats.
func (s *ActivityStore) InsertBatch(ctx context.Context, items []domain.Activity) ([]domain.Activity, error) {
	if len(items) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, a := range items {
		batch.Queue(activityInsert, activityArgs(a)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := make([]domain.Activity, 0, len(items))
	for i, a := range items {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("postgres: insert activity batch item %d: %w", i, err)
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, a)
		}
	}
	return inserted, nil
}

func (s *ActivityStore) list(ctx context.Context, where string, args []any, opts domain.ListOpts) ([]domain.Activity, error) {
	query := `SELECT ` + activitySelectCols + ` FROM activity` + where +
		` ORDER BY timestamp DESC, log_index DESC`

	argIdx := len(args) + 1
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
		return nil, fmt.Errorf("postgres: list activity: %w", err)
	}
	defer rows.Close()

	items, err := scanActivityRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan activity: %w", err)
	}
	return items, nil
}

// ListRecent returns the newest activity items across all markets.
func (s *ActivityStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.Activity, error) {
	return s.list(ctx, "", nil, opts)
}

// ListByMarket returns activity for one market, newest first.
func (s *ActivityStore) ListByMarket(ctx context.Context, marketID uint64, opts domain.ListOpts) ([]domain.Activity, error) {
	return s.list(ctx, " WHERE market_id = $1", []any{int64(marketID)}, opts)
}

// ListByUser returns activity involving one address, newest first.
func (s *ActivityStore) ListByUser(ctx context.Context, user common.Address, opts domain.ListOpts) ([]domain.Activity, error) {
	return s.list(ctx, " WHERE user_addr = $1", []any{user.Hex()}, opts)
}

// ListBefore returns activity strictly older than cutoff, oldest first, for
// archiving. A limit of 0 means no limit.
func (s *ActivityStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Activity, error) {
	query := `SELECT ` + activitySelectCols + ` FROM activity WHERE timestamp < $1 ORDER BY timestamp ASC, log_index ASC`
	args := []any{cutoff}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list activity before: %w", err)
	}
	defer rows.Close()
	return scanActivityRows(rows)
}

// DeleteBefore removes activity older than cutoff. Returns the number deleted.
func (s *ActivityStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM activity WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete activity before: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.ActivityStore = (*ActivityStore)(nil)
