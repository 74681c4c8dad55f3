package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Akanimoh12/iPredict/internal/domain"
	"github.com/Akanimoh12/iPredict/internal/query"
)

// AdminReader is the slice of contract reads the admin service needs.
type AdminReader interface {
	Admin(ctx context.Context) (common.Address, error)
}

// AdminWriter is the slice of contract writes the admin service needs.
// *contract.Transactor satisfies it.
type AdminWriter interface {
	From() common.Address
	CreateMarket(ctx context.Context, question, imageURL, category string, duration time.Duration) (*types.Transaction, error)
	ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (*types.Transaction, error)
	CancelMarket(ctx context.Context, marketID uint64) (*types.Transaction, error)
	Pause(ctx context.Context) (*types.Transaction, error)
	Unpause(ctx context.Context) (*types.Transaction, error)
	WithdrawFees(ctx context.Context) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Notifier raises operator alerts. *notify.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// AdminService submits privileged contract writes. Every operation first
// checks that the configured wallet is the contract admin, then runs the
// two-phase submit/confirm lifecycle. Confirmed writes invalidate the market
// cache so reads pick up the new state.
type AdminService struct {
	reader   AdminReader
	writer   AdminWriter
	cache    domain.MarketCache
	notifier Notifier
	logger   *slog.Logger
}

// NewAdminService creates an AdminService. notifier may be nil.
func NewAdminService(reader AdminReader, writer AdminWriter, cache domain.MarketCache, notifier Notifier, logger *slog.Logger) *AdminService {
	return &AdminService{
		reader:   reader,
		writer:   writer,
		cache:    cache,
		notifier: notifier,
		logger:   logger.With("component", "admin_service"),
	}
}

// notify raises an operator alert for state changes the chain itself emits
// no event for (cancellation, pause).
func (s *AdminService) notify(ctx context.Context, event, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event, title, message); err != nil {
		s.logger.WarnContext(ctx, "notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// requireAdmin rejects operations when the configured wallet is not the
// contract admin, before anything is signed.
func (s *AdminService) requireAdmin(ctx context.Context) error {
	admin, err := s.reader.Admin(ctx)
	if err != nil {
		return fmt.Errorf("admin_service: read admin: %w", err)
	}
	if admin != s.writer.From() {
		return fmt.Errorf("admin_service: wallet %s is not admin %s: %w",
			s.writer.From().Hex(), admin.Hex(), domain.ErrUnauthorized)
	}
	return nil
}

// run drives one write through a fresh mutation handle and returns the tx
// hash once mined.
func (s *AdminService) run(ctx context.Context, op string, submit func(ctx context.Context) (*types.Transaction, error), invalidate func(context.Context)) (common.Hash, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return common.Hash{}, err
	}

	var tx *types.Transaction
	m := query.NewMutation(
		func(ctx context.Context) (common.Hash, error) {
			var err error
			tx, err = submit(ctx)
			if err != nil {
				return common.Hash{}, err
			}
			return tx.Hash(), nil
		},
		func(ctx context.Context, _ common.Hash) error {
			_, err := s.writer.WaitMined(ctx, tx)
			return err
		},
	)
	if invalidate != nil {
		m.OnSuccess(invalidate)
	}

	if err := m.Execute(ctx); err != nil {
		s.logger.WarnContext(ctx, "admin operation failed",
			slog.String("op", op),
			slog.String("state", string(m.State())),
			slog.String("error", err.Error()),
		)
		return m.TxHash(), fmt.Errorf("admin_service: %s: %w", op, err)
	}

	s.logger.InfoContext(ctx, "admin operation confirmed",
		slog.String("op", op),
		slog.String("tx", m.TxHash().Hex()),
	)
	return m.TxHash(), nil
}

func (s *AdminService) invalidateMarket(id uint64) func(context.Context) {
	return func(ctx context.Context) {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.logger.Warn("cache invalidate failed", "market_id", id, "error", err)
		}
		if err := s.cache.InvalidatePages(ctx); err != nil {
			s.logger.Warn("page cache invalidate failed", "error", err)
		}
	}
}

func (s *AdminService) invalidatePages(ctx context.Context) {
	if err := s.cache.InvalidatePages(ctx); err != nil {
		s.logger.Warn("page cache invalidate failed", "error", err)
	}
}

// CreateMarket creates a new market and returns the tx hash once mined.
func (s *AdminService) CreateMarket(ctx context.Context, question, imageURL, category string, duration time.Duration) (common.Hash, error) {
	return s.run(ctx, "create_market",
		func(ctx context.Context) (*types.Transaction, error) {
			return s.writer.CreateMarket(ctx, question, imageURL, category, duration)
		},
		s.invalidatePages,
	)
}

// ResolveMarket resolves a market to the given outcome.
func (s *AdminService) ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (common.Hash, error) {
	return s.run(ctx, "resolve_market",
		func(ctx context.Context) (*types.Transaction, error) {
			return s.writer.ResolveMarket(ctx, marketID, outcome)
		},
		s.invalidateMarket(marketID),
	)
}

// CancelMarket cancels a market, enabling refunds.
func (s *AdminService) CancelMarket(ctx context.Context, marketID uint64) (common.Hash, error) {
	hash, err := s.run(ctx, "cancel_market",
		func(ctx context.Context) (*types.Transaction, error) {
			return s.writer.CancelMarket(ctx, marketID)
		},
		s.invalidateMarket(marketID),
	)
	if err == nil {
		s.notify(ctx, "market_cancelled", "Market cancelled",
			fmt.Sprintf("Market #%d cancelled, refunds open (tx %s)", marketID, hash.Hex()))
	}
	return hash, err
}

// Pause halts new bets platform-wide.
func (s *AdminService) Pause(ctx context.Context) (common.Hash, error) {
	hash, err := s.run(ctx, "pause",
		func(ctx context.Context) (*types.Transaction, error) {
			return s.writer.Pause(ctx)
		},
		nil,
	)
	if err == nil {
		s.notify(ctx, "platform_paused", "Platform paused",
			fmt.Sprintf("Betting paused (tx %s)", hash.Hex()))
	}
	return hash, err
}

// Unpause lifts a platform-wide pause.
func (s *AdminService) Unpause(ctx context.Context) (common.Hash, error) {
	hash, err := s.run(ctx, "unpause",
		func(ctx context.Context) (*types.Transaction, error) {
			return s.writer.Unpause(ctx)
		},
		nil,
	)
	if err == nil {
		s.notify(ctx, "platform_unpaused", "Platform unpaused",
			fmt.Sprintf("Betting resumed (tx %s)", hash.Hex()))
	}
	return hash, err
}

// WithdrawFees transfers accumulated platform fees to the admin wallet.
func (s *AdminService) WithdrawFees(ctx context.Context) (common.Hash, error) {
	return s.run(ctx, "withdraw_fees",
		func(ctx context.Context) (*types.Transaction, error) {
			return s.writer.WithdrawFees(ctx)
		},
		nil,
	)
}
