// Package service contains the application services that sit between the
// HTTP/WS layer and the contract, cache, and store implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/derive"
	"github.com/Akanimoh12/iPredict/internal/domain"
)

// MarketReader is the slice of contract reads the market service needs.
// *contract.Caller satisfies it.
type MarketReader interface {
	MarketCount(ctx context.Context) (uint64, error)
	GetMarket(ctx context.Context, id uint64) (domain.Market, error)
	GetMarkets(ctx context.Context, offset, limit int) ([]domain.Market, error)
	Admin(ctx context.Context) (common.Address, error)
	PlatformFee(ctx context.Context) (int64, error)
	Paused(ctx context.Context) (bool, error)
	AccumulatedFees(ctx context.Context) (*big.Int, error)
}

// MarketService serves market reads cache-first: Redis holds recent contract
// snapshots, the contract is the source of truth on a miss, and every read
// is returned with derived odds and status attached.
type MarketService struct {
	reader MarketReader
	cache  domain.MarketCache
	logger *slog.Logger
	now    func() time.Time
}

// NewMarketService creates a MarketService.
func NewMarketService(reader MarketReader, cache domain.MarketCache, logger *slog.Logger) *MarketService {
	return &MarketService{
		reader: reader,
		cache:  cache,
		logger: logger.With("component", "market_service"),
		now:    time.Now,
	}
}

// GetMarket returns one market with odds and status attached, checking the
// cache first and back-filling it on a miss.
func (s *MarketService) GetMarket(ctx context.Context, id uint64) (domain.MarketWithOdds, error) {
	m, err := s.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "cache read failed",
				slog.Uint64("market_id", id),
				slog.String("error", err.Error()),
			)
		}

		m, err = s.reader.GetMarket(ctx, id)
		if err != nil {
			return domain.MarketWithOdds{}, fmt.Errorf("market_service: get market %d: %w", id, err)
		}

		// Back-fill; log but do not fail on cache write errors.
		if cacheErr := s.cache.Set(ctx, m); cacheErr != nil {
			s.logger.WarnContext(ctx, "cache set failed",
				slog.Uint64("market_id", id),
				slog.String("error", cacheErr.Error()),
			)
		}
	}

	return derive.WithOdds(m, s.now()), nil
}

// ListMarkets returns one pagination window of markets with odds attached,
// optionally filtered by status and category. The unfiltered page is cached;
// filters are applied after the cache so every filter combination shares one
// cached read.
func (s *MarketService) ListMarkets(ctx context.Context, opts domain.ListOpts, status domain.MarketStatus, category string) ([]domain.MarketWithOdds, error) {
	markets, err := s.cache.GetPage(ctx, opts.Offset, opts.Limit)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "page cache read failed",
				slog.Int("offset", opts.Offset),
				slog.Int("limit", opts.Limit),
				slog.String("error", err.Error()),
			)
		}

		markets, err = s.reader.GetMarkets(ctx, opts.Offset, opts.Limit)
		if err != nil {
			return nil, fmt.Errorf("market_service: list markets: %w", err)
		}

		if cacheErr := s.cache.SetPage(ctx, opts.Offset, opts.Limit, markets); cacheErr != nil {
			s.logger.WarnContext(ctx, "page cache set failed",
				slog.String("error", cacheErr.Error()),
			)
		}
	}

	now := s.now()
	out := make([]domain.MarketWithOdds, 0, len(markets))
	for _, m := range markets {
		enriched := derive.WithOdds(m, now)
		if status != "" && enriched.Status != status {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		out = append(out, enriched)
	}
	return out, nil
}

// Odds returns the current yes/no percentages for one market.
func (s *MarketService) Odds(ctx context.Context, id uint64) (yesPercent, noPercent int, err error) {
	m, err := s.GetMarket(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	return m.YesPercent, m.NoPercent, nil
}

// PotentialReturn estimates the payout for a hypothetical stake on one side
// of a market at the current pool sizes and platform fee.
func (s *MarketService) PotentialReturn(ctx context.Context, id uint64, stake *big.Int, isYes bool) (*big.Int, error) {
	if stake == nil || stake.Sign() <= 0 {
		return nil, fmt.Errorf("market_service: potential return: %w", domain.ErrInvalidBet)
	}

	m, err := s.GetMarket(ctx, id)
	if err != nil {
		return nil, err
	}
	feeBps, err := s.reader.PlatformFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("market_service: platform fee: %w", err)
	}
	return derive.PotentialReturn(stake, isYes, m.TotalYesBets, m.TotalNoBets, feeBps), nil
}

// Platform returns the global contract state shown on the dashboard.
func (s *MarketService) Platform(ctx context.Context) (domain.PlatformState, error) {
	var state domain.PlatformState
	var err error

	if state.Admin, err = s.reader.Admin(ctx); err != nil {
		return domain.PlatformState{}, fmt.Errorf("market_service: platform admin: %w", err)
	}
	if state.MarketCount, err = s.reader.MarketCount(ctx); err != nil {
		return domain.PlatformState{}, fmt.Errorf("market_service: market count: %w", err)
	}
	if state.PlatformFeeBps, err = s.reader.PlatformFee(ctx); err != nil {
		return domain.PlatformState{}, fmt.Errorf("market_service: platform fee: %w", err)
	}
	if state.Paused, err = s.reader.Paused(ctx); err != nil {
		return domain.PlatformState{}, fmt.Errorf("market_service: paused: %w", err)
	}
	if state.AccumulatedFees, err = s.reader.AccumulatedFees(ctx); err != nil {
		return domain.PlatformState{}, fmt.Errorf("market_service: accumulated fees: %w", err)
	}
	return state, nil
}
