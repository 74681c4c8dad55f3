package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/derive"
	"github.com/Akanimoh12/iPredict/internal/domain"
)

// UserReader is the slice of contract reads the user service needs.
// *contract.Caller satisfies it.
type UserReader interface {
	GetMarket(ctx context.Context, id uint64) (domain.Market, error)
	GetUserBet(ctx context.Context, id uint64, user common.Address) (domain.Bet, error)
	GetUserStats(ctx context.Context, user common.Address) (domain.UserStats, error)
	GetUserMarkets(ctx context.Context, user common.Address) ([]uint64, error)
	GetClaimableMarkets(ctx context.Context, user common.Address) ([]uint64, error)
	CalculateWinnings(ctx context.Context, id uint64, user common.Address) (*big.Int, error)
}

// UserProfile bundles the contract-side stats with the derived win rate.
type UserProfile struct {
	Address common.Address   `json:"address"`
	Stats   domain.UserStats `json:"stats"`
	WinRate int              `json:"winRate"`
}

// Claimable is one market where the user has unclaimed winnings or a refund.
type Claimable struct {
	Market domain.MarketWithOdds `json:"market"`
	Amount *big.Int              `json:"amount"`
}

// UserService answers account-level questions: stats, positions, and what
// can be claimed.
type UserService struct {
	reader UserReader
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(reader UserReader, logger *slog.Logger) *UserService {
	return &UserService{
		reader: reader,
		logger: logger.With("component", "user_service"),
		now:    time.Now,
	}
}

// Profile returns a user's cumulative stats with the win rate attached.
func (s *UserService) Profile(ctx context.Context, user common.Address) (UserProfile, error) {
	stats, err := s.reader.GetUserStats(ctx, user)
	if err != nil {
		return UserProfile{}, fmt.Errorf("user_service: stats %s: %w", user.Hex(), err)
	}
	return UserProfile{
		Address: user,
		Stats:   stats,
		WinRate: stats.WinRate(),
	}, nil
}

// Bet returns the user's position on one market. A zero-amount bet means the
// user never participated; callers distinguish via Bet.HasBet.
func (s *UserService) Bet(ctx context.Context, marketID uint64, user common.Address) (domain.Bet, error) {
	bet, err := s.reader.GetUserBet(ctx, marketID, user)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("user_service: bet market %d user %s: %w", marketID, user.Hex(), err)
	}
	return bet, nil
}

// Markets returns every market the user has bet on, with odds attached.
func (s *UserService) Markets(ctx context.Context, user common.Address) ([]domain.MarketWithOdds, error) {
	ids, err := s.reader.GetUserMarkets(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("user_service: markets %s: %w", user.Hex(), err)
	}

	now := s.now()
	out := make([]domain.MarketWithOdds, 0, len(ids))
	for _, id := range ids {
		m, err := s.reader.GetMarket(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("user_service: market %d: %w", id, err)
		}
		out = append(out, derive.WithOdds(m, now))
	}
	return out, nil
}

// Claimables returns the markets where the user can claim winnings or a
// refund, with the estimated amount for each.
func (s *UserService) Claimables(ctx context.Context, user common.Address) ([]Claimable, error) {
	ids, err := s.reader.GetClaimableMarkets(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("user_service: claimables %s: %w", user.Hex(), err)
	}

	now := s.now()
	out := make([]Claimable, 0, len(ids))
	for _, id := range ids {
		m, err := s.reader.GetMarket(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("user_service: market %d: %w", id, err)
		}

		amount, err := s.reader.CalculateWinnings(ctx, id, user)
		if err != nil {
			return nil, fmt.Errorf("user_service: winnings market %d: %w", id, err)
		}
		// Cancelled markets refund the stake instead of paying winnings.
		if m.Cancelled {
			bet, err := s.reader.GetUserBet(ctx, id, user)
			if err != nil {
				return nil, fmt.Errorf("user_service: bet market %d: %w", id, err)
			}
			amount = bet.Amount
		}

		out = append(out, Claimable{
			Market: derive.WithOdds(m, now),
			Amount: amount,
		})
	}
	return out, nil
}
