package service

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// LeaderboardService serves the points leaderboard materialized by the
// indexer. Ranking is points descending with total winnings as tiebreak.
type LeaderboardService struct {
	stats domain.StatsStore
}

// NewLeaderboardService creates a LeaderboardService.
func NewLeaderboardService(stats domain.StatsStore) *LeaderboardService {
	return &LeaderboardService{stats: stats}
}

// List returns one page of ranked entries.
func (s *LeaderboardService) List(ctx context.Context, opts domain.ListOpts) ([]domain.LeaderboardEntry, error) {
	entries, err := s.stats.ListRanked(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("leaderboard_service: list: %w", err)
	}
	return entries, nil
}

// Rank returns one user's leaderboard entry including their overall rank.
func (s *LeaderboardService) Rank(ctx context.Context, user common.Address) (domain.LeaderboardEntry, error) {
	entry, err := s.stats.Rank(ctx, user)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("leaderboard_service: rank %s: %w", user.Hex(), err)
	}
	return entry, nil
}

// Count returns the number of ranked users.
func (s *LeaderboardService) Count(ctx context.Context) (int64, error) {
	n, err := s.stats.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("leaderboard_service: count: %w", err)
	}
	return n, nil
}
