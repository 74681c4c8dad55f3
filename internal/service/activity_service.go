package service

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// ActivityService serves the indexed activity feed.
type ActivityService struct {
	store domain.ActivityStore
}

// NewActivityService creates an ActivityService.
func NewActivityService(store domain.ActivityStore) *ActivityService {
	return &ActivityService{store: store}
}

// Recent returns the newest activity across all markets.
func (s *ActivityService) Recent(ctx context.Context, opts domain.ListOpts) ([]domain.Activity, error) {
	items, err := s.store.ListRecent(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("activity_service: recent: %w", err)
	}
	return items, nil
}

// ByMarket returns the newest activity for one market.
func (s *ActivityService) ByMarket(ctx context.Context, marketID uint64, opts domain.ListOpts) ([]domain.Activity, error) {
	items, err := s.store.ListByMarket(ctx, marketID, opts)
	if err != nil {
		return nil, fmt.Errorf("activity_service: by market %d: %w", marketID, err)
	}
	return items, nil
}

// ByUser returns the newest activity involving one address.
func (s *ActivityService) ByUser(ctx context.Context, user common.Address, opts domain.ListOpts) ([]domain.Activity, error) {
	items, err := s.store.ListByUser(ctx, user, opts)
	if err != nil {
		return nil, fmt.Errorf("activity_service: by user %s: %w", user.Hex(), err)
	}
	return items, nil
}
