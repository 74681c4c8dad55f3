package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

type fakeReader struct {
	markets     map[uint64]domain.Market
	feeBps      int64
	admin       common.Address
	paused      bool
	fees        *big.Int
	marketCalls int
	listCalls   int
}

func (r *fakeReader) MarketCount(context.Context) (uint64, error) {
	return uint64(len(r.markets)), nil
}

func (r *fakeReader) GetMarket(_ context.Context, id uint64) (domain.Market, error) {
	r.marketCalls++
	m, ok := r.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func (r *fakeReader) GetMarkets(_ context.Context, offset, limit int) ([]domain.Market, error) {
	r.listCalls++
	var out []domain.Market
	for id := uint64(offset) + 1; len(out) < limit; id++ {
		m, ok := r.markets[id]
		if !ok {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeReader) Admin(context.Context) (common.Address, error) { return r.admin, nil }

func (r *fakeReader) PlatformFee(context.Context) (int64, error) { return r.feeBps, nil }

func (r *fakeReader) Paused(context.Context) (bool, error) { return r.paused, nil }

func (r *fakeReader) AccumulatedFees(context.Context) (*big.Int, error) { return r.fees, nil }

type fakeCache struct {
	markets map[uint64]domain.Market
	pages   map[string][]domain.Market
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		markets: make(map[uint64]domain.Market),
		pages:   make(map[string][]domain.Market),
	}
}

func (c *fakeCache) Set(_ context.Context, m domain.Market) error {
	c.markets[m.ID] = m
	return nil
}

func (c *fakeCache) Get(_ context.Context, id uint64) (domain.Market, error) {
	m, ok := c.markets[id]
	if !ok {
		return domain.Market{}, domain.ErrNotFound
	}
	return m, nil
}

func pageCacheKey(offset, limit int) string {
	return fmt.Sprintf("%d:%d", offset, limit)
}

func (c *fakeCache) SetPage(_ context.Context, offset, limit int, markets []domain.Market) error {
	c.pages[pageCacheKey(offset, limit)] = markets
	return nil
}

func (c *fakeCache) GetPage(_ context.Context, offset, limit int) ([]domain.Market, error) {
	page, ok := c.pages[pageCacheKey(offset, limit)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return page, nil
}

func (c *fakeCache) Invalidate(_ context.Context, id uint64) error {
	delete(c.markets, id)
	return nil
}

func (c *fakeCache) InvalidatePages(context.Context) error {
	c.pages = make(map[string][]domain.Market)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func liveMarket(id uint64, yes, no int64) domain.Market {
	return domain.Market{
		ID:           id,
		Question:     "Will it happen?",
		Category:     "crypto",
		EndTime:      time.Now().Add(48 * time.Hour),
		TotalYesBets: new(big.Int).Mul(big.NewInt(yes), big.NewInt(1e18)),
		TotalNoBets:  new(big.Int).Mul(big.NewInt(no), big.NewInt(1e18)),
		CreatedAt:    time.Now().Add(-time.Hour),
	}
}

func TestGetMarketCacheFirst(t *testing.T) {
	reader := &fakeReader{markets: map[uint64]domain.Market{1: liveMarket(1, 3, 1)}}
	cache := newFakeCache()
	svc := NewMarketService(reader, cache, testLogger())
	ctx := context.Background()

	// First read misses the cache and hits the contract.
	m, err := svc.GetMarket(ctx, 1)
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if reader.marketCalls != 1 {
		t.Errorf("contract calls = %d, want 1", reader.marketCalls)
	}
	if m.YesPercent != 75 || m.NoPercent != 25 {
		t.Errorf("odds = %d/%d, want 75/25", m.YesPercent, m.NoPercent)
	}
	if m.Status != domain.StatusLive {
		t.Errorf("status = %q", m.Status)
	}

	// Second read is served from the back-filled cache.
	if _, err := svc.GetMarket(ctx, 1); err != nil {
		t.Fatalf("GetMarket (cached): %v", err)
	}
	if reader.marketCalls != 1 {
		t.Errorf("contract calls after cached read = %d, want 1", reader.marketCalls)
	}
}

func TestGetMarketNotFound(t *testing.T) {
	svc := NewMarketService(&fakeReader{markets: map[uint64]domain.Market{}}, newFakeCache(), testLogger())

	_, err := svc.GetMarket(context.Background(), 404)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListMarketsFilters(t *testing.T) {
	resolved := liveMarket(2, 1, 1)
	resolved.Resolved = true
	resolved.Outcome = true
	other := liveMarket(3, 1, 2)
	other.Category = "sports"

	reader := &fakeReader{markets: map[uint64]domain.Market{
		1: liveMarket(1, 3, 1),
		2: resolved,
		3: other,
	}}
	cache := newFakeCache()
	svc := NewMarketService(reader, cache, testLogger())
	ctx := context.Background()
	opts := domain.ListOpts{Limit: 10}

	all, err := svc.ListMarkets(ctx, opts, "", "")
	if err != nil {
		t.Fatalf("ListMarkets: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered = %d markets", len(all))
	}

	live, err := svc.ListMarkets(ctx, opts, domain.StatusLive, "")
	if err != nil {
		t.Fatalf("ListMarkets live: %v", err)
	}
	if len(live) != 2 {
		t.Errorf("live = %d markets, want 2", len(live))
	}

	crypto, err := svc.ListMarkets(ctx, opts, "", "crypto")
	if err != nil {
		t.Fatalf("ListMarkets crypto: %v", err)
	}
	if len(crypto) != 2 {
		t.Errorf("crypto = %d markets, want 2", len(crypto))
	}

	// All three filtered reads share one cached page.
	if reader.listCalls != 1 {
		t.Errorf("contract list calls = %d, want 1", reader.listCalls)
	}
}

func TestPotentialReturn(t *testing.T) {
	reader := &fakeReader{
		markets: map[uint64]domain.Market{1: liveMarket(1, 1, 1)},
		feeBps:  200,
	}
	svc := NewMarketService(reader, newFakeCache(), testLogger())
	ctx := context.Background()

	stake := big.NewInt(1e18)
	got, err := svc.PotentialReturn(ctx, 1, stake, true)
	if err != nil {
		t.Fatalf("PotentialReturn: %v", err)
	}
	// gross = 1*(2+1)/(1+1) = 1.5 ETH, fee 2% = 0.03, net 1.47 ETH.
	want, _ := new(big.Int).SetString("1470000000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Errorf("PotentialReturn = %s, want %s", got, want)
	}

	if _, err := svc.PotentialReturn(ctx, 1, big.NewInt(0), true); !errors.Is(err, domain.ErrInvalidBet) {
		t.Errorf("zero stake err = %v, want ErrInvalidBet", err)
	}
}

func TestPlatform(t *testing.T) {
	admin := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	reader := &fakeReader{
		markets: map[uint64]domain.Market{1: liveMarket(1, 1, 1)},
		feeBps:  200,
		admin:   admin,
		paused:  true,
		fees:    big.NewInt(5e17),
	}
	svc := NewMarketService(reader, newFakeCache(), testLogger())

	state, err := svc.Platform(context.Background())
	if err != nil {
		t.Fatalf("Platform: %v", err)
	}
	if state.Admin != admin || !state.Paused || state.PlatformFeeBps != 200 {
		t.Errorf("state = %+v", state)
	}
	if state.MarketCount != 1 {
		t.Errorf("market count = %d", state.MarketCount)
	}
}
