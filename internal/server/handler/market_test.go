package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

type fakeMarketService struct {
	market domain.MarketWithOdds
	err    error
}

func (f *fakeMarketService) GetMarket(context.Context, uint64) (domain.MarketWithOdds, error) {
	return f.market, f.err
}

func (f *fakeMarketService) ListMarkets(context.Context, domain.ListOpts, domain.MarketStatus, string) ([]domain.MarketWithOdds, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.MarketWithOdds{f.market}, nil
}

func (f *fakeMarketService) Odds(context.Context, uint64) (int, int, error) {
	return f.market.YesPercent, f.market.NoPercent, f.err
}

func (f *fakeMarketService) PotentialReturn(_ context.Context, _ uint64, stake *big.Int, _ bool) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return new(big.Int).Mul(stake, big.NewInt(2)), nil
}

func marketMux(svc MarketService) *http.ServeMux {
	h := NewMarketHandler(svc, testLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/markets", h.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", h.GetMarket)
	mux.HandleFunc("GET /api/markets/{id}/odds", h.GetOdds)
	mux.HandleFunc("GET /api/markets/{id}/return", h.GetPotentialReturn)
	return mux
}

func testMarket() domain.MarketWithOdds {
	return domain.MarketWithOdds{
		Market: domain.Market{
			ID:           7,
			Question:     "Will ETH close above 5k this year?",
			Category:     "crypto",
			EndTime:      time.Now().Add(24 * time.Hour),
			TotalYesBets: big.NewInt(3e18),
			TotalNoBets:  big.NewInt(1e18),
		},
		YesPercent: 75,
		NoPercent:  25,
		TotalPool:  big.NewInt(4e18),
		Status:     domain.StatusLive,
	}
}

func TestGetMarket(t *testing.T) {
	mux := marketMux(&fakeMarketService{market: testMarket()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got domain.MarketWithOdds
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 7 || got.YesPercent != 75 {
		t.Errorf("got id=%d yes=%d", got.ID, got.YesPercent)
	}
}

func TestGetMarketNotFound(t *testing.T) {
	mux := marketMux(&fakeMarketService{err: domain.ErrNotFound})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/99", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetMarketBadID(t *testing.T) {
	mux := marketMux(&fakeMarketService{market: testMarket()})

	for _, raw := range []string{"0", "abc", "-1"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/"+raw, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("id %q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestListMarketsRejectsUnknownStatus(t *testing.T) {
	mux := marketMux(&fakeMarketService{market: testMarket()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets?status=bogus", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetPotentialReturn(t *testing.T) {
	mux := marketMux(&fakeMarketService{market: testMarket()})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/markets/7/return?amount=1000000000000000000&side=yes", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["payout"] != "2000000000000000000" {
		t.Errorf("payout = %v", got["payout"])
	}
}

func TestGetPotentialReturnBadParams(t *testing.T) {
	mux := marketMux(&fakeMarketService{market: testMarket()})

	cases := []struct {
		name string
		url  string
	}{
		{"missing amount", "/api/markets/7/return?side=yes"},
		{"zero amount", "/api/markets/7/return?amount=0&side=yes"},
		{"negative amount", "/api/markets/7/return?amount=-5&side=no"},
		{"bad side", "/api/markets/7/return?amount=100&side=maybe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.url, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
