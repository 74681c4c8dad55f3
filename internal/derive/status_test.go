package derive

import (
	"math/big"
	"testing"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mkt(endOffset time.Duration, resolved, outcome, cancelled bool) domain.Market {
	return domain.Market{
		ID:           1,
		EndTime:      testNow.Add(endOffset),
		TotalYesBets: big.NewInt(0),
		TotalNoBets:  big.NewInt(0),
		Resolved:     resolved,
		Outcome:      outcome,
		Cancelled:    cancelled,
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		market domain.Market
		want   domain.MarketStatus
	}{
		{"live when far from deadline", mkt(48*time.Hour, false, false, false), domain.StatusLive},
		{"ending soon under an hour", mkt(30*time.Minute, false, false, false), domain.StatusEndingSoon},
		{"exactly one hour is still live", mkt(time.Hour, false, false, false), domain.StatusLive},
		{"ended after deadline", mkt(-time.Minute, false, false, false), domain.StatusEnded},
		{"deadline exactly now is ended", mkt(0, false, false, false), domain.StatusEnded},
		{"resolved yes", mkt(-time.Hour, true, true, false), domain.StatusResolvedYes},
		{"resolved no", mkt(-time.Hour, true, false, false), domain.StatusResolvedNo},
		{"resolved before deadline", mkt(time.Hour, true, true, false), domain.StatusResolvedYes},
		{"cancelled dominates resolution", mkt(time.Hour, true, true, true), domain.StatusCancelled},
		{"cancelled dominates expiry", mkt(-time.Hour, false, false, true), domain.StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.market, testNow); got != tt.want {
				t.Errorf("Status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimeRemaining(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   Remaining
	}{
		{"past deadline", -time.Minute, Remaining{IsExpired: true}},
		{"exactly now", 0, Remaining{IsExpired: true}},
		{
			// 90061s = 1d 1h 1m 1s
			"decomposes into units",
			90061 * time.Second,
			Remaining{Days: 1, Hours: 1, Minutes: 1, Seconds: 1, Total: 90061},
		},
		{"seconds only", 59 * time.Second, Remaining{Seconds: 59, Total: 59}},
		{"whole days", 72 * time.Hour, Remaining{Days: 3, Total: 259200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeRemaining(testNow.Add(tt.offset), testNow)
			if got != tt.want {
				t.Errorf("TimeRemaining = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWithOdds(t *testing.T) {
	m := mkt(48*time.Hour, false, false, false)
	m.TotalYesBets = wei(3)
	m.TotalNoBets = wei(1)

	got := WithOdds(m, testNow)
	if got.YesPercent != 75 || got.NoPercent != 25 {
		t.Errorf("odds = %d/%d, want 75/25", got.YesPercent, got.NoPercent)
	}
	if got.TotalPool.Cmp(wei(4)) != 0 {
		t.Errorf("pool = %s, want %s", got.TotalPool, wei(4))
	}
	if got.Status != domain.StatusLive {
		t.Errorf("status = %q, want live", got.Status)
	}
}
