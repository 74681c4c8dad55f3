package derive

import (
	"math/big"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// endingSoonWindow is the remaining-time threshold below which a live market
// is flagged as ending soon. Purely presentational.
const endingSoonWindow = time.Hour

// Status classifies a market snapshot against wall-clock time. Cancellation
// dominates every other field; resolution comes next; otherwise the end time
// decides between ended, ending-soon, and live.
func Status(m domain.Market, now time.Time) domain.MarketStatus {
	if m.Cancelled {
		return domain.StatusCancelled
	}
	if m.Resolved {
		if m.Outcome {
			return domain.StatusResolvedYes
		}
		return domain.StatusResolvedNo
	}
	remaining := m.EndTime.Sub(now)
	if remaining <= 0 {
		return domain.StatusEnded
	}
	if remaining < endingSoonWindow {
		return domain.StatusEndingSoon
	}
	return domain.StatusLive
}

// Remaining decomposes the time left until a deadline.
type Remaining struct {
	Days      int   `json:"days"`
	Hours     int   `json:"hours"`
	Minutes   int   `json:"minutes"`
	Seconds   int   `json:"seconds"`
	Total     int64 `json:"totalSeconds"`
	IsExpired bool  `json:"isExpired"`
}

// TimeRemaining computes the countdown to endTime. A deadline at or before
// now is expired with all fields zero.
func TimeRemaining(endTime, now time.Time) Remaining {
	total := endTime.Unix() - now.Unix()
	if total <= 0 {
		return Remaining{IsExpired: true}
	}
	return Remaining{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
		Total:   total,
	}
}

// WithOdds attaches derived odds, pool total, and status to a market.
func WithOdds(m domain.Market, now time.Time) domain.MarketWithOdds {
	yes, no := Odds(m.TotalYesBets, m.TotalNoBets)
	return domain.MarketWithOdds{
		Market:     m,
		YesPercent: yes,
		NoPercent:  no,
		TotalPool:  new(big.Int).Add(m.TotalYesBets, m.TotalNoBets),
		Status:     Status(m, now),
	}
}
