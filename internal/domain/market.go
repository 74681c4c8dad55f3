// Package domain defines the core types shared across the iPredict backend:
// on-chain entities mirrored from the prediction-market contract, derived view
// types, and the store/cache interfaces implemented by the infrastructure
// packages.
package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// MarketStatus is the presentation-level classification of a market snapshot.
type MarketStatus string

const (
	StatusLive        MarketStatus = "live"
	StatusEndingSoon  MarketStatus = "ending-soon"
	StatusEnded       MarketStatus = "ended"
	StatusResolvedYes MarketStatus = "resolved-yes"
	StatusResolvedNo  MarketStatus = "resolved-no"
	StatusCancelled   MarketStatus = "cancelled"
)

// Market mirrors the Market struct stored by the iPredict contract. All
// mutation happens on-chain; this type is a read-only snapshot.
type Market struct {
	ID           uint64         `json:"id"`
	Question     string         `json:"question"`
	ImageURL     string         `json:"imageUrl"`
	Category     string         `json:"category"`
	EndTime      time.Time      `json:"endTime"`
	TotalYesBets *big.Int       `json:"totalYesBets"`
	TotalNoBets  *big.Int       `json:"totalNoBets"`
	YesCount     uint64         `json:"yesCount"`
	NoCount      uint64         `json:"noCount"`
	Resolved     bool           `json:"resolved"`
	Outcome      bool           `json:"outcome"`
	Cancelled    bool           `json:"cancelled"`
	Creator      common.Address `json:"creator"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// MarketWithOdds is a Market enriched with derived percentages and the total
// pool. It is recomputed on every read and never persisted.
type MarketWithOdds struct {
	Market
	YesPercent int          `json:"yesPercent"`
	NoPercent  int          `json:"noPercent"`
	TotalPool  *big.Int     `json:"totalPool"`
	Status     MarketStatus `json:"status"`
}

// Bet mirrors the Bet struct stored by the contract. At most one Bet exists
// per (market, user) pair; a zero Amount means the user has not bet.
type Bet struct {
	Amount    *big.Int  `json:"amount"`
	IsYes     bool      `json:"isYes"`
	Claimed   bool      `json:"claimed"`
	Timestamp time.Time `json:"timestamp"`
}

// HasBet reports whether the bet represents an actual position.
func (b Bet) HasBet() bool {
	return b.Amount != nil && b.Amount.Sign() > 0
}

// UserStats mirrors the cumulative per-user statistics tracked by the
// contract. All fields are monotonically non-decreasing.
type UserStats struct {
	TotalPoints   *big.Int `json:"totalPoints"`
	TotalBets     uint64   `json:"totalBets"`
	CorrectBets   uint64   `json:"correctBets"`
	TotalWinnings *big.Int `json:"totalWinnings"`
}

// WinRate returns the percentage of correct bets, truncated toward zero.
// Zero total bets yields zero.
func (s UserStats) WinRate() int {
	if s.TotalBets == 0 {
		return 0
	}
	return int(s.CorrectBets * 100 / s.TotalBets)
}

// LeaderboardEntry is one ranked row of the points leaderboard.
type LeaderboardEntry struct {
	Rank    int            `json:"rank"`
	Address common.Address `json:"address"`
	Stats   UserStats      `json:"stats"`
}

// PlatformState bundles the global contract state shown on the dashboard.
type PlatformState struct {
	Admin           common.Address `json:"admin"`
	MarketCount     uint64         `json:"marketCount"`
	PlatformFeeBps  int64          `json:"platformFeeBps"`
	Paused          bool           `json:"paused"`
	AccumulatedFees *big.Int       `json:"accumulatedFees"`
}

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}
