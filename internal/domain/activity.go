package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ActivityType identifies which contract event produced an activity item.
type ActivityType string

const (
	ActivityMarketCreated   ActivityType = "market_created"
	ActivityBetPlaced       ActivityType = "bet_placed"
	ActivityMarketResolved  ActivityType = "market_resolved"
	ActivityWinningsClaimed ActivityType = "winnings_claimed"
	ActivityRefundClaimed   ActivityType = "refund_claimed"
	ActivityPointsEarned    ActivityType = "points_earned"
)

// Activity is one decoded contract event, indexed for the live-activity feed
// and leaderboard aggregation. (TxHash, LogIndex) uniquely identifies an
// activity; re-indexing the same log must not create a duplicate.
type Activity struct {
	ID          string         `json:"id"`
	Type        ActivityType   `json:"type"`
	MarketID    uint64         `json:"marketId"`
	User        common.Address `json:"user"`
	Amount      *big.Int       `json:"amount,omitempty"`
	IsYes       *bool          `json:"isYes,omitempty"`
	Outcome     *bool          `json:"outcome,omitempty"`
	Points      *big.Int       `json:"points,omitempty"`
	TxHash      common.Hash    `json:"txHash"`
	LogIndex    uint           `json:"logIndex"`
	BlockNumber uint64         `json:"blockNumber"`
	Timestamp   time.Time      `json:"timestamp"`
}

// StreamMessage is one entry read back from a signal-bus stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}
