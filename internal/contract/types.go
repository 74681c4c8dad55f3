package contract

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// rawMarket matches the Market tuple layout returned by getMarket and
// getMarkets. Field names follow the ABI component names so the abi package
// can map them.
type rawMarket struct {
	Id           *big.Int
	Question     string
	ImageUrl     string
	Category     string
	EndTime      *big.Int
	TotalYesBets *big.Int
	TotalNoBets  *big.Int
	YesCount     *big.Int
	NoCount      *big.Int
	Resolved     bool
	Outcome      bool
	Cancelled    bool
	Creator      common.Address
	CreatedAt    *big.Int
}

// rawBet matches the Bet tuple layout returned by getUserBet.
type rawBet struct {
	Amount    *big.Int
	IsYes     bool
	Claimed   bool
	Timestamp *big.Int
}

// rawStats matches the UserStats tuple layout returned by getUserStats.
type rawStats struct {
	TotalPoints   *big.Int
	TotalBets     *big.Int
	CorrectBets   *big.Int
	TotalWinnings *big.Int
}

func (r rawMarket) toDomain() domain.Market {
	return domain.Market{
		ID:           r.Id.Uint64(),
		Question:     r.Question,
		ImageURL:     r.ImageUrl,
		Category:     r.Category,
		EndTime:      time.Unix(r.EndTime.Int64(), 0).UTC(),
		TotalYesBets: r.TotalYesBets,
		TotalNoBets:  r.TotalNoBets,
		YesCount:     r.YesCount.Uint64(),
		NoCount:      r.NoCount.Uint64(),
		Resolved:     r.Resolved,
		Outcome:      r.Outcome,
		Cancelled:    r.Cancelled,
		Creator:      r.Creator,
		CreatedAt:    time.Unix(r.CreatedAt.Int64(), 0).UTC(),
	}
}

func (r rawBet) toDomain() domain.Bet {
	return domain.Bet{
		Amount:    r.Amount,
		IsYes:     r.IsYes,
		Claimed:   r.Claimed,
		Timestamp: time.Unix(r.Timestamp.Int64(), 0).UTC(),
	}
}

func (r rawStats) toDomain() domain.UserStats {
	return domain.UserStats{
		TotalPoints:   r.TotalPoints,
		TotalBets:     r.TotalBets.Uint64(),
		CorrectBets:   r.CorrectBets.Uint64(),
		TotalWinnings: r.TotalWinnings,
	}
}
