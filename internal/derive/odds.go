// Package derive holds the pure functions that turn raw contract tuples into
// UI-ready shapes: odds percentages, payout estimates, status classification,
// countdowns, and display formatting. Nothing here is authoritative — the
// contract owns settlement; these mirror its arithmetic for display only.
package derive

import "math/big"

var (
	hundred  = big.NewInt(100)
	bpsDenom = big.NewInt(10000)
)

// Odds computes the YES/NO percentage split of a pool. An empty pool reads as
// an even 50/50. Division truncates toward zero, matching EVM integer
// division; noPercent is derived as the complement so the pair always sums
// to 100.
func Odds(totalYes, totalNo *big.Int) (yesPercent, noPercent int) {
	total := new(big.Int).Add(totalYes, totalNo)
	if total.Sign() == 0 {
		return 50, 50
	}
	yes := new(big.Int).Mul(totalYes, hundred)
	yes.Quo(yes, total)
	yesPercent = int(yes.Int64())
	return yesPercent, 100 - yesPercent
}

// PotentialReturn estimates the net payout if the chosen side wins, for a
// candidate stake added to the current pools:
//
//	gross = stake * (pool + stake) / (winningSide + stake)
//	net   = gross - gross*feeBps/10000
//
// A zero winning pool (stake included) returns zero. This is a client-side
// estimate of the contract's settlement formula, not a guarantee.
func PotentialReturn(stake *big.Int, isYes bool, totalYes, totalNo *big.Int, feeBps int64) *big.Int {
	pool := new(big.Int).Add(totalYes, totalNo)
	pool.Add(pool, stake)

	winning := new(big.Int)
	if isYes {
		winning.Add(totalYes, stake)
	} else {
		winning.Add(totalNo, stake)
	}
	if winning.Sign() == 0 {
		return new(big.Int)
	}

	gross := new(big.Int).Mul(stake, pool)
	gross.Quo(gross, winning)

	fee := new(big.Int).Mul(gross, big.NewInt(feeBps))
	fee.Quo(fee, bpsDenom)

	return gross.Sub(gross, fee)
}
