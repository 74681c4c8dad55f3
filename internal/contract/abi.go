// Package contract provides the typed Go binding for the iPredict
// prediction-market contract: read calls, signed write transactions, and
// event decoding. The contract is the single source of truth for market
// state; everything here is plumbing around a fixed address and ABI.
package contract

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract-level constants mirrored from the deployed iPredict contract.
const (
	// MaxFeeBps is the hard cap on the platform fee (10%).
	MaxFeeBps = 1000
	// DefaultFeeBps is the fee the contract ships with (2%).
	DefaultFeeBps = 200
	// PointsMultiplier scales winnings into leaderboard points.
	PointsMultiplier = 10
	// MaxDuration is the longest allowed market lifetime in seconds.
	MaxDuration = 365 * 24 * 60 * 60
)

// MinBet is the minimum stake accepted by placeBet (0.01 ether).
var MinBet = big.NewInt(10_000_000_000_000_000)

const marketComponents = `[
	{"name":"id","type":"uint256"},
	{"name":"question","type":"string"},
	{"name":"imageUrl","type":"string"},
	{"name":"category","type":"string"},
	{"name":"endTime","type":"uint256"},
	{"name":"totalYesBets","type":"uint256"},
	{"name":"totalNoBets","type":"uint256"},
	{"name":"yesCount","type":"uint256"},
	{"name":"noCount","type":"uint256"},
	{"name":"resolved","type":"bool"},
	{"name":"outcome","type":"bool"},
	{"name":"cancelled","type":"bool"},
	{"name":"creator","type":"address"},
	{"name":"createdAt","type":"uint256"}
]`

// rawABI is the JSON ABI of the deployed iPredict contract.
var rawABI = `[
	{"type":"function","name":"admin","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"marketCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"platformFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"accumulatedFees","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getMarket","stateMutability":"view","inputs":[{"name":"marketId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":` + marketComponents + `}]},
	{"type":"function","name":"getMarkets","stateMutability":"view","inputs":[{"name":"offset","type":"uint256"},{"name":"limit","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":` + marketComponents + `}]},
	{"type":"function","name":"getMarketOdds","stateMutability":"view","inputs":[{"name":"marketId","type":"uint256"}],"outputs":[{"name":"yesPercent","type":"uint256"},{"name":"noPercent","type":"uint256"}]},
	{"type":"function","name":"getUserBet","stateMutability":"view","inputs":[{"name":"marketId","type":"uint256"},{"name":"user","type":"address"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"amount","type":"uint256"},{"name":"isYes","type":"bool"},{"name":"claimed","type":"bool"},{"name":"timestamp","type":"uint256"}]}]},
	{"type":"function","name":"getUserStats","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"totalPoints","type":"uint256"},{"name":"totalBets","type":"uint256"},{"name":"correctBets","type":"uint256"},{"name":"totalWinnings","type":"uint256"}]}]},
	{"type":"function","name":"getUserMarkets","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"getClaimableMarkets","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"calculateWinnings","stateMutability":"view","inputs":[{"name":"marketId","type":"uint256"},{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"placeBet","stateMutability":"payable","inputs":[{"name":"marketId","type":"uint256"},{"name":"isYes","type":"bool"}],"outputs":[]},
	{"type":"function","name":"claimWinnings","stateMutability":"nonpayable","inputs":[{"name":"marketId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"claimRefund","stateMutability":"nonpayable","inputs":[{"name":"marketId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"batchClaim","stateMutability":"nonpayable","inputs":[{"name":"marketIds","type":"uint256[]"}],"outputs":[]},
	{"type":"function","name":"createMarket","stateMutability":"nonpayable","inputs":[{"name":"question","type":"string"},{"name":"imageUrl","type":"string"},{"name":"category","type":"string"},{"name":"duration","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"resolveMarket","stateMutability":"nonpayable","inputs":[{"name":"marketId","type":"uint256"},{"name":"outcome","type":"bool"}],"outputs":[]},
	{"type":"function","name":"cancelMarket","stateMutability":"nonpayable","inputs":[{"name":"marketId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"pause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"unpause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"withdrawFees","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"event","name":"MarketCreated","inputs":[{"name":"marketId","type":"uint256","indexed":true},{"name":"question","type":"string","indexed":false},{"name":"category","type":"string","indexed":false},{"name":"endTime","type":"uint256","indexed":false},{"name":"creator","type":"address","indexed":true}],"anonymous":false},
	{"type":"event","name":"BetPlaced","inputs":[{"name":"marketId","type":"uint256","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"isYes","type":"bool","indexed":false},{"name":"amount","type":"uint256","indexed":false},{"name":"newTotal","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"MarketResolved","inputs":[{"name":"marketId","type":"uint256","indexed":true},{"name":"outcome","type":"bool","indexed":false},{"name":"totalPool","type":"uint256","indexed":false},{"name":"platformFee","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"WinningsClaimed","inputs":[{"name":"marketId","type":"uint256","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"points","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"RefundClaimed","inputs":[{"name":"marketId","type":"uint256","indexed":true},{"name":"user","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}],"anonymous":false},
	{"type":"event","name":"PointsEarned","inputs":[{"name":"user","type":"address","indexed":true},{"name":"points","type":"uint256","indexed":false},{"name":"totalPoints","type":"uint256","indexed":false}],"anonymous":false}
]`

// parsedABI is the parsed contract ABI, shared by the caller, transactor,
// and event decoder.
var parsedABI = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		panic("contract: parse ABI: " + err.Error())
	}
	return a
}()

// ABI returns the parsed contract ABI.
func ABI() abi.ABI {
	return parsedABI
}
