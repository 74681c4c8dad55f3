package contract

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// Filterer reads and decodes contract event logs into activity items.
type Filterer struct {
	client  *ethclient.Client
	address common.Address
}

// NewFilterer creates a Filterer for the contract at address.
func NewFilterer(client *ethclient.Client, address common.Address) *Filterer {
	return &Filterer{client: client, address: address}
}

// FilterActivity fetches all contract logs in [fromBlock, toBlock] and
// decodes the known events. Unknown topics are skipped. Each distinct block
// header is fetched once to timestamp its activity.
func (f *Filterer) FilterActivity(ctx context.Context, fromBlock, toBlock uint64) ([]domain.Activity, error) {
	logs, err := f.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{f.address},
	})
	if err != nil {
		return nil, fmt.Errorf("contract: filter logs [%d,%d]: %w", fromBlock, toBlock, err)
	}

	blockTimes := make(map[uint64]time.Time)
	items := make([]domain.Activity, 0, len(logs))
	for _, lg := range logs {
		a, ok, err := f.decode(lg)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		ts, cached := blockTimes[lg.BlockNumber]
		if !cached {
			header, err := f.client.HeaderByNumber(ctx, new(big.Int).SetUint64(lg.BlockNumber))
			if err != nil {
				return nil, fmt.Errorf("contract: header %d: %w", lg.BlockNumber, err)
			}
			ts = time.Unix(int64(header.Time), 0).UTC()
			blockTimes[lg.BlockNumber] = ts
		}
		a.Timestamp = ts
		items = append(items, a)
	}
	return items, nil
}

// decode turns one raw log into an activity item. The boolean result is
// false for logs that are not iPredict events.
func (f *Filterer) decode(lg types.Log) (domain.Activity, bool, error) {
	if len(lg.Topics) == 0 {
		return domain.Activity{}, false, nil
	}

	a := domain.Activity{
		ID:          uuid.NewString(),
		TxHash:      lg.TxHash,
		LogIndex:    lg.Index,
		BlockNumber: lg.BlockNumber,
	}

	var name string
	for n, ev := range parsedABI.Events {
		if ev.ID == lg.Topics[0] {
			name = n
			break
		}
	}
	if name == "" {
		return domain.Activity{}, false, nil
	}

	// Indexed parameters arrive as topics after the event signature. A log
	// with fewer topics than the event declares is malformed; skip it rather
	// than index out of range.
	wantTopics := 1 + len(parsedABI.Events[name].Inputs) - len(parsedABI.Events[name].Inputs.NonIndexed())
	if len(lg.Topics) < wantTopics {
		return domain.Activity{}, false, nil
	}

	data, err := parsedABI.Events[name].Inputs.NonIndexed().Unpack(lg.Data)
	if err != nil {
		return domain.Activity{}, false, fmt.Errorf("contract: unpack %s: %w", name, err)
	}

	switch name {
	case "MarketCreated":
		// topics: marketId, creator; data: question, category, endTime
		a.Type = domain.ActivityMarketCreated
		a.MarketID = topicUint64(lg.Topics[1])
		a.User = common.BytesToAddress(lg.Topics[2].Bytes())

	case "BetPlaced":
		// topics: marketId, user; data: isYes, amount, newTotal
		a.Type = domain.ActivityBetPlaced
		a.MarketID = topicUint64(lg.Topics[1])
		a.User = common.BytesToAddress(lg.Topics[2].Bytes())
		isYes := data[0].(bool)
		a.IsYes = &isYes
		a.Amount = data[1].(*big.Int)

	case "MarketResolved":
		// topics: marketId; data: outcome, totalPool, platformFee
		a.Type = domain.ActivityMarketResolved
		a.MarketID = topicUint64(lg.Topics[1])
		outcome := data[0].(bool)
		a.Outcome = &outcome
		a.Amount = data[1].(*big.Int)

	case "WinningsClaimed":
		// topics: marketId, user; data: amount, points
		a.Type = domain.ActivityWinningsClaimed
		a.MarketID = topicUint64(lg.Topics[1])
		a.User = common.BytesToAddress(lg.Topics[2].Bytes())
		a.Amount = data[0].(*big.Int)
		a.Points = data[1].(*big.Int)

	case "RefundClaimed":
		// topics: marketId, user; data: amount
		a.Type = domain.ActivityRefundClaimed
		a.MarketID = topicUint64(lg.Topics[1])
		a.User = common.BytesToAddress(lg.Topics[2].Bytes())
		a.Amount = data[0].(*big.Int)

	case "PointsEarned":
		// topics: user; data: points, totalPoints
		a.Type = domain.ActivityPointsEarned
		a.User = common.BytesToAddress(lg.Topics[1].Bytes())
		a.Points = data[0].(*big.Int)

	default:
		return domain.Activity{}, false, nil
	}

	return a, true, nil
}

func topicUint64(t common.Hash) uint64 {
	return new(big.Int).SetBytes(t.Bytes()).Uint64()
}
