package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// Caller performs read-only contract calls. Reads are side-effect free and
// need no signer; re-issuing a read is always safe.
type Caller struct {
	client  *ethclient.Client
	address common.Address
}

// NewCaller creates a Caller for the contract at address using the given RPC
// client.
func NewCaller(client *ethclient.Client, address common.Address) *Caller {
	return &Caller{client: client, address: address}
}

// Address returns the bound contract address.
func (c *Caller) Address() common.Address {
	return c.address
}

// Client returns the underlying RPC client, shared with the transactor and
// the event filterer.
func (c *Caller) Client() *ethclient.Client {
	return c.client
}

// call packs a method call, executes it against the latest block, and
// returns the unpacked outputs.
func (c *Caller) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("contract: pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{To: &c.address, Data: input}
	output, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("contract: call %s: %w", method, err)
	}

	out, err := parsedABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("contract: unpack %s: %w", method, err)
	}
	return out, nil
}

// Admin returns the privileged admin address.
func (c *Caller) Admin(ctx context.Context) (common.Address, error) {
	out, err := c.call(ctx, "admin")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// MarketCount returns the total number of markets ever created.
func (c *Caller) MarketCount(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "marketCount")
	if err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

// PlatformFee returns the current platform fee in basis points.
func (c *Caller) PlatformFee(ctx context.Context) (int64, error) {
	out, err := c.call(ctx, "platformFee")
	if err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Int64(), nil
}

// Paused reports whether betting is globally paused.
func (c *Caller) Paused(ctx context.Context) (bool, error) {
	out, err := c.call(ctx, "paused")
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// AccumulatedFees returns the fees collected and not yet withdrawn, in wei.
func (c *Caller) AccumulatedFees(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "accumulatedFees")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetMarket returns one market by id. A zero-id result from the contract
// (unknown market) is reported as domain.ErrNotFound.
func (c *Caller) GetMarket(ctx context.Context, id uint64) (domain.Market, error) {
	out, err := c.call(ctx, "getMarket", new(big.Int).SetUint64(id))
	if err != nil {
		return domain.Market{}, err
	}
	raw := *abi.ConvertType(out[0], new(rawMarket)).(*rawMarket)
	if raw.CreatedAt.Sign() == 0 {
		return domain.Market{}, fmt.Errorf("contract: market %d: %w", id, domain.ErrNotFound)
	}
	return raw.toDomain(), nil
}

// GetMarkets returns one page of markets.
func (c *Caller) GetMarkets(ctx context.Context, offset, limit int) ([]domain.Market, error) {
	out, err := c.call(ctx, "getMarkets",
		new(big.Int).SetInt64(int64(offset)),
		new(big.Int).SetInt64(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	raws := *abi.ConvertType(out[0], new([]rawMarket)).(*[]rawMarket)
	markets := make([]domain.Market, 0, len(raws))
	for _, r := range raws {
		markets = append(markets, r.toDomain())
	}
	return markets, nil
}

// GetMarketOdds returns the contract's own YES/NO percentage split.
func (c *Caller) GetMarketOdds(ctx context.Context, id uint64) (yesPercent, noPercent int, err error) {
	out, err := c.call(ctx, "getMarketOdds", new(big.Int).SetUint64(id))
	if err != nil {
		return 0, 0, err
	}
	yes := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	no := *abi.ConvertType(out[1], new(*big.Int)).(**big.Int)
	return int(yes.Int64()), int(no.Int64()), nil
}

// GetUserBet returns the user's bet on a market. The zero Bet (Amount == 0)
// means no bet was placed.
func (c *Caller) GetUserBet(ctx context.Context, id uint64, user common.Address) (domain.Bet, error) {
	out, err := c.call(ctx, "getUserBet", new(big.Int).SetUint64(id), user)
	if err != nil {
		return domain.Bet{}, err
	}
	raw := *abi.ConvertType(out[0], new(rawBet)).(*rawBet)
	return raw.toDomain(), nil
}

// GetUserStats returns the user's cumulative statistics.
func (c *Caller) GetUserStats(ctx context.Context, user common.Address) (domain.UserStats, error) {
	out, err := c.call(ctx, "getUserStats", user)
	if err != nil {
		return domain.UserStats{}, err
	}
	raw := *abi.ConvertType(out[0], new(rawStats)).(*rawStats)
	return raw.toDomain(), nil
}

// GetUserMarkets returns the ids of all markets the user has bet on.
func (c *Caller) GetUserMarkets(ctx context.Context, user common.Address) ([]uint64, error) {
	out, err := c.call(ctx, "getUserMarkets", user)
	if err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}

// GetClaimableMarkets returns the ids of markets where the user holds a
// winning, unclaimed bet.
func (c *Caller) GetClaimableMarkets(ctx context.Context, user common.Address) ([]uint64, error) {
	out, err := c.call(ctx, "getClaimableMarkets", user)
	if err != nil {
		return nil, err
	}
	return toUint64s(*abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)), nil
}

// CalculateWinnings returns the user's payout for a resolved market, in wei.
func (c *Caller) CalculateWinnings(ctx context.Context, id uint64, user common.Address) (*big.Int, error) {
	out, err := c.call(ctx, "calculateWinnings", new(big.Int).SetUint64(id), user)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func toUint64s(in []*big.Int) []uint64 {
	ids := make([]uint64, 0, len(in))
	for _, v := range in {
		ids = append(ids, v.Uint64())
	}
	return ids
}
