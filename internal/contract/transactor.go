package contract

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// receiptPollInterval is how often WaitMined polls for a transaction receipt.
const receiptPollInterval = 2 * time.Second

// Transactor submits signed state-changing transactions to the contract.
// Transactions are never retried automatically; once submitted they cannot be
// revoked, only abandoned by the caller.
type Transactor struct {
	client  *ethclient.Client
	address common.Address
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

// NewTransactor creates a Transactor signing with the given private key.
func NewTransactor(client *ethclient.Client, address common.Address, key *ecdsa.PrivateKey, chainID int64) *Transactor {
	return &Transactor{
		client:  client,
		address: address,
		key:     key,
		from:    ethcrypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
	}
}

// From returns the sender address derived from the signing key.
func (t *Transactor) From() common.Address {
	return t.from
}

// send packs, prices, signs, and broadcasts one contract transaction. value
// is the payable amount in wei (nil for non-payable methods).
func (t *Transactor) send(ctx context.Context, value *big.Int, method string, args ...any) (*types.Transaction, error) {
	input, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("contract: pack %s: %w", method, err)
	}
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := t.client.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, fmt.Errorf("contract: %s: nonce: %w", method, err)
	}

	tipCap, err := t.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("contract: %s: gas tip: %w", method, err)
	}
	head, err := t.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("contract: %s: head: %w", method, err)
	}
	// feeCap = 2*baseFee + tip leaves headroom for base-fee growth while the
	// transaction is pending.
	feeCap := new(big.Int).Add(
		new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
		tipCap,
	)

	gas, err := t.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  t.from,
		To:    &t.address,
		Value: value,
		Data:  input,
	})
	if err != nil {
		return nil, fmt.Errorf("contract: %s: estimate gas: %w", method, NormalizeError(err))
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   t.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &t.address,
		Value:     value,
		Data:      input,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainID), t.key)
	if err != nil {
		return nil, fmt.Errorf("contract: %s: sign: %w", method, err)
	}

	if err := t.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("contract: %s: send: %w", method, NormalizeError(err))
	}
	return signed, nil
}

// WaitMined blocks until the transaction is included in a block, then checks
// the receipt status. A reverted transaction returns domain.ErrTxReverted.
func (t *Transactor) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := t.client.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("contract: tx %s: %w", tx.Hash(), domain.ErrTxReverted)
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("contract: receipt %s: %w", tx.Hash(), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// PlaceBet stakes value wei on one side of a market.
func (t *Transactor) PlaceBet(ctx context.Context, marketID uint64, isYes bool, value *big.Int) (*types.Transaction, error) {
	if value == nil || value.Cmp(MinBet) < 0 {
		return nil, fmt.Errorf("contract: stake below minimum bet: %w", domain.ErrInvalidBet)
	}
	return t.send(ctx, value, "placeBet", new(big.Int).SetUint64(marketID), isYes)
}

// ClaimWinnings claims the caller's payout for a resolved market.
func (t *Transactor) ClaimWinnings(ctx context.Context, marketID uint64) (*types.Transaction, error) {
	return t.send(ctx, nil, "claimWinnings", new(big.Int).SetUint64(marketID))
}

// ClaimRefund refunds the caller's stake on a cancelled market.
func (t *Transactor) ClaimRefund(ctx context.Context, marketID uint64) (*types.Transaction, error) {
	return t.send(ctx, nil, "claimRefund", new(big.Int).SetUint64(marketID))
}

// BatchClaim claims winnings across several markets in one transaction.
func (t *Transactor) BatchClaim(ctx context.Context, marketIDs []uint64) (*types.Transaction, error) {
	if len(marketIDs) == 0 {
		return nil, fmt.Errorf("contract: empty batch: %w", domain.ErrNothingToClaim)
	}
	ids := make([]*big.Int, 0, len(marketIDs))
	for _, id := range marketIDs {
		ids = append(ids, new(big.Int).SetUint64(id))
	}
	return t.send(ctx, nil, "batchClaim", ids)
}

// CreateMarket creates a new market. Admin only; the contract reverts for
// any other sender.
func (t *Transactor) CreateMarket(ctx context.Context, question, imageURL, category string, duration time.Duration) (*types.Transaction, error) {
	secs := int64(duration.Seconds())
	if secs <= 0 || secs > MaxDuration {
		return nil, fmt.Errorf("contract: duration out of range: %w", domain.ErrInvalidBet)
	}
	return t.send(ctx, nil, "createMarket", question, imageURL, category, big.NewInt(secs))
}

// ResolveMarket records the final outcome of a market. Admin only.
func (t *Transactor) ResolveMarket(ctx context.Context, marketID uint64, outcome bool) (*types.Transaction, error) {
	return t.send(ctx, nil, "resolveMarket", new(big.Int).SetUint64(marketID), outcome)
}

// CancelMarket cancels a market, making all stakes refundable. Admin only.
func (t *Transactor) CancelMarket(ctx context.Context, marketID uint64) (*types.Transaction, error) {
	return t.send(ctx, nil, "cancelMarket", new(big.Int).SetUint64(marketID))
}

// Pause halts all betting. Admin only.
func (t *Transactor) Pause(ctx context.Context) (*types.Transaction, error) {
	return t.send(ctx, nil, "pause")
}

// Unpause resumes betting. Admin only.
func (t *Transactor) Unpause(ctx context.Context) (*types.Transaction, error) {
	return t.send(ctx, nil, "unpause")
}

// WithdrawFees transfers accumulated platform fees to the admin. Admin only.
func (t *Transactor) WithdrawFees(ctx context.Context) (*types.Transaction, error) {
	return t.send(ctx, nil, "withdrawFees")
}
