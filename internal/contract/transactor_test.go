package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// newTestTransactor builds a Transactor without a client; the input guards
// under test must reject before anything reaches RPC.
func newTestTransactor(t *testing.T) *Transactor {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return NewTransactor(nil, common.HexToAddress("0x1"), key, 1439)
}

func TestFromDerivesSenderAddress(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tr := NewTransactor(nil, common.HexToAddress("0x1"), key, 1439)
	if got, want := tr.From(), ethcrypto.PubkeyToAddress(key.PublicKey); got != want {
		t.Errorf("From() = %s, want %s", got, want)
	}
}

func TestPlaceBetRejectsStakeBelowMinimum(t *testing.T) {
	tr := newTestTransactor(t)
	tests := []struct {
		name  string
		value *big.Int
	}{
		{"nil", nil},
		{"zero", big.NewInt(0)},
		{"one wei short", new(big.Int).Sub(MinBet, big.NewInt(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.PlaceBet(context.Background(), 1, true, tt.value)
			if !errors.Is(err, domain.ErrInvalidBet) {
				t.Errorf("PlaceBet(%v) err = %v, want ErrInvalidBet", tt.value, err)
			}
		})
	}
}

func TestBatchClaimRequiresMarkets(t *testing.T) {
	tr := newTestTransactor(t)
	for _, ids := range [][]uint64{nil, {}} {
		if _, err := tr.BatchClaim(context.Background(), ids); !errors.Is(err, domain.ErrNothingToClaim) {
			t.Errorf("BatchClaim(%v) err = %v, want ErrNothingToClaim", ids, err)
		}
	}
}

func TestCreateMarketRejectsDurationOutOfRange(t *testing.T) {
	tr := newTestTransactor(t)
	tests := []struct {
		name     string
		duration time.Duration
	}{
		{"zero", 0},
		{"negative", -time.Hour},
		{"sub-second rounds to zero", 500 * time.Millisecond},
		{"past the one-year cap", (MaxDuration + 1) * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.CreateMarket(context.Background(), "Will it rain?", "", "weather", tt.duration)
			if !errors.Is(err, domain.ErrInvalidBet) {
				t.Errorf("CreateMarket(%v) err = %v, want ErrInvalidBet", tt.duration, err)
			}
		})
	}
}
