package derive

import (
	"math/big"
	"testing"
)

func wei(ether int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(ether), big.NewInt(1e18))
}

func TestOdds(t *testing.T) {
	tests := []struct {
		name    string
		yes, no *big.Int
		wantYes int
		wantNo  int
	}{
		{"empty pool defaults to even", big.NewInt(0), big.NewInt(0), 50, 50},
		{"all yes", big.NewInt(10), big.NewInt(0), 100, 0},
		{"all no", big.NewInt(0), big.NewInt(10), 0, 100},
		{"even split", big.NewInt(5), big.NewInt(5), 50, 50},
		{"one third truncates", big.NewInt(1), big.NewInt(2), 33, 67},
		{"two thirds truncates", big.NewInt(2), big.NewInt(1), 66, 34},
		{"wei-scale pools", wei(3), wei(1), 75, 25},
		{"tiny vs huge", big.NewInt(1), wei(1000), 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotYes, gotNo := Odds(tt.yes, tt.no)
			if gotYes != tt.wantYes || gotNo != tt.wantNo {
				t.Errorf("Odds(%s, %s) = (%d, %d), want (%d, %d)",
					tt.yes, tt.no, gotYes, gotNo, tt.wantYes, tt.wantNo)
			}
		})
	}
}

func TestOddsInvariants(t *testing.T) {
	// Percentages must stay in [0, 100] and sum to exactly 100 for every
	// pool shape, including the truncation-heavy ones.
	pools := []int64{0, 1, 2, 3, 7, 13, 99, 100, 1000, 1e12}
	for _, y := range pools {
		for _, n := range pools {
			yes, no := Odds(big.NewInt(y), big.NewInt(n))
			if yes+no != 100 {
				t.Errorf("Odds(%d, %d): sum = %d, want 100", y, n, yes+no)
			}
			if yes < 0 || yes > 100 || no < 0 || no > 100 {
				t.Errorf("Odds(%d, %d) = (%d, %d): out of [0,100]", y, n, yes, no)
			}
		}
	}
}

func TestPotentialReturn(t *testing.T) {
	tests := []struct {
		name     string
		stake    *big.Int
		isYes    bool
		yes, no  *big.Int
		feeBps   int64
		want     *big.Int
	}{
		{
			name:  "zero stake returns zero",
			stake: big.NewInt(0), isYes: true,
			yes: wei(3), no: wei(1), feeBps: 200,
			want: big.NewInt(0),
		},
		{
			name:  "empty winning pool guards divide by zero",
			stake: big.NewInt(0), isYes: true,
			yes: big.NewInt(0), no: big.NewInt(0), feeBps: 200,
			want: big.NewInt(0),
		},
		{
			// 1 ETH on YES into 3/1: gross = 1*(5)/(4) = 1.25, fee 2% =
			// 0.025, net 1.225.
			name:  "end-to-end scenario",
			stake: wei(1), isYes: true,
			yes: wei(3), no: wei(1), feeBps: 200,
			want: big.NewInt(1_225_000_000_000_000_000),
		},
		{
			name:  "zero fee keeps gross",
			stake: wei(1), isYes: true,
			yes: wei(3), no: wei(1), feeBps: 0,
			want: big.NewInt(1_250_000_000_000_000_000),
		},
		{
			name:  "full fee takes everything",
			stake: wei(1), isYes: true,
			yes: wei(3), no: wei(1), feeBps: 10000,
			want: big.NewInt(0),
		},
		{
			// Sole bettor on NO wins the whole pool minus fee.
			name:  "first bet on empty market",
			stake: wei(2), isYes: false,
			yes: big.NewInt(0), no: big.NewInt(0), feeBps: 200,
			want: big.NewInt(1_960_000_000_000_000_000),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PotentialReturn(tt.stake, tt.isYes, tt.yes, tt.no, tt.feeBps)
			if got.Cmp(tt.want) != 0 {
				t.Errorf("PotentialReturn = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPotentialReturnBounds(t *testing.T) {
	stake := wei(1)
	yes, no := wei(7), wei(5)
	gross := PotentialReturn(stake, true, yes, no, 0)
	for feeBps := int64(0); feeBps <= 10000; feeBps += 500 {
		net := PotentialReturn(stake, true, yes, no, feeBps)
		if net.Sign() < 0 {
			t.Fatalf("feeBps=%d: negative return %s", feeBps, net)
		}
		if net.Cmp(gross) > 0 {
			t.Fatalf("feeBps=%d: net %s exceeds gross %s", feeBps, net, gross)
		}
	}
}
