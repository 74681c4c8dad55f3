package derive

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestFormatToken(t *testing.T) {
	tests := []struct {
		name     string
		wei      *big.Int
		decimals int
		want     string
	}{
		{"nil amount", nil, 2, "0.00"},
		{"zero", big.NewInt(0), 2, "0.00"},
		{"one ether", wei(1), 2, "1.00"},
		{"net return rounds up", big.NewInt(1_225_000_000_000_000_000), 2, "1.23"},
		{"quarter", big.NewInt(250_000_000_000_000_000), 2, "0.25"},
		{"no decimals", wei(42), 0, "42"},
		{"rounding carries into whole", big.NewInt(1_999_999_999_999_999_999), 2, "2.00"},
		{"four decimals", big.NewInt(10_000_000_000_000_000), 4, "0.0100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatToken(tt.wei, tt.decimals); got != tt.want {
				t.Errorf("FormatToken = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{999, "999"},
		{1500, "1.5K"},
		{2_300_000, "2.3M"},
		{7_100_000_000, "7.1B"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAddress(t *testing.T) {
	addr := common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")
	if got := FormatAddress(addr, 4); got != "0x1234...5678" {
		t.Errorf("FormatAddress = %q", got)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   string
	}{
		{"expired", -time.Second, "Ended"},
		{"days and hours", 50 * time.Hour, "2d 2h"},
		{"hours and minutes", 5*time.Hour + 12*time.Minute, "5h 12m"},
		{"minutes only", 12 * time.Minute, "12m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCountdown(testNow.Add(tt.offset), testNow); got != tt.want {
				t.Errorf("FormatCountdown = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   string
	}{
		{"just now", -30 * time.Second, "just now"},
		{"minutes", -5 * time.Minute, "5m ago"},
		{"hours", -3 * time.Hour, "3h ago"},
		{"days", -2 * 24 * time.Hour, "2d ago"},
		{"beyond a week", -10 * 24 * time.Hour, "2026-02-19"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(testNow.Add(tt.offset), testNow); got != tt.want {
				t.Errorf("FormatRelativeTime = %q, want %q", got, tt.want)
			}
		})
	}
}
