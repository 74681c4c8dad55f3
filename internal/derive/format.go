package derive

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// FormatToken renders a wei amount as a decimal token string with the given
// number of fractional digits (e.g. 1225000000000000000 -> "1.23" at 2
// digits). Negative amounts are not expected from the contract but are
// handled for completeness.
func FormatToken(wei *big.Int, decimals int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)

	whole, frac := new(big.Int).QuoRem(abs, big.NewInt(params.Ether), new(big.Int))
	s := whole.String()
	if decimals > 0 {
		// Scale the 18-digit remainder down to the requested precision,
		// rounding half up.
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-decimals)), nil)
		half := new(big.Int).Rsh(scale, 1)
		frac.Add(frac, half)
		frac.Quo(frac, scale)
		limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
		if frac.Cmp(limit) >= 0 {
			frac.Sub(frac, limit)
			whole.Add(whole, big.NewInt(1))
			s = whole.String()
		}
		s += "." + fmt.Sprintf("%0*s", decimals, frac.String())
	}
	if neg {
		s = "-" + s
	}
	return s
}

// FormatCompact renders a number with K/M/B suffixes for large magnitudes.
func FormatCompact(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.1fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.1fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.1fK", n/1e3)
	default:
		return strings.TrimSuffix(fmt.Sprintf("%g", n), ".0")
	}
}

// FormatAddress truncates an address to the 0x1234...5678 display form.
func FormatAddress(addr common.Address, chars int) string {
	hex := addr.Hex()
	if chars <= 0 {
		chars = 4
	}
	if len(hex) <= 2+2*chars {
		return hex
	}
	return hex[:2+chars] + "..." + hex[len(hex)-chars:]
}

// FormatCountdown renders the countdown to endTime in the coarsest two units
// ("2d 5h", "5h 12m", "12m"), or "Ended" once expired.
func FormatCountdown(endTime, now time.Time) string {
	r := TimeRemaining(endTime, now)
	switch {
	case r.IsExpired:
		return "Ended"
	case r.Days > 0:
		return fmt.Sprintf("%dd %dh", r.Days, r.Hours)
	case r.Hours > 0:
		return fmt.Sprintf("%dh %dm", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%dm", r.Minutes)
	}
}

// FormatRelativeTime renders how long ago a timestamp occurred ("just now",
// "3m ago", "2h ago", "5d ago"), falling back to a date beyond a week.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Unix() - t.Unix()
	switch {
	case diff < 60:
		return "just now"
	case diff < 3600:
		return fmt.Sprintf("%dm ago", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh ago", diff/3600)
	case diff < 604800:
		return fmt.Sprintf("%dd ago", diff/86400)
	default:
		return t.Format("2006-01-02")
	}
}
