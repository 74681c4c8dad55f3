package contract

import (
	"fmt"
	"strings"

	"github.com/Akanimoh12/iPredict/internal/domain"
)

// NormalizeError maps well-known node and wallet error strings onto domain
// sentinels so callers can present friendlier messages. Unrecognized errors
// pass through unchanged; nothing is retried on the caller's behalf.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return fmt.Errorf("%w: %v", domain.ErrInsufficientFunds, err)
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"):
		return fmt.Errorf("%w: %v", domain.ErrUserRejected, err)
	case strings.Contains(msg, "execution reverted"):
		return fmt.Errorf("%w: %v", domain.ErrTxReverted, err)
	default:
		return err
	}
}
