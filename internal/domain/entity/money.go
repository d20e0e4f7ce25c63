package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/wishloop/payout-engine/internal/domain/error"
)

// Monetary amounts are carried as int64 cents everywhere inside the engine.
// Strings with at most two decimal places are only accepted and produced at
// the API boundary. The system is single-currency.

// MaxDecimalPlaces is the maximum number of decimal places accepted in an
// amount string.
const MaxDecimalPlaces = 2

// ParseAmount validates an amount string and converts it to cents.
// "10" -> 1000, "10.5" -> 1050, "10.57" -> 1057. Negative values, more than
// two decimal places and anything non-numeric are rejected.
func ParseAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}
	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	var digits string
	if len(parts) == 1 {
		digits = parts[0] + "00"
	} else {
		switch len(parts[1]) {
		case 0:
			digits = parts[0] + "00"
		case 1:
			digits = parts[0] + parts[1] + "0"
		case 2:
			digits = parts[0] + parts[1]
		default:
			return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
		}
	}

	cents, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}
	return cents, nil
}

// ParsePositiveAmount is ParseAmount with a strictly-positive requirement.
// Used by every mutation path: zero-amount settlements, allocations and
// withdrawals are all invalid.
func ParsePositiveAmount(amount string) (int64, error) {
	cents, err := ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
	}
	return cents, nil
}

// FormatCents renders cents as a decimal string with exactly two decimal
// places. 1015 -> "10.15", -50 -> "-0.50".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	s := strconv.FormatInt(cents, 10)
	for len(s) < 3 {
		s = "0" + s
	}
	out := s[:len(s)-2] + "." + s[len(s)-2:]
	if neg {
		return "-" + out
	}
	return out
}
