package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Issued amounts carry at most 15 significant digits and an absolute value
// below 1e17; the ledger cannot represent anything finer.
const maxSignificantDigits = 15

var maxIssuedAmount = decimal.New(1, 17)

var (
	ErrAmountNotNumeric = errors.New("amount is not a decimal number")
	ErrAmountNegative   = errors.New("amount must not be negative")
	ErrAmountRange      = errors.New("amount outside representable range")
)

// ParseAmount validates a non-negative limit or balance string and returns
// its decimal value.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrAmountNotNumeric, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrAmountNegative, s)
	}
	if err := checkRange(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// ParseBalance is ParseAmount without the sign restriction; ledger balances
// are negative when the account owes the issuer.
func ParseBalance(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrAmountNotNumeric, s)
	}
	if err := checkRange(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

func checkRange(d decimal.Decimal) error {
	if d.Abs().Cmp(maxIssuedAmount) >= 0 {
		return fmt.Errorf("%w: %s", ErrAmountRange, d)
	}
	if d.NumDigits() > maxSignificantDigits {
		return fmt.Errorf("%w: more than %d significant digits", ErrAmountRange, maxSignificantDigits)
	}
	return nil
}

// DropsToXRP converts an on-ledger drop count to its XRP decimal value.
func DropsToXRP(drops int64) decimal.Decimal {
	return decimal.New(drops, -6)
}
