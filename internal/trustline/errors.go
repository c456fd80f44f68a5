package trustline

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateTrustline = errors.New("trustline already exists for this currency and issuer")
	ErrTrustlineNotFound  = errors.New("trustline does not exist")
	ErrNonZeroBalance     = errors.New("trustline balance must be zero before removal")
	ErrSubmitThrottled    = errors.New("submission rate limit exceeded")
)

// Field names the request attribute a ValidationError is about.
type Field string

const (
	FieldCurrency Field = "currency"
	FieldIssuer   Field = "issuer"
	FieldLimit    Field = "limit"
)

// ValidationError rejects a malformed request before any ledger traffic.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientReserveError reports the exact funding gap blocking a new
// trustline. Amounts are in XRP.
type InsufficientReserveError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientReserveError) Error() string {
	return fmt.Sprintf("insufficient reserve: need %s XRP, have %s XRP, short %s XRP",
		e.Required, e.Available, e.Shortfall)
}

// LimitBelowBalanceError rejects a limit reduction under the held balance.
type LimitBelowBalanceError struct {
	RequestedLimit decimal.Decimal
	Balance        decimal.Decimal
}

func (e *LimitBelowBalanceError) Error() string {
	return fmt.Sprintf("requested limit %s is below current balance magnitude %s",
		e.RequestedLimit, e.Balance.Abs())
}
