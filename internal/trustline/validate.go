package trustline

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerline/go-backend/internal/ledger"
	"ledgerline/go-backend/internal/ledger/addrcodec"
)

var (
	currencyCodeRe = regexp.MustCompile(`^[A-Za-z0-9]{3}$`)
	currencyHexRe  = regexp.MustCompile(`^[0-9A-Fa-f]{40}$`)
)

func validateCurrency(currency string) error {
	switch {
	case currencyCodeRe.MatchString(currency):
		if strings.EqualFold(currency, ledger.NativeCurrency) {
			return &ValidationError{Field: FieldCurrency, Reason: "trustlines cannot reference the native currency"}
		}
		return nil
	case currencyHexRe.MatchString(currency):
		return nil
	default:
		return &ValidationError{Field: FieldCurrency, Reason: "must be a 3-character alphanumeric or 40-character hex code"}
	}
}

func validateIssuer(issuer string) error {
	if !addrcodec.IsValidAddress(issuer) {
		return &ValidationError{Field: FieldIssuer, Reason: "not a valid ledger address"}
	}
	return nil
}

func validateLimit(limit string) (decimal.Decimal, error) {
	d, err := ledger.ParseAmount(limit)
	if err != nil {
		return decimal.Decimal{}, &ValidationError{Field: FieldLimit, Reason: err.Error()}
	}
	return d, nil
}
