package trustline

import (
	"github.com/shopspring/decimal"

	"ledgerline/go-backend/internal/ledger"
	"ledgerline/go-backend/pkg/models"
)

// nearLimitThreshold marks a line as close to exhaustion once its balance
// magnitude reaches 90% of the limit.
var nearLimitThreshold = decimal.NewFromFloat(0.9)

// classify maps a balance sign to the trustline status. It is strictly
// empty/holding/owing; limit proximity is reported separately as an overlay
// so a holding line keeps its sign classification (see nearLimit).
func classify(balance decimal.Decimal) models.TrustlineStatus {
	switch {
	case balance.IsZero():
		return models.StatusEmpty
	case balance.IsPositive():
		return models.StatusHolding
	default:
		return models.StatusOwing
	}
}

// nearLimit reports whether the balance magnitude is at or past 90% of the
// limit. A zero limit can never be near.
func nearLimit(balance, limit decimal.Decimal) bool {
	if !limit.IsPositive() {
		return false
	}
	return balance.Abs().Cmp(limit.Mul(nearLimitThreshold)) >= 0
}

// utilization is |balance| / limit, clamped to 0 when the limit is zero.
func utilization(balance, limit decimal.Decimal) float64 {
	if limit.IsZero() {
		return 0
	}
	ratio, _ := balance.Abs().Div(limit).Float64()
	return ratio
}

// enrich turns a raw ledger line into its display form.
func enrich(account string, line ledger.Line) (models.TrustlineInfo, error) {
	balance, err := ledger.ParseBalance(line.Balance)
	if err != nil {
		return models.TrustlineInfo{}, err
	}
	limit, err := ledger.ParseAmount(line.Limit)
	if err != nil {
		return models.TrustlineInfo{}, err
	}
	return models.TrustlineInfo{
		Trustline: models.Trustline{
			Account:  account,
			Currency: line.Currency,
			Issuer:   line.Issuer,
			Limit:    line.Limit,
			Balance:  line.Balance,
		},
		HasBalance:       !balance.IsZero(),
		UtilizationRatio: utilization(balance, limit),
		Status:           classify(balance),
		NearLimit:        nearLimit(balance, limit),
	}, nil
}
