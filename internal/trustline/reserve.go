package trustline

import (
	"github.com/shopspring/decimal"

	"ledgerline/go-backend/internal/ledger"
	"ledgerline/go-backend/pkg/models"
)

// Reserves holds the network's published reserve constants in XRP.
type Reserves struct {
	Base      decimal.Decimal
	Increment decimal.Decimal
}

// DefaultReserves matches the mainnet constants: 10 XRP base, 2 XRP per
// owned object.
func DefaultReserves() Reserves {
	return Reserves{
		Base:      decimal.NewFromInt(10),
		Increment: decimal.NewFromInt(2),
	}
}

// Required is the reserve an account must hold with n owned objects.
func (r Reserves) Required(n uint32) decimal.Decimal {
	return r.Base.Add(r.Increment.Mul(decimal.NewFromInt(int64(n))))
}

// capacity evaluates whether the account can afford one more owned object.
func (r Reserves) capacity(info ledger.AccountInfo) models.CapacityReport {
	balance := ledger.DropsToXRP(info.BalanceDrops)
	required := r.Required(info.OwnerCount + 1)
	report := models.CapacityReport{
		CanCreate:       balance.Cmp(required) >= 0,
		Balance:         balance.String(),
		ReserveRequired: required.String(),
	}
	if !report.CanCreate {
		report.Shortfall = required.Sub(balance).String()
	}
	return report
}
