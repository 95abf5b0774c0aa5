// Package fine computes late fees for returned loans.
package fine

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

type Policy struct {
	DailyRate decimal.Decimal
	GraceDays int
	// Cap is the maximum fee per loan; nil means uncapped.
	Cap *decimal.Decimal
}

// DaysLate counts started days between due and at; partial days count in full.
func DaysLate(due, at time.Time) int {
	late := at.Sub(due)
	if late <= 0 {
		return 0
	}
	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

// ComputeLateFee returns the fee owed for returning at returnedAt a loan due at due.
func ComputeLateFee(due, returnedAt time.Time, p Policy) decimal.Decimal {
	if !returnedAt.After(due.Add(time.Duration(p.GraceDays) * day)) {
		return decimal.Zero
	}
	chargeable := DaysLate(due, returnedAt) - p.GraceDays
	if chargeable <= 0 || !p.DailyRate.IsPositive() {
		return decimal.Zero
	}
	fee := p.DailyRate.Mul(decimal.NewFromInt(int64(chargeable)))
	if p.Cap != nil && fee.GreaterThan(*p.Cap) {
		fee = *p.Cap
	}
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee.Round(2)
}
