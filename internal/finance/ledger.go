package finance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
)

// Balance is derived from an invoice total and its payments on every read
type Balance struct {
	Total     decimal.Decimal `json:"total"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Settled reports whether nothing remains to be paid
func (b Balance) Settled() bool {
	return !b.Remaining.IsPositive()
}

// ComputeBalance sums payments against an invoice total
func ComputeBalance(total decimal.Decimal, payments []decimal.Decimal) Balance {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p)
	}
	return Balance{
		Total:     total,
		TotalPaid: paid,
		Remaining: total.Sub(paid),
	}
}

// ValidatePayment rejects non-positive amounts, amounts with sub-cent
// precision, and amounts larger than the remaining balance.
func ValidatePayment(amount decimal.Decimal, balance Balance) error {
	if !amount.IsPositive() {
		return apperr.NewValidationError("amount", "must be greater than zero")
	}
	if !hasScale(amount, MoneyScale) {
		return apperr.NewValidationError("amount", fmt.Sprintf("must have at most %d decimal places", MoneyScale))
	}
	if amount.GreaterThan(balance.Remaining) {
		return apperr.NewValidationError("amount",
			fmt.Sprintf("exceeds remaining balance of %s", balance.Remaining.StringFixed(MoneyScale)))
	}
	return nil
}
