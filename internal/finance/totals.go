// Package finance computes quote and invoice amounts. Everything here is
// pure decimal arithmetic with no I/O.
package finance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
)

// MoneyScale is the number of decimal places stored for currency amounts.
// Rounding is half away from zero.
const MoneyScale = 2

// Stored precision of inputs. Values with more places are rejected rather
// than silently rounded by the database.
const (
	QuantityScale = 4
	PriceScale    = 4
	RateScale     = 2
)

var hundred = decimal.NewFromInt(100)

// ItemType classifies a line item
type ItemType string

const (
	ItemLabor    ItemType = "labor"
	ItemMaterial ItemType = "material"
)

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	return t == ItemLabor || t == ItemMaterial
}

// LineItem is the priced input to ComputeTotals
type LineItem struct {
	Type        ItemType        `json:"type"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total is quantity times unit price at full precision. Rounding happens
// once, on the document subtotal.
func (li LineItem) Total() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Totals are the four derived amounts of a document
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Verify checks that the totals are mutually consistent and non-negative.
// A failure is a programming defect, not a user error.
func (t Totals) Verify() error {
	if !t.Subtotal.Sub(t.DiscountAmount).Add(t.TaxAmount).Equal(t.Total) {
		return fmt.Errorf("%w: total %s != %s - %s + %s", apperr.ErrInvariant,
			t.Total, t.Subtotal, t.DiscountAmount, t.TaxAmount)
	}
	for name, v := range map[string]decimal.Decimal{
		"subtotal": t.Subtotal, "discount": t.DiscountAmount, "tax": t.TaxAmount, "total": t.Total,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: negative %s %s", apperr.ErrInvariant, name, v)
		}
	}
	if t.DiscountAmount.GreaterThan(t.Subtotal) {
		return fmt.Errorf("%w: discount %s exceeds subtotal %s", apperr.ErrInvariant, t.DiscountAmount, t.Subtotal)
	}
	return nil
}

// ValidateItems checks every line item and reports all failing fields
func ValidateItems(items []LineItem) *apperr.ValidationError {
	verr := &apperr.ValidationError{}
	for i, item := range items {
		if !item.Type.Valid() {
			verr.Add(fmt.Sprintf("items[%d].type", i), "must be labor or material")
		}
		if item.Description == "" {
			verr.Add(fmt.Sprintf("items[%d].description", i), "is required")
		}
		if !item.Quantity.IsPositive() {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		} else if !hasScale(item.Quantity, QuantityScale) {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must have at most %d decimal places", QuantityScale))
		}
		if !item.UnitPrice.IsPositive() {
			verr.Add(fmt.Sprintf("items[%d].unit_price", i), "must be greater than zero")
		} else if !hasScale(item.UnitPrice, PriceScale) {
			verr.Add(fmt.Sprintf("items[%d].unit_price", i), fmt.Sprintf("must have at most %d decimal places", PriceScale))
		}
	}
	return verr
}

// ValidateRates checks the discount and tax percentages
func ValidateRates(discountPercent, taxPercent decimal.Decimal) *apperr.ValidationError {
	verr := &apperr.ValidationError{}
	check := func(field string, v decimal.Decimal) {
		switch {
		case v.IsNegative() || v.GreaterThan(hundred):
			verr.Add(field, "must be between 0 and 100")
		case !hasScale(v, RateScale):
			verr.Add(field, fmt.Sprintf("must have at most %d decimal places", RateScale))
		}
	}
	check("discount_percent", discountPercent)
	check("tax_percent", taxPercent)
	return verr
}

func hasScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Round(places))
}

// ComputeTotals derives subtotal, discount, tax and total from line items.
// The discount is taken from the subtotal and the tax is applied to the
// discounted amount. The result does not depend on item order.
func ComputeTotals(items []LineItem, discountPercent, taxPercent decimal.Decimal) (Totals, error) {
	verr := ValidateItems(items)
	verr.Causes = append(verr.Causes, ValidateRates(discountPercent, taxPercent).Causes...)
	if err := verr.OrNil(); err != nil {
		return Totals{}, err
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total())
	}
	subtotal := sum.Round(MoneyScale)

	discount := subtotal.Mul(discountPercent).Div(hundred).Round(MoneyScale)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxPercent).Div(hundred).Round(MoneyScale)

	totals := Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
	if err := totals.Verify(); err != nil {
		return Totals{}, err
	}
	return totals, nil
}
