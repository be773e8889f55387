package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/xsidious/constructionmanagment-sub000/internal/finance"
)

// DocumentKind identifies a numbered document type
type DocumentKind string

const (
	DocumentQuote   DocumentKind = "quote"
	DocumentInvoice DocumentKind = "invoice"
)

// Prefix returns the number prefix for the kind
func (k DocumentKind) Prefix() string {
	switch k {
	case DocumentQuote:
		return "QT"
	case DocumentInvoice:
		return "INV"
	}
	return "DOC"
}

// FormatNumber renders a sequence value as a zero-padded document number
func (k DocumentKind) FormatNumber(seq int64) string {
	return fmt.Sprintf("%s-%06d", k.Prefix(), seq)
}

// Amounts are the stored rates and derived totals shared by quotes and
// invoices. They are only ever written together.
type Amounts struct {
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:decimal(5,2);not null"`
	TaxPercent      decimal.Decimal `json:"tax_percent" gorm:"type:decimal(5,2);not null"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal `json:"tax_amount" gorm:"type:decimal(18,2);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(18,2);not null"`
}

// Apply stores freshly computed totals together with the rates they came from
func (a *Amounts) Apply(discountPercent, taxPercent decimal.Decimal, t finance.Totals) {
	a.DiscountPercent = discountPercent
	a.TaxPercent = taxPercent
	a.Subtotal = t.Subtotal
	a.DiscountAmount = t.DiscountAmount
	a.TaxAmount = t.TaxAmount
	a.Total = t.Total
}

// Totals returns the stored derived amounts
func (a Amounts) Totals() finance.Totals {
	return finance.Totals{
		Subtotal:       a.Subtotal,
		DiscountAmount: a.DiscountAmount,
		TaxAmount:      a.TaxAmount,
		Total:          a.Total,
	}
}

// Columns returns the amounts as an update map
func (a Amounts) Columns() map[string]interface{} {
	return map[string]interface{}{
		"discount_percent": a.DiscountPercent,
		"tax_percent":      a.TaxPercent,
		"subtotal":         a.Subtotal,
		"discount_amount":  a.DiscountAmount,
		"tax_amount":       a.TaxAmount,
		"total":            a.Total,
	}
}

// LineItemFields are the columns shared by quote and invoice items
type LineItemFields struct {
	Position    int              `json:"position" gorm:"not null"`
	Type        finance.ItemType `json:"type" gorm:"type:varchar(20);not null"`
	Description string           `json:"description" gorm:"type:text;not null"`
	Quantity    decimal.Decimal  `json:"quantity" gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal  `json:"unit_price" gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal  `json:"total" gorm:"type:decimal(26,8);not null"`
}

// NewLineItemFields builds stored item columns from engine input
func NewLineItemFields(position int, li finance.LineItem) LineItemFields {
	return LineItemFields{
		Position:    position,
		Type:        li.Type,
		Description: li.Description,
		Quantity:    li.Quantity,
		UnitPrice:   li.UnitPrice,
		Total:       li.Total(),
	}
}

// LineItem converts stored columns back to engine input
func (f LineItemFields) LineItem() finance.LineItem {
	return finance.LineItem{
		Type:        f.Type,
		Description: f.Description,
		Quantity:    f.Quantity,
		UnitPrice:   f.UnitPrice,
	}
}
