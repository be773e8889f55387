package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how money was received
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
	PaymentCheck        PaymentMethod = "check"
	PaymentOther        PaymentMethod = "other"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCard, PaymentCheck, PaymentOther:
		return true
	}
	return false
}

// Payment is an append-only ledger entry against an invoice
type Payment struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	CompanyID  uint            `json:"company_id" gorm:"index;not null"`
	InvoiceID  uint            `json:"invoice_id" gorm:"index;not null"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(18,2);not null"`
	Method     PaymentMethod   `json:"method" gorm:"type:varchar(20);not null"`
	Reference  string          `json:"reference" gorm:"type:varchar(100)"`
	Note       string          `json:"note" gorm:"type:text"`
	PaidAt     time.Time       `json:"paid_at"`
	RecordedBy uint            `json:"recorded_by"`
	CreatedAt  time.Time       `json:"created_at"`
}
