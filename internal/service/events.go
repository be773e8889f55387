package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentEvent is published when a quote or invoice is created or changes status
type DocumentEvent struct {
	CompanyID  uint            `json:"company_id"`
	DocumentID uint            `json:"document_id"`
	Number     string          `json:"number"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	SourceID   *uint           `json:"source_id,omitempty"`
	ActorID    uint            `json:"actor_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// PaymentEvent is published for every recorded payment
type PaymentEvent struct {
	CompanyID     uint            `json:"company_id"`
	InvoiceID     uint            `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     uint            `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Remaining     decimal.Decimal `json:"remaining"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
