package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/finance"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/pkg/broker"
	"github.com/xsidious/constructionmanagment-sub000/prometheus"
)

// PaymentService records payments against invoices. Payments are never
// edited or deleted.
type PaymentService struct {
	db  *gorm.DB
	pub broker.Publisher
}

func NewPaymentService(db *gorm.DB, pub broker.Publisher) *PaymentService {
	return &PaymentService{db: db, pub: pub}
}

type PaymentInput struct {
	Amount    decimal.Decimal
	Method    model.PaymentMethod
	Reference string
	Note      string
	PaidAt    *time.Time
}

// InvoiceBalance is the derived payment position of one invoice
type InvoiceBalance struct {
	InvoiceID uint                `json:"invoice_id"`
	Number    string              `json:"number"`
	Status    model.InvoiceStatus `json:"status"`
	finance.Balance
}

// invoiceBalance sums the stored payments of an invoice inside tx
func invoiceBalance(tx *gorm.DB, invoice *model.Invoice) (finance.Balance, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var payments []model.Payment
	if err := tx.Where("invoice_id = ?", invoice.ID).Find(&payments).Error; err != nil {
		return finance.Balance{}, err
	}
	amounts := make([]decimal.Decimal, 0, len(payments))
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	return finance.ComputeBalance(invoice.Total, amounts), nil
}

// Record appends a payment. The invoice row stays locked while the balance
// is checked, so concurrent payments cannot overpay it together. When the
// payment settles the balance the invoice becomes paid in the same
// transaction.
func (s *PaymentService) Record(ctx context.Context, companyID, invoiceID, actorID uint, in PaymentInput) (*model.Payment, *InvoiceBalance, error) {
	if in.Method == "" {
		in.Method = model.PaymentOther
	}
	if !in.Method.Valid() {
		return nil, nil, apperr.NewValidationError("method", fmt.Sprintf("unknown payment method %q", in.Method))
	}
	now := time.Now().UTC()
	if in.PaidAt != nil && in.PaidAt.After(now) {
		return nil, nil, apperr.NewValidationError("paid_at", "must not be in the future")
	}

	var (
		payment model.Payment
		invoice *model.Invoice
		balance finance.Balance
		nowPaid bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if invoice, err = lockInvoice(tx, companyID, invoiceID); err != nil {
			return err
		}
		if !invoice.Status.AcceptsPayments() {
			return apperr.InvalidState("invoice %s is %s and does not accept payments", invoice.Number, invoice.Status)
		}

		before, err := invoiceBalance(tx, invoice)
		if err != nil {
			return err
		}
		if err := finance.ValidatePayment(in.Amount, before); err != nil {
			return err
		}

		paidAt := now
		if in.PaidAt != nil {
			paidAt = in.PaidAt.UTC()
		}
		payment = model.Payment{
			CompanyID:  companyID,
			InvoiceID:  invoice.ID,
			Amount:     in.Amount,
			Method:     in.Method,
			Reference:  in.Reference,
			Note:       in.Note,
			PaidAt:     paidAt,
			RecordedBy: actorID,
		}
		defer prometheus.TrackDBOperation("insert")(time.Now())
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		balance = finance.ComputeBalance(invoice.Total, []decimal.Decimal{before.TotalPaid, in.Amount})
		if balance.Settled() {
			now := time.Now().UTC()
			if err := tx.Model(&model.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]interface{}{
				"status":  model.InvoicePaid,
				"paid_at": now,
			}).Error; err != nil {
				return err
			}
			invoice.Status = model.InvoicePaid
			invoice.PaidAt = &now
			nowPaid = true
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	amount, _ := payment.Amount.Float64()
	prometheus.RecordPayment(string(payment.Method), amount)

	publish(ctx, s.pub, broker.CompanySubject(companyID, "payment", "recorded"), "payment.recorded", PaymentEvent{
		CompanyID:     companyID,
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.Number,
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		Remaining:     balance.Remaining,
		OccurredAt:    payment.CreatedAt,
	})
	if nowPaid {
		publish(ctx, s.pub, broker.CompanySubject(companyID, "invoice", "paid"), "invoice.paid", DocumentEvent{
			CompanyID:  companyID,
			DocumentID: invoice.ID,
			Number:     invoice.Number,
			Status:     string(invoice.Status),
			Total:      invoice.Total,
			SourceID:   invoice.SourceQuoteID,
			ActorID:    actorID,
			OccurredAt: *invoice.PaidAt,
		})
	}

	return &payment, &InvoiceBalance{
		InvoiceID: invoice.ID,
		Number:    invoice.Number,
		Status:    invoice.Status,
		Balance:   balance,
	}, nil
}

// List returns an invoice's payments in the order they were recorded
func (s *PaymentService) List(ctx context.Context, companyID, invoiceID uint) ([]model.Payment, error) {
	db := s.db.WithContext(ctx)
	if err := findScoped(db, &model.Invoice{}, companyID, invoiceID, "invoice"); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var payments []model.Payment
	err := db.Where("company_id = ? AND invoice_id = ?", companyID, invoiceID).Order("id").Find(&payments).Error
	return payments, err
}

// Balance derives total paid and remaining from the stored payments
func (s *PaymentService) Balance(ctx context.Context, companyID, invoiceID uint) (*InvoiceBalance, error) {
	db := s.db.WithContext(ctx)

	var invoice model.Invoice
	if err := findScoped(db, &invoice, companyID, invoiceID, "invoice"); err != nil {
		return nil, err
	}
	balance, err := invoiceBalance(db, &invoice)
	if err != nil {
		return nil, err
	}
	return &InvoiceBalance{
		InvoiceID: invoice.ID,
		Number:    invoice.Number,
		Status:    invoice.Status,
		Balance:   balance,
	}, nil
}
