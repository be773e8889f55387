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

// InvoiceService creates and edits invoices and converts approved quotes
type InvoiceService struct {
	db  *gorm.DB
	pub broker.Publisher
}

func NewInvoiceService(db *gorm.DB, pub broker.Publisher) *InvoiceService {
	return &InvoiceService{db: db, pub: pub}
}

type InvoiceInput struct {
	CustomerID      uint
	ProjectID       *uint
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	DueDate         *time.Time
	Notes           string
	Items           []finance.LineItem
}

func invoiceItems(items []finance.LineItem) []model.InvoiceItem {
	out := make([]model.InvoiceItem, 0, len(items))
	for i, li := range items {
		out = append(out, model.InvoiceItem{LineItemFields: model.NewLineItemFields(i+1, li)})
	}
	return out
}

func invoiceLineItems(items []model.InvoiceItem) []finance.LineItem {
	out := make([]finance.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.LineItem())
	}
	return out
}

func (s *InvoiceService) event(inv *model.Invoice, actorID uint) DocumentEvent {
	return DocumentEvent{
		CompanyID:  inv.CompanyID,
		DocumentID: inv.ID,
		Number:     inv.Number,
		Status:     string(inv.Status),
		Total:      inv.Total,
		SourceID:   inv.SourceQuoteID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Create numbers and stores a draft invoice
func (s *InvoiceService) Create(ctx context.Context, companyID, actorID uint, in InvoiceInput) (*model.Invoice, error) {
	totals, err := finance.ComputeTotals(in.Items, in.DiscountPercent, in.TaxPercent)
	if err != nil {
		return nil, err
	}

	invoice := model.Invoice{
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		ProjectID:  copyID(in.ProjectID),
		Status:     model.InvoiceDraft,
		DueDate:    in.DueDate,
		Notes:      in.Notes,
		CreatedBy:  actorID,
		Items:      invoiceItems(in.Items),
	}
	invoice.Amounts.Apply(in.DiscountPercent, in.TaxPercent, totals)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkParties(tx, companyID, in.CustomerID, in.ProjectID); err != nil {
			return err
		}
		number, err := NextDocumentNumber(tx, companyID, model.DocumentInvoice)
		if err != nil {
			return err
		}
		invoice.Number = number

		defer prometheus.TrackDBOperation("insert")(time.Now())
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.pub, broker.CompanySubject(companyID, "invoice", "created"), "invoice.created", s.event(&invoice, actorID))
	return &invoice, nil
}

// Get returns an invoice with its items in position order
func (s *InvoiceService) Get(ctx context.Context, companyID, id uint) (*model.Invoice, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var invoice model.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&invoice).Error
	if err != nil {
		return nil, notFound(err, "invoice")
	}
	return &invoice, nil
}

// List returns the company's invoices, newest first, optionally by status
func (s *InvoiceService) List(ctx context.Context, companyID uint, status model.InvoiceStatus) ([]model.Invoice, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var invoices []model.Invoice
	err := q.Order("id DESC").Find(&invoices).Error
	return invoices, err
}

func lockInvoice(tx *gorm.DB, companyID, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := findScoped(forUpdate(tx), &invoice, companyID, id, "invoice"); err != nil {
		return nil, err
	}
	if err := tx.Where("invoice_id = ?", invoice.ID).Order("position").Find(&invoice.Items).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ReplaceItems swaps the full item set of a draft invoice and recomputes
// its totals atomically.
func (s *InvoiceService) ReplaceItems(ctx context.Context, companyID, id uint, items []finance.LineItem) (*model.Invoice, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, companyID, id)
		if err != nil {
			return err
		}
		if !invoice.Status.Editable() {
			return apperr.InvalidState("invoice %s is %s and can no longer be edited", invoice.Number, invoice.Status)
		}

		totals, err := finance.ComputeTotals(items, invoice.DiscountPercent, invoice.TaxPercent)
		if err != nil {
			return err
		}
		invoice.Amounts.Apply(invoice.DiscountPercent, invoice.TaxPercent, totals)

		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&model.InvoiceItem{}).Error; err != nil {
			return err
		}
		if newItems := invoiceItems(items); len(newItems) > 0 {
			for i := range newItems {
				newItems[i].InvoiceID = invoice.ID
			}
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Invoice{}).Where("id = ?", invoice.ID).Updates(invoice.Amounts.Columns()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}

// UpdateRates changes discount and tax on a draft invoice
func (s *InvoiceService) UpdateRates(ctx context.Context, companyID, id uint, discountPercent, taxPercent decimal.Decimal) (*model.Invoice, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, companyID, id)
		if err != nil {
			return err
		}
		if !invoice.Status.Editable() {
			return apperr.InvalidState("invoice %s is %s and can no longer be edited", invoice.Number, invoice.Status)
		}

		totals, err := finance.ComputeTotals(invoiceLineItems(invoice.Items), discountPercent, taxPercent)
		if err != nil {
			return err
		}
		invoice.Amounts.Apply(discountPercent, taxPercent, totals)

		defer prometheus.TrackDBOperation("update")(time.Now())
		return tx.Model(&model.Invoice{}).Where("id = ?", invoice.ID).Updates(invoice.Amounts.Columns()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}

// ChangeStatus moves an invoice through its lifecycle. Marking an invoice
// paid by hand requires a settled balance, and an invoice that has received
// payments cannot be cancelled.
func (s *InvoiceService) ChangeStatus(ctx context.Context, companyID, id, actorID uint, to model.InvoiceStatus) (*model.Invoice, error) {
	if !to.Valid() {
		return nil, apperr.NewValidationError("status", fmt.Sprintf("unknown invoice status %q", to))
	}

	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := lockInvoice(tx, companyID, id)
		if err != nil {
			return err
		}
		if invoice.Status == to {
			return nil
		}
		if !invoice.Status.CanTransitionTo(to) {
			return apperr.InvalidState("invoice %s cannot move from %s to %s", invoice.Number, invoice.Status, to)
		}
		if to == model.InvoiceSent && len(invoice.Items) == 0 {
			return apperr.InvalidState("invoice %s has no line items", invoice.Number)
		}

		updates := map[string]interface{}{"status": to}
		switch to {
		case model.InvoicePaid, model.InvoiceCancelled:
			balance, err := invoiceBalance(tx, invoice)
			if err != nil {
				return err
			}
			if to == model.InvoicePaid {
				if !balance.Settled() {
					return apperr.InvalidState("invoice %s still has %s outstanding", invoice.Number, balance.Remaining.StringFixed(finance.MoneyScale))
				}
				updates["paid_at"] = time.Now().UTC()
			} else if balance.TotalPaid.IsPositive() {
				return apperr.InvalidState("invoice %s has recorded payments and cannot be cancelled", invoice.Number)
			}
		}

		changed = true
		defer prometheus.TrackDBOperation("update")(time.Now())
		return tx.Model(&model.Invoice{}).Where("id = ?", invoice.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	invoice, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if changed {
		publish(ctx, s.pub, broker.CompanySubject(companyID, "invoice", string(to)), "invoice."+string(to), s.event(invoice, actorID))
	}
	return invoice, nil
}

// ConvertQuote creates a draft invoice from an approved quote. Amounts and
// items are copied as stored, never recomputed, and the quote is left
// unchanged. A quote converts at most once.
func (s *InvoiceService) ConvertQuote(ctx context.Context, companyID, quoteID, actorID uint, dueDate *time.Time) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := lockQuote(tx, companyID, quoteID)
		if err != nil {
			return err
		}
		if quote.Status != model.QuoteApproved {
			return apperr.InvalidState("quote %s is %s; only approved quotes can be converted", quote.Number, quote.Status)
		}

		var existing int64
		if err := tx.Model(&model.Invoice{}).Where("source_quote_id = ?", quote.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("quote %s has already been converted", quote.Number)
		}
		if err := quote.Amounts.Totals().Verify(); err != nil {
			return err
		}

		number, err := NextDocumentNumber(tx, companyID, model.DocumentInvoice)
		if err != nil {
			return err
		}

		items := make([]model.InvoiceItem, 0, len(quote.Items))
		for _, qi := range quote.Items {
			items = append(items, model.InvoiceItem{LineItemFields: qi.LineItemFields})
		}
		sourceID := quote.ID
		invoice = model.Invoice{
			CompanyID:     companyID,
			Number:        number,
			CustomerID:    quote.CustomerID,
			ProjectID:     copyID(quote.ProjectID),
			SourceQuoteID: &sourceID,
			Status:        model.InvoiceDraft,
			Amounts:       quote.Amounts,
			DueDate:       dueDate,
			Notes:         quote.Notes,
			CreatedBy:     actorID,
			Items:         items,
		}

		defer prometheus.TrackDBOperation("insert")(time.Now())
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.pub, broker.CompanySubject(companyID, "invoice", "converted"), "invoice.converted", s.event(&invoice, actorID))
	return &invoice, nil
}
