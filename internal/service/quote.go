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

// QuoteService creates and edits quotes. Totals are recomputed from the
// stored items on every change and written in the same transaction.
type QuoteService struct {
	db  *gorm.DB
	pub broker.Publisher
}

func NewQuoteService(db *gorm.DB, pub broker.Publisher) *QuoteService {
	return &QuoteService{db: db, pub: pub}
}

type QuoteInput struct {
	CustomerID      uint
	ProjectID       *uint
	DiscountPercent decimal.Decimal
	TaxPercent      decimal.Decimal
	ValidUntil      *time.Time
	Notes           string
	Items           []finance.LineItem
}

func quoteItems(items []finance.LineItem) []model.QuoteItem {
	out := make([]model.QuoteItem, 0, len(items))
	for i, li := range items {
		out = append(out, model.QuoteItem{LineItemFields: model.NewLineItemFields(i+1, li)})
	}
	return out
}

func quoteLineItems(items []model.QuoteItem) []finance.LineItem {
	out := make([]finance.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.LineItem())
	}
	return out
}

func (s *QuoteService) event(q *model.Quote, actorID uint) DocumentEvent {
	return DocumentEvent{
		CompanyID:  q.CompanyID,
		DocumentID: q.ID,
		Number:     q.Number,
		Status:     string(q.Status),
		Total:      q.Total,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Create numbers and stores a draft quote
func (s *QuoteService) Create(ctx context.Context, companyID, actorID uint, in QuoteInput) (*model.Quote, error) {
	totals, err := finance.ComputeTotals(in.Items, in.DiscountPercent, in.TaxPercent)
	if err != nil {
		return nil, err
	}

	quote := model.Quote{
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		ProjectID:  copyID(in.ProjectID),
		Status:     model.QuoteDraft,
		ValidUntil: in.ValidUntil,
		Notes:      in.Notes,
		CreatedBy:  actorID,
		Items:      quoteItems(in.Items),
	}
	quote.Amounts.Apply(in.DiscountPercent, in.TaxPercent, totals)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkParties(tx, companyID, in.CustomerID, in.ProjectID); err != nil {
			return err
		}
		number, err := NextDocumentNumber(tx, companyID, model.DocumentQuote)
		if err != nil {
			return err
		}
		quote.Number = number

		defer prometheus.TrackDBOperation("insert")(time.Now())
		return tx.Create(&quote).Error
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.pub, broker.CompanySubject(companyID, "quote", "created"), "quote.created", s.event(&quote, actorID))
	return &quote, nil
}

// Get returns a quote with its items in position order
func (s *QuoteService) Get(ctx context.Context, companyID, id uint) (*model.Quote, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var quote model.Quote
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&quote).Error
	if err != nil {
		return nil, notFound(err, "quote")
	}
	return &quote, nil
}

// List returns the company's quotes, newest first, optionally by status
func (s *QuoteService) List(ctx context.Context, companyID uint, status model.QuoteStatus) ([]model.Quote, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var quotes []model.Quote
	err := q.Order("id DESC").Find(&quotes).Error
	return quotes, err
}

// lockQuote loads a quote row-locked for the rest of the transaction
func lockQuote(tx *gorm.DB, companyID, id uint) (*model.Quote, error) {
	var quote model.Quote
	if err := findScoped(forUpdate(tx), &quote, companyID, id, "quote"); err != nil {
		return nil, err
	}
	if err := tx.Where("quote_id = ?", quote.ID).Order("position").Find(&quote.Items).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// ReplaceItems deletes every item and inserts the new set, recomputing the
// totals in the same transaction.
func (s *QuoteService) ReplaceItems(ctx context.Context, companyID, id uint, items []finance.LineItem) (*model.Quote, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := lockQuote(tx, companyID, id)
		if err != nil {
			return err
		}
		if !quote.Status.Editable() {
			return apperr.InvalidState("quote %s is %s and can no longer be edited", quote.Number, quote.Status)
		}

		totals, err := finance.ComputeTotals(items, quote.DiscountPercent, quote.TaxPercent)
		if err != nil {
			return err
		}
		quote.Amounts.Apply(quote.DiscountPercent, quote.TaxPercent, totals)

		defer prometheus.TrackDBOperation("update")(time.Now())
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&model.QuoteItem{}).Error; err != nil {
			return err
		}
		if newItems := quoteItems(items); len(newItems) > 0 {
			for i := range newItems {
				newItems[i].QuoteID = quote.ID
			}
			if err := tx.Create(&newItems).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Quote{}).Where("id = ?", quote.ID).Updates(quote.Amounts.Columns()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}

// UpdateRates changes the discount and tax percentages and recomputes the
// totals from the stored items.
func (s *QuoteService) UpdateRates(ctx context.Context, companyID, id uint, discountPercent, taxPercent decimal.Decimal) (*model.Quote, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := lockQuote(tx, companyID, id)
		if err != nil {
			return err
		}
		if !quote.Status.Editable() {
			return apperr.InvalidState("quote %s is %s and can no longer be edited", quote.Number, quote.Status)
		}

		totals, err := finance.ComputeTotals(quoteLineItems(quote.Items), discountPercent, taxPercent)
		if err != nil {
			return err
		}
		quote.Amounts.Apply(discountPercent, taxPercent, totals)

		defer prometheus.TrackDBOperation("update")(time.Now())
		return tx.Model(&model.Quote{}).Where("id = ?", quote.ID).Updates(quote.Amounts.Columns()).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, companyID, id)
}

// ChangeStatus moves a quote through its lifecycle
func (s *QuoteService) ChangeStatus(ctx context.Context, companyID, id, actorID uint, to model.QuoteStatus) (*model.Quote, error) {
	if !to.Valid() {
		return nil, apperr.NewValidationError("status", fmt.Sprintf("unknown quote status %q", to))
	}

	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := lockQuote(tx, companyID, id)
		if err != nil {
			return err
		}
		if quote.Status == to {
			return nil
		}
		if !quote.Status.CanTransitionTo(to) {
			return apperr.InvalidState("quote %s cannot move from %s to %s", quote.Number, quote.Status, to)
		}
		if (to == model.QuoteSent || to == model.QuoteApproved) && len(quote.Items) == 0 {
			return apperr.InvalidState("quote %s has no line items", quote.Number)
		}

		changed = true
		defer prometheus.TrackDBOperation("update")(time.Now())
		return tx.Model(&model.Quote{}).Where("id = ?", quote.ID).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}

	quote, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if changed {
		publish(ctx, s.pub, broker.CompanySubject(companyID, "quote", string(to)), "quote."+string(to), s.event(quote, actorID))
	}
	return quote, nil
}
