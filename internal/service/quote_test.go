package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/finance"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
)

func (f *fixture) draftQuote(t *testing.T) *model.Quote {
	t.Helper()
	q, err := f.quotes().Create(f.ctx, f.company.ID, f.owner.ID, QuoteInput{
		CustomerID:      f.customer.ID,
		ProjectID:       &f.project.ID,
		DiscountPercent: dec("10"),
		TaxPercent:      dec("20"),
		Items: []finance.LineItem{
			item(finance.ItemLabor, "Framing", "40", "20"),
			item(finance.ItemMaterial, "Lumber", "4", "50"),
		},
	})
	require.NoError(t, err)
	return q
}

func TestCreateQuoteComputesTotals(t *testing.T) {
	f := newFixture(t)
	q := f.draftQuote(t)

	assert.Equal(t, "QT-000001", q.Number)
	assert.Equal(t, model.QuoteDraft, q.Status)

	got, err := f.quotes().Get(f.ctx, f.company.ID, q.ID)
	require.NoError(t, err)
	assertDec(t, "1000", got.Subtotal)
	assertDec(t, "100", got.DiscountAmount)
	assertDec(t, "180", got.TaxAmount)
	assertDec(t, "1080", got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Framing", got.Items[0].Description)
	assertDec(t, "800", got.Items[0].Total)

	assert.Equal(t, []string{"company.1.quote.created"}, f.pub.Subjects())
}

func TestCreateQuoteRejectsForeignCustomer(t *testing.T) {
	f := newFixture(t)
	other := f.user(t, "other@example.com")
	_, foreign := f.tenant(t, other.ID, "Other Co")

	_, err := f.quotes().Create(f.ctx, f.company.ID, f.owner.ID, QuoteInput{
		CustomerID: foreign.ID,
		Items:      []finance.LineItem{item(finance.ItemLabor, "x", "1", "1")},
	})
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.quotes().Create(f.ctx, f.company.ID, f.owner.ID, QuoteInput{
		Items: []finance.LineItem{item(finance.ItemLabor, "x", "1", "1")},
	})
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)
}

func TestQuoteIsInvisibleToOtherCompanies(t *testing.T) {
	f := newFixture(t)
	q := f.draftQuote(t)
	other := f.user(t, "other@example.com")
	otherCompany, _ := f.tenant(t, other.ID, "Other Co")

	_, err := f.quotes().Get(f.ctx, otherCompany.ID, q.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.quotes().ReplaceItems(f.ctx, otherCompany.ID, q.ID, nil)
	assert.True(t, apperr.IsNotFound(err))

	list, err := f.quotes().List(f.ctx, otherCompany.ID, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReplaceQuoteItemsReplacesAll(t *testing.T) {
	f := newFixture(t)
	q := f.draftQuote(t)

	got, err := f.quotes().ReplaceItems(f.ctx, f.company.ID, q.ID, []finance.LineItem{
		item(finance.ItemMaterial, "Tile", "10", "12.5"),
	})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Tile", got.Items[0].Description)
	assertDec(t, "125", got.Subtotal)
	assertDec(t, "12.5", got.DiscountAmount)
	assertDec(t, "22.5", got.TaxAmount)
	assertDec(t, "135", got.Total)

	var stored int64
	require.NoError(t, f.db.Model(&model.QuoteItem{}).Where("quote_id = ?", q.ID).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)
}

func TestReplaceQuoteItemsValidationLeavesQuoteUnchanged(t *testing.T) {
	f := newFixture(t)
	q := f.draftQuote(t)

	_, err := f.quotes().ReplaceItems(f.ctx, f.company.ID, q.ID, []finance.LineItem{
		item(finance.ItemMaterial, "Tile", "0", "12.5"),
	})
	_, ok := apperr.AsValidation(err)
	require.True(t, ok)

	got, err := f.quotes().Get(f.ctx, f.company.ID, q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assertDec(t, "1080", got.Total)
}

func TestUpdateQuoteRates(t *testing.T) {
	f := newFixture(t)
	q := f.draftQuote(t)

	got, err := f.quotes().UpdateRates(f.ctx, f.company.ID, q.ID, dec("0"), dec("5"))
	require.NoError(t, err)
	assertDec(t, "0", got.DiscountAmount)
	assertDec(t, "50", got.TaxAmount)
	assertDec(t, "1050", got.Total)

	_, err = f.quotes().UpdateRates(f.ctx, f.company.ID, q.ID, dec("120"), dec("5"))
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)
}

func TestQuoteStatusTransitions(t *testing.T) {
	f := newFixture(t)
	q := f.draftQuote(t)
	quotes := f.quotes()

	_, err := quotes.ChangeStatus(f.ctx, f.company.ID, q.ID, f.owner.ID, model.QuoteRejected)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	got, err := quotes.ChangeStatus(f.ctx, f.company.ID, q.ID, f.owner.ID, model.QuoteSent)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteSent, got.Status)

	// sent quotes stay editable
	_, err = quotes.UpdateRates(f.ctx, f.company.ID, q.ID, dec("10"), dec("10"))
	require.NoError(t, err)

	got, err = quotes.ChangeStatus(f.ctx, f.company.ID, q.ID, f.owner.ID, model.QuoteApproved)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteApproved, got.Status)

	_, err = quotes.ChangeStatus(f.ctx, f.company.ID, q.ID, f.owner.ID, model.QuoteDraft)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = quotes.ChangeStatus(f.ctx, f.company.ID, q.ID, f.owner.ID, model.QuoteStatus("archived"))
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)

	assert.Equal(t, []string{
		"company.1.quote.created",
		"company.1.quote.sent",
		"company.1.quote.approved",
	}, f.pub.Subjects())
}

func TestApprovedQuoteIsImmutable(t *testing.T) {
	f := newFixture(t)
	q := f.draftQuote(t)

	_, err := f.quotes().ChangeStatus(f.ctx, f.company.ID, q.ID, f.owner.ID, model.QuoteApproved)
	require.NoError(t, err)

	_, err = f.quotes().ReplaceItems(f.ctx, f.company.ID, q.ID, []finance.LineItem{item(finance.ItemLabor, "x", "1", "1")})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.quotes().UpdateRates(f.ctx, f.company.ID, q.ID, dec("0"), dec("0"))
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	got, err := f.quotes().Get(f.ctx, f.company.ID, q.ID)
	require.NoError(t, err)
	assertDec(t, "1080", got.Total)
}

func TestQuoteWithoutItemsCannotBeSent(t *testing.T) {
	f := newFixture(t)
	q, err := f.quotes().Create(f.ctx, f.company.ID, f.owner.ID, QuoteInput{CustomerID: f.customer.ID})
	require.NoError(t, err)
	assert.True(t, q.Total.IsZero())

	_, err = f.quotes().ChangeStatus(f.ctx, f.company.ID, q.ID, f.owner.ID, model.QuoteSent)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestListQuotesByStatus(t *testing.T) {
	f := newFixture(t)
	first := f.draftQuote(t)
	f.draftQuote(t)

	_, err := f.quotes().ChangeStatus(f.ctx, f.company.ID, first.ID, f.owner.ID, model.QuoteSent)
	require.NoError(t, err)

	all, err := f.quotes().List(f.ctx, f.company.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sent, err := f.quotes().List(f.ctx, f.company.ID, model.QuoteSent)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, first.ID, sent[0].ID)
}
