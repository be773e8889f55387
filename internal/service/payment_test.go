package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
	"github.com/xsidious/constructionmanagment-sub000/internal/finance"
	"github.com/xsidious/constructionmanagment-sub000/internal/model"
)

func TestPaymentsReduceBalance(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "500")
	payments := f.payments()

	_, bal, err := payments.Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("200"), Method: model.PaymentBankTransfer})
	require.NoError(t, err)
	assertDec(t, "300", bal.Remaining)

	_, bal, err = payments.Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("150"), Method: model.PaymentCheck, Reference: "chk-1042"})
	require.NoError(t, err)
	assertDec(t, "350", bal.TotalPaid)
	assertDec(t, "150", bal.Remaining)
	assert.Equal(t, model.InvoiceSent, bal.Status)

	got, err := payments.Balance(f.ctx, f.company.ID, inv.ID)
	require.NoError(t, err)
	assertDec(t, "500", got.Total)
	assertDec(t, "350", got.TotalPaid)
	assertDec(t, "150", got.Remaining)

	list, err := payments.List(f.ctx, f.company.ID, inv.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assertDec(t, "200", list[0].Amount)
	assert.Equal(t, "chk-1042", list[1].Reference)
}

func TestOverpaymentIsRejected(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "500")

	_, _, err := f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("450")})
	require.NoError(t, err)

	_, _, err = f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("50.01")})
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "amount", ve.Causes[0].Field)

	bal, err := f.payments().Balance(f.ctx, f.company.ID, inv.ID)
	require.NoError(t, err)
	assertDec(t, "50", bal.Remaining)
}

func TestSettlingPaymentMarksInvoicePaid(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "99.99")

	_, bal, err := f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("99.99"), Method: model.PaymentCard})
	require.NoError(t, err)
	assert.True(t, bal.Settled())
	assert.Equal(t, model.InvoicePaid, bal.Status)

	got, err := f.invoices().Get(f.ctx, f.company.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, got.Status)
	assert.NotNil(t, got.PaidAt)

	_, _, err = f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("0.01")})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	subjects := f.pub.Subjects()
	assert.Contains(t, subjects, "company.1.payment.recorded")
	assert.Equal(t, "company.1.invoice.paid", subjects[len(subjects)-1])
}

func TestDraftInvoiceRejectsPayments(t *testing.T) {
	f := newFixture(t)
	inv, err := f.invoices().Create(f.ctx, f.company.ID, f.owner.ID, InvoiceInput{
		CustomerID: f.customer.ID,
		Items:      []finance.LineItem{item(finance.ItemLabor, "Work", "1", "100")},
	})
	require.NoError(t, err)

	_, _, err = f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("10")})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestPaymentInputValidation(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100")

	for _, in := range []PaymentInput{
		{Amount: dec("0")},
		{Amount: dec("-1")},
		{Amount: dec("1.001")},
		{Amount: dec("10"), Method: model.PaymentMethod("barter")},
	} {
		_, _, err := f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, in)
		_, ok := apperr.AsValidation(err)
		assert.True(t, ok, "input %+v: %v", in, err)
	}
}

func TestPaymentDateCannotBeInTheFuture(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100")

	tomorrow := time.Now().Add(24 * time.Hour)
	_, _, err := f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("10"), PaidAt: &tomorrow})
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "paid_at", ve.Causes[0].Field)

	list, err := f.payments().List(f.ctx, f.company.ID, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	lastWeek := time.Now().Add(-7 * 24 * time.Hour)
	payment, _, err := f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("10"), PaidAt: &lastWeek})
	require.NoError(t, err)
	assert.WithinDuration(t, lastWeek, payment.PaidAt, time.Second)
}

func TestPaymentsAreCompanyScoped(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100")
	other := f.user(t, "other@example.com")
	otherCompany, _ := f.tenant(t, other.ID, "Other Co")

	_, _, err := f.payments().Record(f.ctx, otherCompany.ID, inv.ID, other.ID, PaymentInput{Amount: dec("10")})
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.payments().List(f.ctx, otherCompany.ID, inv.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.payments().Balance(f.ctx, otherCompany.ID, inv.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestConcurrentPaymentsNeverOverpay(t *testing.T) {
	f := newFixture(t)
	inv := f.sentInvoice(t, "100")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = f.payments().Record(f.ctx, f.company.ID, inv.ID, f.owner.ID, PaymentInput{Amount: dec("30")})
		}()
	}
	wg.Wait()

	bal, err := f.payments().Balance(f.ctx, f.company.ID, inv.ID)
	require.NoError(t, err)
	assertDec(t, "90", bal.TotalPaid)
	assertDec(t, "10", bal.Remaining)
}
