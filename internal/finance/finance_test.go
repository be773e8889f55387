package finance

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsidious/constructionmanagment-sub000/internal/apperr"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestComputeTotalsDiscountBeforeTax(t *testing.T) {
	items := []LineItem{
		{Type: ItemLabor, Description: "Framing", Quantity: d("40"), UnitPrice: d("20")},
		{Type: ItemMaterial, Description: "Lumber", Quantity: d("4"), UnitPrice: d("50")},
	}

	totals, err := ComputeTotals(items, d("10"), d("20"))
	require.NoError(t, err)

	assertDecimal(t, "1000", totals.Subtotal)
	assertDecimal(t, "100", totals.DiscountAmount)
	assertDecimal(t, "180", totals.TaxAmount)
	assertDecimal(t, "1080", totals.Total)
}

func TestComputeTotalsIsOrderIndependent(t *testing.T) {
	items := []LineItem{
		{Type: ItemLabor, Description: "a", Quantity: d("1.5"), UnitPrice: d("33.33")},
		{Type: ItemMaterial, Description: "b", Quantity: d("3"), UnitPrice: d("0.10")},
		{Type: ItemMaterial, Description: "c", Quantity: d("7.25"), UnitPrice: d("19.99")},
		{Type: ItemLabor, Description: "d", Quantity: d("0.333"), UnitPrice: d("120")},
		{Type: ItemMaterial, Description: "e", Quantity: d("1000"), UnitPrice: d("0.01")},
	}

	want, err := ComputeTotals(items, d("12.5"), d("8.25"))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]LineItem(nil), items...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := ComputeTotals(shuffled, d("12.5"), d("8.25"))
		require.NoError(t, err)
		assert.True(t, want.Subtotal.Equal(got.Subtotal))
		assert.True(t, want.Total.Equal(got.Total))
	}
}

func TestComputeTotalsIdentityHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var items []LineItem
		for n := rng.Intn(8) + 1; n > 0; n-- {
			items = append(items, LineItem{
				Type:        ItemMaterial,
				Description: "item",
				Quantity:    decimal.New(rng.Int63n(100000)+1, -3),
				UnitPrice:   decimal.New(rng.Int63n(1000000)+1, -2),
			})
		}
		discount := decimal.New(rng.Int63n(10001), -2)
		tax := decimal.New(rng.Int63n(3001), -2)

		totals, err := ComputeTotals(items, discount, tax)
		require.NoError(t, err)
		assert.True(t, totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount).Equal(totals.Total))
		assert.False(t, totals.Total.IsNegative())
	}
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	items := []LineItem{{Type: ItemLabor, Description: "x", Quantity: d("3"), UnitPrice: d("33.335")}}

	first, err := ComputeTotals(items, d("5"), d("7"))
	require.NoError(t, err)
	second, err := ComputeTotals(items, d("5"), d("7"))
	require.NoError(t, err)

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
}

func TestComputeTotalsRoundsHalfAwayFromZero(t *testing.T) {
	// 3 x 33.335 = 100.005 -> 100.01
	items := []LineItem{{Type: ItemLabor, Description: "x", Quantity: d("3"), UnitPrice: d("33.335")}}

	totals, err := ComputeTotals(items, d("0"), d("0"))
	require.NoError(t, err)
	assertDecimal(t, "100.01", totals.Subtotal)
	assertDecimal(t, "100.01", totals.Total)
}

func TestComputeTotalsAvoidsBinaryFloatDrift(t *testing.T) {
	var items []LineItem
	for i := 0; i < 1000; i++ {
		items = append(items, LineItem{Type: ItemMaterial, Description: "screw", Quantity: d("1"), UnitPrice: d("0.10")})
	}

	totals, err := ComputeTotals(items, d("0"), d("0"))
	require.NoError(t, err)
	assertDecimal(t, "100", totals.Subtotal)
}

func TestComputeTotalsRejectsNonPositiveQuantityAndPrice(t *testing.T) {
	tests := []struct {
		name  string
		item  LineItem
		field string
	}{
		{"zero quantity", LineItem{Type: ItemLabor, Description: "x", Quantity: d("0"), UnitPrice: d("10")}, "items[0].quantity"},
		{"negative quantity", LineItem{Type: ItemLabor, Description: "x", Quantity: d("-1"), UnitPrice: d("10")}, "items[0].quantity"},
		{"zero price", LineItem{Type: ItemLabor, Description: "x", Quantity: d("1"), UnitPrice: d("0")}, "items[0].unit_price"},
		{"negative price", LineItem{Type: ItemLabor, Description: "x", Quantity: d("1"), UnitPrice: d("-5")}, "items[0].unit_price"},
		{"unknown type", LineItem{Type: "equipment", Description: "x", Quantity: d("1"), UnitPrice: d("5")}, "items[0].type"},
		{"missing description", LineItem{Type: ItemLabor, Quantity: d("1"), UnitPrice: d("5")}, "items[0].description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotals([]LineItem{tt.item}, d("0"), d("0"))
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "expected a validation error, got %v", err)
			require.Len(t, ve.Causes, 1)
			assert.Equal(t, tt.field, ve.Causes[0].Field)
		})
	}
}

func TestComputeTotalsReportsEveryFailingField(t *testing.T) {
	items := []LineItem{
		{Type: ItemLabor, Description: "ok", Quantity: d("1"), UnitPrice: d("1")},
		{Type: ItemLabor, Description: "bad", Quantity: d("0"), UnitPrice: d("0")},
	}

	_, err := ComputeTotals(items, d("101"), d("-1"))
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)

	var fields []string
	for _, c := range ve.Causes {
		fields = append(fields, c.Field)
	}
	assert.ElementsMatch(t, []string{"items[1].quantity", "items[1].unit_price", "discount_percent", "tax_percent"}, fields)
}

func TestComputeTotalsEmptyAndFullDiscount(t *testing.T) {
	totals, err := ComputeTotals(nil, d("0"), d("10"))
	require.NoError(t, err)
	assert.True(t, totals.Total.IsZero())

	items := []LineItem{{Type: ItemLabor, Description: "x", Quantity: d("2"), UnitPrice: d("50")}}
	totals, err = ComputeTotals(items, d("100"), d("20"))
	require.NoError(t, err)
	assertDecimal(t, "100", totals.DiscountAmount)
	assertDecimal(t, "0", totals.TaxAmount)
	assertDecimal(t, "0", totals.Total)
}

func TestVerifyDetectsInconsistentTotals(t *testing.T) {
	bad := Totals{Subtotal: d("100"), DiscountAmount: d("10"), TaxAmount: d("18"), Total: d("109")}
	assert.ErrorIs(t, bad.Verify(), apperr.ErrInvariant)

	negative := Totals{Subtotal: d("-10"), DiscountAmount: d("0"), TaxAmount: d("0"), Total: d("-10")}
	assert.ErrorIs(t, negative.Verify(), apperr.ErrInvariant)

	good := Totals{Subtotal: d("100"), DiscountAmount: d("10"), TaxAmount: d("18"), Total: d("108")}
	assert.NoError(t, good.Verify())
}

func TestComputeBalance(t *testing.T) {
	b := ComputeBalance(d("500"), []decimal.Decimal{d("200"), d("150")})
	assertDecimal(t, "350", b.TotalPaid)
	assertDecimal(t, "150", b.Remaining)
	assert.False(t, b.Settled())

	b = ComputeBalance(d("500"), []decimal.Decimal{d("200"), d("300")})
	assert.True(t, b.Settled())

	b = ComputeBalance(d("500"), nil)
	assertDecimal(t, "500", b.Remaining)
}

func TestValidatePayment(t *testing.T) {
	balance := ComputeBalance(d("500"), []decimal.Decimal{d("350")})

	assert.NoError(t, ValidatePayment(d("150"), balance))
	assert.NoError(t, ValidatePayment(d("0.01"), balance))

	for _, amount := range []string{"0", "-5", "150.01", "10.005"} {
		_, ok := apperr.AsValidation(ValidatePayment(d(amount), balance))
		assert.True(t, ok, "amount %s should be rejected", amount)
	}
}

func TestComputeTotalsRejectsExcessPrecision(t *testing.T) {
	items := []LineItem{{Type: ItemLabor, Description: "x", Quantity: d("1.00001"), UnitPrice: d("1.00001")}}
	_, err := ComputeTotals(items, d("10.001"), d("0"))
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)

	var fields []string
	for _, c := range ve.Causes {
		fields = append(fields, c.Field)
	}
	assert.ElementsMatch(t, []string{"items[0].quantity", "items[0].unit_price", "discount_percent"}, fields)
}

func TestComputeTotalsRoundsSubtotalOnce(t *testing.T) {
	items := []LineItem{
		{Type: ItemMaterial, Description: "washer", Quantity: d("0.01"), UnitPrice: d("0.5")},
		{Type: ItemMaterial, Description: "washer", Quantity: d("0.01"), UnitPrice: d("0.5")},
		{Type: ItemMaterial, Description: "washer", Quantity: d("0.01"), UnitPrice: d("0.5")},
	}

	totals, err := ComputeTotals(items, d("0"), d("0"))
	require.NoError(t, err)
	assertDecimal(t, "0.005", items[0].Total())
	assertDecimal(t, "0.02", totals.Subtotal)
}

func TestComputeTotalsSubtotalMatchesExactSumOverManyLines(t *testing.T) {
	rng := rand.New(rand.NewSource(90018))
	var items []LineItem
	exact := decimal.Zero
	for i := 0; i < 500; i++ {
		item := LineItem{
			Type:        ItemLabor,
			Description: "sub-cent",
			Quantity:    decimal.New(rng.Int63n(9999)+1, -4),
			UnitPrice:   decimal.New(rng.Int63n(99999)+1, -4),
		}
		items = append(items, item)
		exact = exact.Add(item.Quantity.Mul(item.UnitPrice))
	}

	totals, err := ComputeTotals(items, d("0"), d("0"))
	require.NoError(t, err)
	assertDecimal(t, exact.Round(MoneyScale).String(), totals.Subtotal)
}
