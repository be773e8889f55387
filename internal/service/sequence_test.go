package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xsidious/constructionmanagment-sub000/internal/model"
	"github.com/xsidious/constructionmanagment-sub000/internal/testutil"
)

func nextNumber(t *testing.T, db *gorm.DB, companyID uint, kind model.DocumentKind) string {
	t.Helper()
	var number string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = NextDocumentNumber(tx, companyID, kind)
		return err
	})
	require.NoError(t, err)
	return number
}

func TestNextDocumentNumberIsPerCompanyAndKind(t *testing.T) {
	db := testutil.NewDB(t)

	assert.Equal(t, "QT-000001", nextNumber(t, db, 1, model.DocumentQuote))
	assert.Equal(t, "QT-000002", nextNumber(t, db, 1, model.DocumentQuote))
	assert.Equal(t, "INV-000001", nextNumber(t, db, 1, model.DocumentInvoice))
	assert.Equal(t, "QT-000001", nextNumber(t, db, 2, model.DocumentQuote))
	assert.Equal(t, "QT-000003", nextNumber(t, db, 1, model.DocumentQuote))
}

func TestNextDocumentNumberRollbackDoesNotConsume(t *testing.T) {
	db := testutil.NewDB(t)

	assert.Equal(t, "INV-000001", nextNumber(t, db, 1, model.DocumentInvoice))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := NextDocumentNumber(tx, 1, model.DocumentInvoice)
		require.NoError(t, err)
		return errors.New("abort")
	})
	require.Error(t, err)

	assert.Equal(t, "INV-000002", nextNumber(t, db, 1, model.DocumentInvoice))
}

func TestNextDocumentNumberConcurrentCallersGetDistinctNumbers(t *testing.T) {
	db := testutil.NewDB(t)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var number string
			err := db.Transaction(func(tx *gorm.DB) error {
				var err error
				number, err = NextDocumentNumber(tx, 1, model.DocumentQuote)
				return err
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[number] = true
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, workers)
	assert.True(t, numbers["QT-000001"])
	assert.True(t, numbers["QT-000020"])
}
