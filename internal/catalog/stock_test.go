package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/domain"
	"github.com/talkincode/tuxedoshop/internal/domain/dbtest"
)

func seedProduct(t *testing.T, db *gorm.DB, barcode string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:       "Classic Black Tuxedo",
		Price:      decimal.RequireFromString("599.99"),
		RentPrice:  decimal.RequireFromString("149.99"),
		Category:   domain.CategoryClassic,
		Barcode:    domain.NormalizeBarcode(barcode),
		StockCount: stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func reload(t *testing.T, db *gorm.DB, id int64) domain.Product {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p
}

func TestDecrementFloorClamp(t *testing.T) {
	cases := []struct {
		stock, qty, want, applied int
	}{
		{stock: 10, qty: 1, want: 9, applied: 1},
		{stock: 5, qty: 5, want: 0, applied: 5},
		{stock: 3, qty: 7, want: 0, applied: 3},
		{stock: 0, qty: 2, want: 0, applied: 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(fmt.Sprintf("stock_%d_qty_%d", tc.stock, tc.qty), func(t *testing.T) {
			db := dbtest.Open(t)
			svc := NewService(db)
			p := seedProduct(t, db, "", tc.stock)

			change, err := svc.Decrement(context.Background(), ByID(p.ID), tc.qty, domain.ReasonScanOut, "test")
			require.NoError(t, err)
			assert.Equal(t, tc.stock, change.PreviousStock)
			assert.Equal(t, tc.want, change.CurrentStock)
			assert.Equal(t, tc.applied, change.Applied)
			assert.Equal(t, tc.want > 0, change.InStock)

			got := reload(t, db, p.ID)
			assert.Equal(t, tc.want, got.StockCount)
			assert.Equal(t, tc.want > 0, got.InStock)
		})
	}
}

func TestScanOutRecordsMovement(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seedProduct(t, db, "TUX-001", 4)

	change, err := svc.ScanOut(context.Background(), "  TUX-001 ", 3)
	require.NoError(t, err)
	assert.Equal(t, "TUX-001", change.Barcode)
	assert.Equal(t, 1, change.CurrentStock)

	moves, err := svc.Movements(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, domain.ReasonScanOut, moves[0].Reason)
	assert.Equal(t, -3, moves[0].Change)
	assert.Equal(t, 4, moves[0].Before)
	assert.Equal(t, 1, moves[0].After)
	assert.Equal(t, "barcode:TUX-001", moves[0].Reference)
}

func TestScanOutRejectsWithoutMutation(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seedProduct(t, db, "TUX-002", 2)
	ctx := context.Background()

	_, err := svc.ScanOut(ctx, "UNKNOWN", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.ScanOut(ctx, "TUX-002", 0)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.ScanOut(ctx, "TUX-002", -4)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.ScanOut(ctx, " ", 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	assert.Equal(t, 2, reload(t, db, p.ID).StockCount)
	var moves int64
	db.Model(&domain.StockMovement{}).Count(&moves)
	assert.Zero(t, moves)
}

func TestConcurrentScanOutAtStockOne(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seedProduct(t, db, "LAST-ONE", 1)

	const workers = 8
	var wg sync.WaitGroup
	applied := make([]int, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			change, err := svc.ScanOut(context.Background(), "LAST-ONE", 1)
			errs[i] = err
			if err == nil {
				applied[i] = change.Applied
			}
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range applied {
		require.NoError(t, errs[i])
		total += applied[i]
	}
	assert.Equal(t, 1, total)

	got := reload(t, db, p.ID)
	assert.Equal(t, 0, got.StockCount)
	assert.False(t, got.InStock)
}

// interfereWithStock runs change inside the decrement's transaction just
// before each conditional update on products, as a competing writer would.
func interfereWithStock(t *testing.T, db *gorm.DB, change func(tx *gorm.DB, call int)) *int {
	t.Helper()
	calls := 0
	err := db.Callback().Update().Before("gorm:update").Register("test:competing_writer", func(tx *gorm.DB) {
		if tx.Statement.Table != "products" {
			return
		}
		calls++
		change(tx.Session(&gorm.Session{NewDB: true}), calls)
	})
	require.NoError(t, err)
	return &calls
}

func TestDecrementRereadsAfterLostRace(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seedProduct(t, db, "RACE-1", 5)

	calls := interfereWithStock(t, db, func(tx *gorm.DB, call int) {
		if call == 1 {
			require.NoError(t, tx.Exec("UPDATE products SET stock_count = ? WHERE id = ?", 2, p.ID).Error)
		}
	})

	change, err := svc.ScanOut(context.Background(), "RACE-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, 2, change.PreviousStock)
	assert.Equal(t, 1, change.CurrentStock)
	assert.Equal(t, 1, change.Applied)
	assert.Equal(t, 1, reload(t, db, p.ID).StockCount)

	var moves []domain.StockMovement
	require.NoError(t, db.Where("product_id = ?", p.ID).Find(&moves).Error)
	require.Len(t, moves, 1)
	assert.Equal(t, 2, moves[0].Before)
	assert.Equal(t, 1, moves[0].After)
}

func TestDecrementClampsAfterLostRace(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seedProduct(t, db, "RACE-2", 5)

	interfereWithStock(t, db, func(tx *gorm.DB, call int) {
		if call == 1 {
			require.NoError(t, tx.Exec("UPDATE products SET stock_count = ? WHERE id = ?", 1, p.ID).Error)
		}
	})

	change, err := svc.ScanOut(context.Background(), "RACE-2", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, change.PreviousStock)
	assert.Equal(t, 0, change.CurrentStock)
	assert.Equal(t, 1, change.Applied)
	got := reload(t, db, p.ID)
	assert.Equal(t, 0, got.StockCount)
	assert.False(t, got.InStock)
}

func TestDecrementGivesUpWhenStockKeepsChanging(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seedProduct(t, db, "RACE-3", 5)

	calls := interfereWithStock(t, db, func(tx *gorm.DB, _ int) {
		require.NoError(t, tx.Exec("UPDATE products SET stock_count = stock_count + 1 WHERE id = ?", p.ID).Error)
	})

	_, err := svc.ScanOut(context.Background(), "RACE-3", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Equal(t, maxDecrementAttempts, *calls)

	// the transaction rolled back, competing writes included
	assert.Equal(t, 5, reload(t, db, p.ID).StockCount)
	var moves int64
	require.NoError(t, db.Model(&domain.StockMovement{}).Count(&moves).Error)
	assert.Zero(t, moves)
}

func TestParseQuantity(t *testing.T) {
	n, err := ParseQuantity("")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ParseQuantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, raw := range []string{"0", "-1", "1.5", "two"} {
		_, err := ParseQuantity(raw)
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument), raw)
	}
}
