package order

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/domain"
	"github.com/talkincode/tuxedoshop/internal/domain/dbtest"
)

func seed(t *testing.T, db *gorm.DB, name string, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:       name,
		Price:      decimal.RequireFromString("599.99"),
		RentPrice:  decimal.RequireFromString("149.99"),
		StockCount: stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.StockCount
}

func TestCreateGuestOrderDecrementsStock(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	a := seed(t, db, "Classic Black", 2)
	b := seed(t, db, "Vintage Velvet", 0)

	o, err := svc.Create(context.Background(), CreateInput{
		ShippingAddress: "1 Main St",
		Items: []ItemInput{
			{ProductID: a.ID, Price: decimal.RequireFromString("149.99"), Type: "rent", Size: "40", Color: "Black"},
			{ProductID: a.ID, Price: decimal.RequireFromString("599.99"), Type: "buy", Quantity: 5},
			{ProductID: b.ID, Price: decimal.RequireFromString("10.02"), Type: "buy"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "rent", o.Type)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("760.00")), o.Total.String())
	require.Len(t, o.Items, 3)
	for _, item := range o.Items {
		assert.Equal(t, 1, item.Quantity)
	}

	assert.Equal(t, 0, stockOf(t, db, a.ID))
	assert.Equal(t, 0, stockOf(t, db, b.ID))

	var c domain.Customer
	require.NoError(t, db.First(&c, o.CustomerID).Error)
	assert.True(t, strings.HasPrefix(c.Email, "guest-"))

	var moves []domain.StockMovement
	require.NoError(t, db.Where("reason = ?", domain.ReasonOrder).Find(&moves).Error)
	assert.Len(t, moves, 2)
}

func TestCreateOrderWithCustomerDetails(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seed(t, db, "Modern Navy", 3)

	o, err := svc.Create(context.Background(), CreateInput{
		Name:  "Jane",
		Email: "jane@example.com",
		Items: []ItemInput{{ProductID: p.ID, Price: decimal.RequireFromString("169.99")}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderTypeBuy, o.Type)

	var c domain.Customer
	require.NoError(t, db.First(&c, o.CustomerID).Error)
	assert.Equal(t, "jane@example.com", c.Email)

	rows, total, err := svc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Items, 1)
	require.NotNil(t, rows[0].Customer)
	assert.Equal(t, "Jane", rows[0].Customer.Name)
}

func TestCreateOrderRollsBackOnUnknownProduct(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)
	p := seed(t, db, "Classic Black", 2)

	_, err := svc.Create(context.Background(), CreateInput{
		Items: []ItemInput{
			{ProductID: p.ID, Price: decimal.NewFromInt(1)},
			{ProductID: 987654321, Price: decimal.NewFromInt(1)},
		},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	assert.Equal(t, 2, stockOf(t, db, p.ID))
	var orders, customers, moves int64
	db.Model(&domain.Order{}).Count(&orders)
	db.Model(&domain.Customer{}).Count(&customers)
	db.Model(&domain.StockMovement{}).Count(&moves)
	assert.Zero(t, orders)
	assert.Zero(t, customers)
	assert.Zero(t, moves)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := NewService(dbtest.Open(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.Create(ctx, CreateInput{Items: []ItemInput{{ProductID: 1, Type: "lease"}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.Create(ctx, CreateInput{Items: []ItemInput{{ProductID: 1, Price: decimal.NewFromInt(-1)}}})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
