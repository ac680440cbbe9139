// Package order places checkout orders.
package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/catalog"
	"github.com/talkincode/tuxedoshop/internal/customer"
	"github.com/talkincode/tuxedoshop/internal/domain"
)

// ItemInput is one cart line. Quantity is accepted for compatibility with
// older clients but every line counts as a single unit.
type ItemInput struct {
	ProductID int64           `json:"product_id,string" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Type      string          `json:"type" validate:"omitempty,oneof=rent buy"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
}

// CreateInput is a checkout request
type CreateInput struct {
	Items           []ItemInput `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string      `json:"shipping_address"`
	Name            string      `json:"name"`
	Email           string      `json:"email" validate:"omitempty,email"`
	Phone           string      `json:"phone"`
}

// Service creates orders
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create stores the order, its items and one unit decrement per item in a
// single transaction. An unknown product aborts the whole order.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	for i, item := range in.Items {
		if item.Price.IsNegative() {
			return nil, domain.Invalidf("items[%d].price must not be negative", i)
		}
	}

	var o *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			c   *domain.Customer
			err error
		)
		if strings.TrimSpace(in.Email) != "" {
			c, err = customer.Resolve(tx, in.Name, in.Email, in.Phone)
		} else {
			c, err = customer.Guest(tx)
		}
		if err != nil {
			return err
		}

		o = &domain.Order{
			ID:              domain.NextID(),
			CustomerID:      c.ID,
			Total:           decimal.Zero,
			Type:            orderType(in.Items),
			ShippingAddress: strings.TrimSpace(in.ShippingAddress),
			Status:          domain.OrderPending,
		}
		ref := fmt.Sprintf("order:%d", o.ID)
		for i, item := range in.Items {
			if _, err := catalog.DecrementTx(tx, catalog.ByID(item.ProductID), 1, domain.ReasonOrder, ref); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.Invalidf("items[%d]: product %d does not exist", i, item.ProductID)
				}
				return err
			}
			o.Total = o.Total.Add(item.Price)
			o.Items = append(o.Items, domain.OrderItem{
				ProductID: item.ProductID,
				Quantity:  1,
				Price:     item.Price,
				Type:      item.Type,
				Size:      item.Size,
				Color:     item.Color,
			})
		}
		if err := tx.Create(o).Error; err != nil {
			return domain.WrapStoreError(err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order created",
		zap.Int64("id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("type", o.Type))
	return o, nil
}

func orderType(items []ItemInput) string {
	if len(items) > 0 && items[0].Type != "" {
		return items[0].Type
	}
	return domain.OrderTypeBuy
}

// List returns orders newest first with items and customer.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error) {
	db := s.db.WithContext(ctx).Model(&domain.Order{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, domain.WrapStoreError(err, "count orders")
	}
	if page > 0 && pageSize > 0 {
		db = db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
	var rows []domain.Order
	err := db.Preload("Items").Preload("Customer").
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, domain.WrapStoreError(err, "list orders")
	}
	return rows, total, nil
}
