// Package catalog owns products and every mutation of their stock.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

// Service provides product CRUD, stock adjustment and bulk import
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ProductInput carries product fields for create and update. Nil fields are
// left unchanged on update.
type ProductInput struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Price       *decimal.Decimal   `json:"price"`
	RentPrice   *decimal.Decimal   `json:"rent_price"`
	Images      *domain.StringList `json:"images"`
	Sizes       *domain.StringList `json:"sizes"`
	Colors      *domain.StringList `json:"colors"`
	Category    *string            `json:"category"`
	Barcode     *string            `json:"barcode"`
	InStock     *bool              `json:"in_stock"`
	StockCount  *int               `json:"stock_count"`
}

// ListQuery filters the product listing
type ListQuery struct {
	Category string
	Q        string
	Page     int
	PageSize int
}

// Create validates in and inserts a new product. Stock defaults to 1 and an
// explicit in_stock=false stores zero stock.
func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p := &domain.Product{StockCount: 1}
	if err := applyInput(p, in, true); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, domain.WrapStoreError(err, "create product")
	}
	zap.L().Info("product created",
		zap.Int64("id", p.ID),
		zap.String("name", p.Name),
		zap.Int("stock", p.StockCount))
	return p, nil
}

// Update applies the non-nil fields of in. A stock change is recorded as an
// admin_edit movement in the same transaction.
func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	var p domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return domain.WrapStoreError(err, "product")
		}
		before := p.StockCount
		if err := applyInput(&p, in, false); err != nil {
			return err
		}
		p.UpdatedAt = time.Now()
		updates := map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"rent_price":  p.RentPrice,
			"images":      p.Images,
			"sizes":       p.Sizes,
			"colors":      p.Colors,
			"category":    p.Category,
			"barcode":     p.Barcode,
			"stock_count": p.StockCount,
			"in_stock":    p.InStock,
			"updated_at":  p.UpdatedAt,
		}
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return domain.WrapStoreError(err, "update product")
		}
		if p.StockCount != before {
			return recordMovement(tx, p.ID, domain.ReasonAdminEdit, before, p.StockCount, "admin")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func applyInput(p *domain.Product, in ProductInput, create bool) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if p.Name == "" {
		return domain.Invalidf("name is required")
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	} else if create {
		return domain.Invalidf("price is required")
	}
	if in.RentPrice != nil {
		p.RentPrice = *in.RentPrice
	} else if create {
		return domain.Invalidf("rent_price is required")
	}
	if p.Price.IsNegative() || p.RentPrice.IsNegative() {
		return domain.Invalidf("prices must not be negative")
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.Sizes != nil {
		p.Sizes = *in.Sizes
	}
	if in.Colors != nil {
		p.Colors = *in.Colors
	}
	if in.Category != nil || create {
		raw := ""
		if in.Category != nil {
			raw = *in.Category
		}
		category, ok := domain.NormalizeCategory(raw)
		if !ok {
			return domain.Invalidf("category must be one of %s", strings.Join(domain.Categories, ", "))
		}
		p.Category = category
	}
	if in.Barcode != nil {
		p.Barcode = domain.NormalizeBarcode(*in.Barcode)
	}
	if in.StockCount != nil {
		if *in.StockCount < 0 {
			return domain.Invalidf("stock_count must not be negative")
		}
		p.StockCount = *in.StockCount
	}
	if in.InStock != nil && !*in.InStock {
		p.StockCount = 0
	}
	p.SyncAvailability()
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, domain.WrapStoreError(err, "product")
	}
	return &p, nil
}

func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, domain.Invalidf("barcode is required")
	}
	var p domain.Product
	if err := s.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error; err != nil {
		return nil, domain.WrapStoreError(err, "product")
	}
	return &p, nil
}

// List returns products newest first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Product, int64, error) {
	db := s.db.WithContext(ctx).Model(&domain.Product{})
	if c := strings.TrimSpace(q.Category); c != "" {
		// unknown categories match nothing
		c, _ = domain.NormalizeCategory(c)
		db = db.Where("category = ?", c)
	}
	if name := strings.TrimSpace(q.Q); name != "" {
		if strings.EqualFold(db.Name(), "postgres") { //nolint:staticcheck
			db = db.Where("name ILIKE ?", "%"+name+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, domain.WrapStoreError(err, "count products")
	}
	if q.Page > 0 && q.PageSize > 0 {
		db = db.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize)
	}
	var rows []domain.Product
	if err := db.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, domain.WrapStoreError(err, "list products")
	}
	return rows, total, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return domain.WrapStoreError(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("product %d", id)
	}
	zap.L().Info("product deleted", zap.Int64("id", id))
	return nil
}

// Movements returns the stock history of a product, newest first.
func (s *Service) Movements(ctx context.Context, productID int64) ([]domain.StockMovement, error) {
	var rows []domain.StockMovement
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, domain.WrapStoreError(err, "list stock movements")
	}
	return rows, nil
}

// Reconcile repairs rows whose in_stock flag disagrees with stock_count and
// returns the number of rows fixed.
func (s *Service) Reconcile(ctx context.Context) (int64, error) {
	db := s.db.WithContext(ctx)
	now := time.Now()
	up := db.Model(&domain.Product{}).
		Where("stock_count > 0 AND in_stock = ?", false).
		Updates(map[string]interface{}{"in_stock": true, "updated_at": now})
	if up.Error != nil {
		return 0, domain.WrapStoreError(up.Error, "reconcile products")
	}
	down := db.Model(&domain.Product{}).
		Where("stock_count <= 0 AND (in_stock = ? OR stock_count < 0)", true).
		Updates(map[string]interface{}{"in_stock": false, "stock_count": 0, "updated_at": now})
	if down.Error != nil {
		return up.RowsAffected, domain.WrapStoreError(down.Error, "reconcile products")
	}
	return up.RowsAffected + down.RowsAffected, nil
}

// PurgeMovements deletes movements created before the cutoff.
func (s *Service) PurgeMovements(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&domain.StockMovement{})
	if res.Error != nil {
		return 0, domain.WrapStoreError(res.Error, "purge stock movements")
	}
	return res.RowsAffected, nil
}
