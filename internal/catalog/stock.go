package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

// maxDecrementAttempts bounds the optimistic retry loop of a decrement.
const maxDecrementAttempts = 8

// Locator identifies a product by id or by barcode
type Locator struct {
	ID      int64
	Barcode string
}

func ByID(id int64) Locator {
	return Locator{ID: id}
}

func ByBarcode(barcode string) Locator {
	return Locator{Barcode: strings.TrimSpace(barcode)}
}

func (l Locator) String() string {
	if l.Barcode != "" {
		return "barcode " + l.Barcode
	}
	return fmt.Sprintf("id %d", l.ID)
}

// StockChange reports the outcome of a decrement
type StockChange struct {
	ProductID     int64  `json:"id,string"`
	Name          string `json:"name"`
	Barcode       string `json:"barcode"`
	PreviousStock int    `json:"previous_stock"`
	CurrentStock  int    `json:"current_stock"`
	InStock       bool   `json:"in_stock"`
	Applied       int    `json:"applied"`
}

// ParseQuantity reads a requested quantity. Blank means 1; anything that is
// not a positive integer is rejected.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n <= 0 {
		return 0, domain.Invalidf("quantity must be a positive integer")
	}
	return int(n), nil
}

// ScanOut decrements the product carrying barcode by qty.
func (s *Service) ScanOut(ctx context.Context, barcode string, qty int) (*StockChange, error) {
	loc := ByBarcode(barcode)
	if loc.Barcode == "" {
		return nil, domain.Invalidf("barcode is required")
	}
	change, err := s.Decrement(ctx, loc, qty, domain.ReasonScanOut, "barcode:"+loc.Barcode)
	if err != nil {
		return nil, err
	}
	zap.L().Info("product scanned out",
		zap.String("barcode", loc.Barcode),
		zap.Int("requested", qty),
		zap.Int("applied", change.Applied),
		zap.Int("stock", change.CurrentStock))
	return change, nil
}

// Decrement lowers stock by qty in its own transaction, clamping at zero.
func (s *Service) Decrement(ctx context.Context, loc Locator, qty int, reason, ref string) (*StockChange, error) {
	if qty <= 0 {
		return nil, domain.Invalidf("quantity must be a positive integer")
	}
	var change *StockChange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		change, err = DecrementTx(tx, loc, qty, reason, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// DecrementTx performs the decrement inside tx so callers can combine it with
// other writes. The update is conditional on the stock value that was read;
// a lost race re-reads and tries again.
func DecrementTx(tx *gorm.DB, loc Locator, qty int, reason, ref string) (*StockChange, error) {
	if qty <= 0 {
		return nil, domain.Invalidf("quantity must be a positive integer")
	}
	for attempt := 1; attempt <= maxDecrementAttempts; attempt++ {
		p, err := findProduct(tx, loc)
		if err != nil {
			return nil, err
		}

		before := p.StockCount
		after := before - qty
		if after < 0 {
			after = 0
		}
		change := &StockChange{
			ProductID:     p.ID,
			Name:          p.Name,
			Barcode:       p.BarcodeValue(),
			PreviousStock: before,
			CurrentStock:  after,
			InStock:       after > 0,
			Applied:       before - after,
		}
		if change.Applied == 0 {
			return change, nil
		}

		res := tx.Model(&domain.Product{}).
			Where("id = ? AND stock_count = ?", p.ID, before).
			Updates(map[string]interface{}{
				"stock_count": after,
				"in_stock":    after > 0,
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return nil, domain.WrapStoreError(res.Error, "decrement stock")
		}
		if res.RowsAffected == 0 {
			zap.L().Debug("stock changed concurrently, retrying",
				zap.Int64("product", p.ID),
				zap.Int("attempt", attempt))
			continue
		}
		if err := recordMovement(tx, p.ID, reason, before, after, ref); err != nil {
			return nil, err
		}
		return change, nil
	}
	return nil, errors.Wrapf(domain.ErrPersistence, "stock of %s kept changing, gave up after %d attempts", loc, maxDecrementAttempts)
}

func findProduct(tx *gorm.DB, loc Locator) (*domain.Product, error) {
	var p domain.Product
	q := tx.Model(&domain.Product{})
	switch {
	case loc.Barcode != "":
		q = q.Where("barcode = ?", loc.Barcode)
	case loc.ID != 0:
		q = q.Where("id = ?", loc.ID)
	default:
		return nil, domain.Invalidf("product id or barcode is required")
	}
	if err := q.First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("product with %s", loc)
		}
		return nil, domain.WrapStoreError(err, "find product")
	}
	return &p, nil
}

func recordMovement(tx *gorm.DB, productID int64, reason string, before, after int, ref string) error {
	m := &domain.StockMovement{
		ProductID: productID,
		Reason:    reason,
		Change:    after - before,
		Before:    before,
		After:     after,
		Reference: ref,
	}
	if err := tx.Create(m).Error; err != nil {
		return domain.WrapStoreError(err, "record stock movement")
	}
	return nil
}
