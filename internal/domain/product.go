package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CategoryClassic = "Classic"
	CategoryModern  = "Modern"
	CategoryVintage = "Vintage"
)

// Categories lists the accepted catalog categories.
var Categories = []string{CategoryClassic, CategoryModern, CategoryVintage}

// NormalizeCategory returns the canonical category name, or Classic when raw
// is blank. ok is false for unknown values.
func NormalizeCategory(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryClassic, true
	}
	for _, c := range Categories {
		if strings.EqualFold(c, raw) {
			return c, true
		}
	}
	return raw, false
}

// Product is a tuxedo offered for sale or rent
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name        string          `gorm:"size:200;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	RentPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rent_price"`
	Images      StringList      `gorm:"type:text" json:"images"`
	Sizes       StringList      `gorm:"type:text" json:"sizes"`
	Colors      StringList      `gorm:"type:text" json:"colors"`
	Category    string          `gorm:"size:32;index;default:Classic" json:"category"`
	Barcode     *string         `gorm:"size:128;uniqueIndex" json:"barcode"`
	InStock     bool            `gorm:"index" json:"in_stock"`
	StockCount  int             `gorm:"not null;default:0" json:"stock_count"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = NextID()
	}
	p.SyncAvailability()
	return nil
}

// SyncAvailability enforces inStock == (stockCount > 0).
func (p *Product) SyncAvailability() {
	if p.StockCount < 0 {
		p.StockCount = 0
	}
	p.InStock = p.StockCount > 0
}

// BarcodeValue returns the barcode or an empty string.
func (p *Product) BarcodeValue() string {
	if p.Barcode == nil {
		return ""
	}
	return *p.Barcode
}

// NormalizeBarcode trims raw and maps blank values to nil so that absent
// barcodes never collide on the unique index.
func NormalizeBarcode(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
