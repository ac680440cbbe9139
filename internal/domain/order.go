package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OrderTypeRent = "rent"
	OrderTypeBuy  = "buy"

	OrderPending = "pending"
)

// Order is a checkout of one or more catalog items
type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	CustomerID      int64           `gorm:"index;not null" json:"customer_id,string"`
	Customer        *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Type            string          `gorm:"size:16" json:"type"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	Status          string          `gorm:"size:32;index;default:pending" json:"status"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == 0 {
		o.ID = NextID()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	return nil
}

// OrderItem keeps a weak reference to the product; the product may be
// deleted later without touching order history.
type OrderItem struct {
	ID        int64           `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	OrderID   int64           `gorm:"index;not null" json:"order_id,string"`
	ProductID int64           `gorm:"index;not null" json:"product_id,string"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Type      string          `gorm:"size:16" json:"type"`
	Size      string          `gorm:"size:32" json:"size"`
	Color     string          `gorm:"size:64" json:"color"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == 0 {
		i.ID = NextID()
	}
	return nil
}
