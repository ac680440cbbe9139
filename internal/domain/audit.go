package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReasonScanOut   = "scan_out"
	ReasonOrder     = "order"
	ReasonAdminEdit = "admin_edit"
)

// StockMovement records one stock mutation, written in the same
// transaction as the product update.
type StockMovement struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ProductID int64     `gorm:"index;not null" json:"product_id,string"`
	Reason    string    `gorm:"size:32;index" json:"reason"`
	Change    int       `json:"change"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
	Reference string    `gorm:"size:128" json:"reference"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = NextID()
	}
	return nil
}

const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifySkipped = "skipped"
)

// NotificationLog records the outcome of one operator notification attempt
type NotificationLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	BookingID int64     `gorm:"index" json:"booking_id,string"`
	Channel   string    `gorm:"size:32" json:"channel"`
	Target    string    `gorm:"size:255" json:"target"`
	Status    string    `gorm:"size:16;index" json:"status"`
	Error     string    `gorm:"type:text" json:"error"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (NotificationLog) TableName() string {
	return "notification_logs"
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == 0 {
		n.ID = NextID()
	}
	return nil
}
