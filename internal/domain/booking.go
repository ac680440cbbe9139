package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking is a fitting appointment
type Booking struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	CustomerID int64     `gorm:"index;not null" json:"customer_id,string"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Date       time.Time `gorm:"index;not null" json:"date"`
	Time       string    `gorm:"size:32;not null" json:"time"`
	Status     string    `gorm:"size:32;index;default:pending" json:"status"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == 0 {
		b.ID = NextID()
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	return nil
}
