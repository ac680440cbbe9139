package domain

import (
	"time"

	"gorm.io/gorm"
)

const RoleCustomer = "customer"

// Customer is created on demand by booking and checkout
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name      string    `gorm:"size:200" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"size:64" json:"phone"`
	Password  string    `gorm:"size:128" json:"-"`
	Role      string    `gorm:"size:32;default:customer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == 0 {
		c.ID = NextID()
	}
	if c.Role == "" {
		c.Role = RoleCustomer
	}
	return nil
}
