// Package customer resolves the customer record behind bookings and orders.
package customer

import (
	"fmt"
	"strings"

	"github.com/labstack/gommon/random"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

const (
	placeholderLength = 32
	GuestName         = "Guest User"
)

// Resolve returns the customer with exactly this email, creating one when it
// has not been seen before. It must run inside the caller's transaction.
func Resolve(tx *gorm.DB, name, email, phone string) (*domain.Customer, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Invalidf("email is required")
	}

	var c domain.Customer
	err := tx.Where("email = ?", email).Limit(1).Find(&c).Error
	if err != nil {
		return nil, domain.WrapStoreError(err, "find customer")
	}
	if c.ID != 0 {
		return &c, nil
	}
	return create(tx, strings.TrimSpace(name), email, strings.TrimSpace(phone))
}

// Guest creates a one-off customer for checkouts without contact details.
func Guest(tx *gorm.DB) (*domain.Customer, error) {
	email := fmt.Sprintf("guest-%d@example.com", domain.NextID())
	return create(tx, GuestName, email, "")
}

func create(tx *gorm.DB, name, email, phone string) (*domain.Customer, error) {
	hash, err := placeholderCredential()
	if err != nil {
		return nil, err
	}
	c := &domain.Customer{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: hash,
		Role:     domain.RoleCustomer,
	}
	if err := tx.Create(c).Error; err != nil {
		return nil, domain.WrapStoreError(err, "create customer")
	}
	return c, nil
}

// placeholderCredential hashes a random secret nobody knows, so customers
// created on the fly cannot sign in until they set a password.
func placeholderCredential() (string, error) {
	secret := random.String(placeholderLength)
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.WrapStoreError(err, "hash credential")
	}
	return string(hash), nil
}
