// Package booking manages fitting appointments.
package booking

import (
	"context"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/customer"
	"github.com/talkincode/tuxedoshop/internal/domain"
)

const dateLayout = "2006-01-02"

// Publisher is satisfied by EventBus.Bus
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// Service creates and administers bookings
type Service struct {
	db  *gorm.DB
	bus Publisher
}

func NewService(db *gorm.DB, bus Publisher) *Service {
	return &Service{db: db, bus: bus}
}

// CreateInput is a booking request from the storefront
type CreateInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time" validate:"required"`
	Notes string `json:"notes"`
}

// UpdateInput changes any subset of a booking
type UpdateInput struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	Date   *string `json:"date"`
	Time   *string `json:"time"`
	Notes  *string `json:"notes"`
}

// ParseDate reads a calendar date. Plain ISO dates are taken in the local
// zone; full timestamps are accepted as well.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.Invalidf("date is required")
	}
	if t, err := time.ParseInLocation(dateLayout, raw, time.Local); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseStrict(raw)
	if err != nil {
		return time.Time{}, domain.Invalidf("invalid date %q", raw)
	}
	return t, nil
}

// Create stores a pending booking for the customer with this email and,
// once committed, announces it on TopicBookingCreated. Notification outcome
// never affects the result.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Booking, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Time = strings.TrimSpace(in.Time)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	var b *domain.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := customer.Resolve(tx, in.Name, in.Email, in.Phone)
		if err != nil {
			return err
		}
		b = &domain.Booking{
			CustomerID: c.ID,
			Date:       date,
			Time:       in.Time,
			Status:     domain.BookingPending,
			Notes:      strings.TrimSpace(in.Notes),
		}
		if err := tx.Create(b).Error; err != nil {
			return domain.WrapStoreError(err, "create booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("booking created",
		zap.Int64("id", b.ID),
		zap.String("email", in.Email),
		zap.String("date", date.Format(dateLayout)),
		zap.String("time", b.Time))

	if s.bus != nil {
		s.bus.Publish(domain.TopicBookingCreated, domain.BookingSummary{
			BookingID:     b.ID,
			CustomerName:  in.Name,
			CustomerEmail: in.Email,
			CustomerPhone: strings.TrimSpace(in.Phone),
			Date:          date,
			Time:          b.Time,
			Notes:         b.Notes,
		})
	}
	return b, nil
}

// List returns bookings ordered by date with their customer.
func (s *Service) List(ctx context.Context) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Order("date ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, domain.WrapStoreError(err, "list bookings")
	}
	return rows, nil
}

// Update applies any subset of status, date, time and notes. Status
// transitions are unrestricted.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Booking, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		date, err := ParseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		updates["date"] = date
	}
	if in.Time != nil {
		t := strings.TrimSpace(*in.Time)
		if t == "" {
			return nil, domain.Invalidf("time must not be empty")
		}
		updates["time"] = t
	}
	if in.Notes != nil {
		updates["notes"] = strings.TrimSpace(*in.Notes)
	}

	var b domain.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
			return domain.WrapStoreError(err, "booking")
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = time.Now()
		if err := tx.Model(&domain.Booking{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return domain.WrapStoreError(err, "update booking")
		}
		return tx.Where("id = ?", id).First(&b).Error
	})
	if err != nil {
		return nil, domain.WrapStoreError(err, "booking")
	}
	return &b, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Booking{})
	if res.Error != nil {
		return domain.WrapStoreError(res.Error, "delete booking")
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("booking %d", id)
	}
	return nil
}
