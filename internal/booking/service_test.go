package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/tuxedoshop/internal/domain"
	"github.com/talkincode/tuxedoshop/internal/domain/dbtest"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.BookingSummary
}

func (r *recorder) handle(s domain.BookingSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) snapshot() []domain.BookingSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.BookingSummary(nil), r.events...)
}

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	bus := evbus.New()
	rec := &recorder{}
	require.NoError(t, bus.Subscribe(domain.TopicBookingCreated, rec.handle))
	return NewService(dbtest.Open(t), bus), rec
}

func validInput() CreateInput {
	return CreateInput{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "555-0100",
		Date:  "2026-06-12",
		Time:  "2:00 PM",
		Notes: "Wedding party of five",
	}
}

func TestCreateBookingPublishesSummary(t *testing.T) {
	svc, rec := newTestService(t)

	b, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Nil(t, b.Customer)
	assert.Equal(t, 2026, b.Date.Year())
	assert.Equal(t, time.June, b.Date.Month())
	assert.Equal(t, 12, b.Date.Day())

	events := rec.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, b.ID, events[0].BookingID)
	assert.Equal(t, "Jane Doe", events[0].CustomerName)
	assert.Equal(t, "555-0100", events[0].CustomerPhone)
	assert.Equal(t, "Wedding party of five", events[0].Notes)
}

func TestCreateBookingReusesCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	in := validInput()
	in.Name = "J. Doe"
	in.Date = "2026-07-01"
	second, err := svc.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)
	var customers int64
	svc.db.Model(&domain.Customer{}).Count(&customers)
	assert.EqualValues(t, 1, customers)
}

func TestCreateBookingRejectsInvalidInput(t *testing.T) {
	cases := map[string]func(*CreateInput){
		"bad date":      func(in *CreateInput) { in.Date = "next tuesday-ish" },
		"missing date":  func(in *CreateInput) { in.Date = "" },
		"missing name":  func(in *CreateInput) { in.Name = "  " },
		"bad email":     func(in *CreateInput) { in.Email = "not-an-email" },
		"missing time":  func(in *CreateInput) { in.Time = "" },
		"missing email": func(in *CreateInput) { in.Email = "" },
	}
	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			svc, rec := newTestService(t)
			in := validInput()
			mutate(&in)

			_, err := svc.Create(context.Background(), in)
			assert.True(t, errors.Is(err, domain.ErrInvalidArgument), err)

			var bookings, customers int64
			svc.db.Model(&domain.Booking{}).Count(&bookings)
			svc.db.Model(&domain.Customer{}).Count(&customers)
			assert.Zero(t, bookings)
			assert.Zero(t, customers)
			assert.Empty(t, rec.snapshot())
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Local, d.Location())
	assert.Equal(t, 4, d.Day())

	d, err = ParseDate("2026-03-04T15:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	_, err = ParseDate("32/13/2026")
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestListUpdateDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	later := validInput()
	later.Date = "2026-09-01"
	laterBooking, err := svc.Create(ctx, later)
	require.NoError(t, err)
	earlier := validInput()
	earlier.Email = "john@example.com"
	earlier.Name = "John"
	earlier.Date = "2026-05-01"
	_, err = svc.Create(ctx, earlier)
	require.NoError(t, err)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "John", rows[0].Customer.Name)
	assert.Equal(t, "jane@example.com", rows[1].Customer.Email)

	status := domain.BookingCancelled
	notes := "moved"
	updated, err := svc.Update(ctx, laterBooking.ID, UpdateInput{Status: &status, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, updated.Status)
	assert.Equal(t, "moved", updated.Notes)

	// any transition is allowed
	status = domain.BookingPending
	updated, err = svc.Update(ctx, laterBooking.ID, UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, updated.Status)

	bogus := "archived"
	_, err = svc.Update(ctx, laterBooking.ID, UpdateInput{Status: &bogus})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = svc.Update(ctx, 42, UpdateInput{Status: &status})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, laterBooking.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, laterBooking.ID), domain.ErrNotFound))
}
