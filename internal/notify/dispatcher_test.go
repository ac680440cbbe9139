package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/domain"
	"github.com/talkincode/tuxedoshop/internal/domain/dbtest"
)

type fakeSender struct {
	channel string
	err     error
	panics  bool
	delay   time.Duration

	mu    sync.Mutex
	calls []string
}

func (f *fakeSender) Channel() string { return f.channel }

func (f *fakeSender) Send(_ context.Context, target, _, body string) error {
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls = append(f.calls, target+"|"+body)
	f.mu.Unlock()
	return f.err
}

func summary() domain.BookingSummary {
	return domain.BookingSummary{
		BookingID:     7,
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		CustomerPhone: "555-0100",
		Date:          time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
		Time:          "2:00 PM",
	}
}

func logs(t *testing.T, db *gorm.DB) map[string]domain.NotificationLog {
	t.Helper()
	var rows []domain.NotificationLog
	require.NoError(t, db.Find(&rows).Error)
	out := map[string]domain.NotificationLog{}
	for _, r := range rows {
		out[r.Channel] = r
	}
	return out
}

func TestDispatchRecordsEachRoute(t *testing.T) {
	db := dbtest.Open(t)
	ok := &fakeSender{channel: "sms"}
	bad := &fakeSender{channel: "email", err: errors.New("smtp down")}
	crash := &fakeSender{channel: "kafka", panics: true}

	d, err := NewDispatcher(db, 4, time.Second,
		Route{Sender: ok, Target: "+15550001111"},
		Route{Sender: bad, Target: "ops@example.com"},
		Route{Sender: crash, Target: "ops"},
	)
	require.NoError(t, err)
	defer d.Close()

	d.Dispatch(summary())
	d.Wait()

	require.Len(t, ok.calls, 1)
	assert.Contains(t, ok.calls[0], "+15550001111|New Booking Alert!")

	got := logs(t, db)
	require.Len(t, got, 3)
	assert.Equal(t, domain.NotifySent, got["sms"].Status)
	assert.Equal(t, domain.NotifyFailed, got["email"].Status)
	assert.Contains(t, got["email"].Error, "smtp down")
	assert.Equal(t, domain.NotifyFailed, got["kafka"].Status)
	assert.EqualValues(t, 7, got["sms"].BookingID)
}

func TestDispatchWithoutRoutesIsSkipped(t *testing.T) {
	db := dbtest.Open(t)
	d, err := NewDispatcher(db, 0, 0)
	require.NoError(t, err)
	defer d.Close()

	d.Dispatch(summary())
	d.Wait()

	got := logs(t, db)
	require.Len(t, got, 1)
	assert.Equal(t, domain.NotifySkipped, got[ChannelNone].Status)
}

func TestSubscribeDeliversPublishedBookings(t *testing.T) {
	db := dbtest.Open(t)
	sender := &fakeSender{channel: "log"}
	d, err := NewDispatcher(db, 1, time.Second, Route{Sender: sender, Target: "ops"})
	require.NoError(t, err)
	defer d.Close()

	bus := evbus.New()
	require.NoError(t, d.Subscribe(bus))
	bus.Publish(domain.TopicBookingCreated, summary())
	d.Wait()

	assert.Len(t, sender.calls, 1)
}

func TestPurgeLogs(t *testing.T) {
	db := dbtest.Open(t)
	d, err := NewDispatcher(db, 1, time.Second)
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, db.Create(&domain.NotificationLog{Channel: "sms", Status: domain.NotifySent,
		CreatedAt: time.Now().AddDate(-2, 0, 0)}).Error)
	require.NoError(t, db.Create(&domain.NotificationLog{Channel: "sms", Status: domain.NotifySent}).Error)

	n, err := d.PurgeLogs(context.Background(), time.Now().AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDispatchBurstQueuesBeyondWorkers(t *testing.T) {
	db := dbtest.Open(t)
	slow := &fakeSender{channel: "sms", delay: 50 * time.Millisecond}
	d, err := NewDispatcher(db, DefaultWorkers, time.Second, Route{Sender: slow, Target: "+15550001111"})
	require.NoError(t, err)
	defer d.Close()

	const bookings = 3 * DefaultWorkers
	for i := 1; i <= bookings; i++ {
		s := summary()
		s.BookingID = int64(i)
		d.Dispatch(s)
	}
	d.Wait()

	slow.mu.Lock()
	assert.Len(t, slow.calls, bookings)
	slow.mu.Unlock()

	var rows []domain.NotificationLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, bookings)
	for _, r := range rows {
		assert.Equal(t, domain.NotifySent, r.Status, "booking %d: %s", r.BookingID, r.Error)
	}
}

func TestDispatchAfterCloseIsRecorded(t *testing.T) {
	db := dbtest.Open(t)
	sender := &fakeSender{channel: "sms"}
	d, err := NewDispatcher(db, 1, time.Second, Route{Sender: sender, Target: "ops"})
	require.NoError(t, err)
	d.Close()
	d.Close()

	d.Dispatch(summary())
	assert.Empty(t, sender.calls)
	got := logs(t, db)["sms"]
	assert.Equal(t, domain.NotifyFailed, got.Status)
	assert.Equal(t, errClosed.Error(), got.Error)
}
