// Package notify delivers booking alerts to the shop operator without
// blocking or failing the request that triggered them.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

const (
	DefaultWorkers   = 4
	DefaultTimeout   = 15 * time.Second
	DefaultQueueSize = 512
	ChannelNone      = "none"
)

var (
	errQueueFull = errors.New("notification queue is full")
	errClosed    = errors.New("notification dispatcher is closed")
)

// Sender delivers one message over one channel
type Sender interface {
	Channel() string
	Send(ctx context.Context, target, subject, body string) error
}

// Route pairs a sender with the operator address it delivers to
type Route struct {
	Sender Sender
	Target string
}

type delivery struct {
	route     Route
	bookingID int64
	subject   string
	body      string
}

// Dispatcher fans booking summaries out to every route on a bounded worker
// pool and records each outcome in the notification log. Deliveries wait in
// a queue while all workers are busy.
type Dispatcher struct {
	db      *gorm.DB
	pool    *ants.Pool
	routes  []Route
	timeout time.Duration
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
	queue  chan delivery
	fed    chan struct{}
}

func NewDispatcher(db *gorm.DB, workers int, timeout time.Duration, routes ...Route) (*Dispatcher, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pool, err := ants.NewPool(workers,
		ants.WithPanicHandler(func(v interface{}) {
			zap.S().Errorf("notification worker panic: %v", v)
		}))
	if err != nil {
		return nil, errors.Wrap(err, "create notification pool")
	}
	d := &Dispatcher{
		db:      db,
		pool:    pool,
		routes:  routes,
		timeout: timeout,
		queue:   make(chan delivery, DefaultQueueSize),
		fed:     make(chan struct{}),
	}
	go d.feed()
	return d, nil
}

// feed hands queued deliveries to the pool, blocking while every worker is busy.
func (d *Dispatcher) feed() {
	defer close(d.fed)
	for job := range d.queue {
		job := job
		err := d.pool.Submit(func() {
			defer d.wg.Done()
			d.deliver(job)
		})
		if err != nil {
			d.wg.Done()
			zap.L().Warn("notification pool rejected task",
				zap.String("channel", job.route.Sender.Channel()),
				zap.Error(err))
			d.record(job.bookingID, job.route.Sender.Channel(), job.route.Target, domain.NotifyFailed, err)
		}
	}
}

// Routes returns the configured delivery routes.
func (d *Dispatcher) Routes() []Route {
	return d.routes
}

// Subscribe attaches the dispatcher to booking events on bus.
func (d *Dispatcher) Subscribe(bus evbus.Bus) error {
	return bus.Subscribe(domain.TopicBookingCreated, d.Dispatch)
}

// Dispatch schedules delivery of s and returns immediately.
func (d *Dispatcher) Dispatch(s domain.BookingSummary) {
	if len(d.routes) == 0 {
		zap.L().Info("no notification channel configured, skipping booking alert",
			zap.Int64("booking", s.BookingID))
		d.record(s.BookingID, ChannelNone, "", domain.NotifySkipped, nil)
		return
	}

	subject, body := Subject, RenderBookingMessage(s)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.routes {
		if d.closed {
			d.record(s.BookingID, r.Sender.Channel(), r.Target, domain.NotifyFailed, errClosed)
			continue
		}
		d.wg.Add(1)
		select {
		case d.queue <- delivery{route: r, bookingID: s.BookingID, subject: subject, body: body}:
		default:
			d.wg.Done()
			zap.L().Warn("notification queue full, dropping booking alert",
				zap.String("channel", r.Sender.Channel()),
				zap.Int64("booking", s.BookingID))
			d.record(s.BookingID, r.Sender.Channel(), r.Target, domain.NotifyFailed, errQueueFull)
		}
	}
}

func (d *Dispatcher) deliver(job delivery) {
	r, bookingID := job.route, job.bookingID
	channel := r.Sender.Channel()
	defer func() {
		if v := recover(); v != nil {
			d.record(bookingID, channel, r.Target, domain.NotifyFailed, fmt.Errorf("panic: %v", v))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := r.Sender.Send(ctx, r.Target, job.subject, job.body); err != nil {
		zap.L().Error("booking notification failed",
			zap.Int64("booking", bookingID),
			zap.String("channel", channel),
			zap.Error(err))
		d.record(bookingID, channel, r.Target, domain.NotifyFailed, err)
		return
	}
	zap.L().Info("booking notification sent",
		zap.Int64("booking", bookingID),
		zap.String("channel", channel))
	d.record(bookingID, channel, r.Target, domain.NotifySent, nil)
}

func (d *Dispatcher) record(bookingID int64, channel, target, status string, cause error) {
	if d.db == nil {
		return
	}
	entry := &domain.NotificationLog{
		BookingID: bookingID,
		Channel:   channel,
		Target:    target,
		Status:    status,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := d.db.Create(entry).Error; err != nil {
		zap.L().Error("failed to record notification outcome", zap.Error(err))
	}
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close drains the queue, waits for pending deliveries and releases the pool.
// Later dispatches are recorded as failed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.fed
	d.wg.Wait()
	d.pool.Release()
	for _, r := range d.routes {
		if c, ok := r.Sender.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				zap.L().Warn("close notification sender", zap.String("channel", r.Sender.Channel()), zap.Error(err))
			}
		}
	}
}

// PurgeLogs deletes notification log entries created before the cutoff.
func (d *Dispatcher) PurgeLogs(ctx context.Context, before time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Where("created_at < ?", before).Delete(&domain.NotificationLog{})
	if res.Error != nil {
		return 0, domain.WrapStoreError(res.Error, "purge notification logs")
	}
	return res.RowsAffected, nil
}
