package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/booking"
	"github.com/talkincode/tuxedoshop/internal/catalog"
	"github.com/talkincode/tuxedoshop/internal/notify"
	"github.com/talkincode/tuxedoshop/internal/order"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// ServiceProvider provides the domain services
type ServiceProvider interface {
	Catalog() *catalog.Service
	Bookings() *booking.Service
	Orders() *order.Service
	Notifier() *notify.Dispatcher
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	ServiceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
