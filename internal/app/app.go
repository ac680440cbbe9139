package app

import (
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	evbus "github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/talkincode/tuxedoshop/config"
	"github.com/talkincode/tuxedoshop/internal/booking"
	"github.com/talkincode/tuxedoshop/internal/catalog"
	"github.com/talkincode/tuxedoshop/internal/domain"
	"github.com/talkincode/tuxedoshop/internal/notify"
	"github.com/talkincode/tuxedoshop/internal/order"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       evbus.Bus
	notifier  *notify.Dispatcher
	catalog   *catalog.Service
	bookings  *booking.Service
	orders    *order.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ ServiceProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle and rebuilds the
// services on top of it (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.initServices()
}

func (a *Application) Init(cfg *config.AppConfig) {
	a.appConfig = cfg
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.checkProducts()
	a.initServices()
	a.initJob()
}

// initServices wires the domain services and the booking event bus.
func (a *Application) initServices() {
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.appConfig == nil {
		a.appConfig = config.DefaultAppConfig
	}
	a.bus = evbus.New()

	ncfg := a.appConfig.Notify
	notifier, err := notify.NewDispatcher(a.gormDB, ncfg.Workers,
		time.Duration(ncfg.TimeoutSecs)*time.Second, notificationRoutes(ncfg)...)
	if err != nil {
		zap.S().Errorf("init notification dispatcher error %s", err.Error())
	} else {
		if err := notifier.Subscribe(a.bus); err != nil {
			zap.S().Errorf("subscribe notification dispatcher error %s", err.Error())
		}
		a.notifier = notifier
	}

	a.catalog = catalog.NewService(a.gormDB)
	a.bookings = booking.NewService(a.gormDB, a.bus)
	a.orders = order.NewService(a.gormDB)
}

// notificationRoutes builds one delivery route per configured channel.
func notificationRoutes(cfg config.NotifyConfig) []notify.Route {
	var routes []notify.Route
	if cfg.Sms.Enabled() && cfg.OperatorPhone != "" {
		routes = append(routes, notify.Route{Sender: notify.NewSMSSender(cfg.Sms), Target: cfg.OperatorPhone})
	}
	if cfg.Smtp.Enabled() && cfg.OperatorEmail != "" {
		routes = append(routes, notify.Route{Sender: notify.NewEmailSender(cfg.Smtp), Target: cfg.OperatorEmail})
	}
	if cfg.Kafka.Enabled() {
		target := cfg.OperatorEmail
		if target == "" {
			target = "operator"
		}
		routes = append(routes, notify.Route{Sender: notify.NewKafkaSender(cfg.Kafka), Target: target})
	}
	if cfg.Webhook.Enabled() {
		routes = append(routes, notify.Route{Sender: notify.NewWebhookSender(cfg.Webhook), Target: cfg.Webhook.URL})
	}
	if cfg.LogEnable {
		routes = append(routes, notify.Route{Sender: notify.LogSender{}, Target: "operator"})
	}
	for _, r := range routes {
		zap.L().Info("notification channel enabled", zap.String("channel", r.Sender.Channel()))
	}
	return routes
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
			return err
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
			return err
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
		return
	}
	a.checkProducts()
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Catalog() *catalog.Service {
	return a.catalog
}

func (a *Application) Bookings() *booking.Service {
	return a.bookings
}

func (a *Application) Orders() *order.Service {
	return a.orders
}

func (a *Application) Notifier() *notify.Dispatcher {
	return a.notifier
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	_ = zap.L().Sync()
}
