package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talkincode/tuxedoshop/config"
)

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		// order items keep a weak reference to products
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}
}

// getDatabase opens the configured database and panics when it is unreachable.
func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	dsn := cfg.DSN(workdir)
	var dialector gorm.Dialector
	isSqlite := false
	switch strings.ToLower(cfg.Type) {
	case "sqlite", "sqlite3":
		isSqlite = true
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				zap.S().Errorf("create sqlite directory: %v", err)
			}
		}
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormConfig(cfg.Debug))
	if err != nil {
		zap.S().Errorf("database connection failed: %v", err)
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if isSqlite {
		// sqlite allows a single writer; one connection also keeps :memory: alive
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db
}
