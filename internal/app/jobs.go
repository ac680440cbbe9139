package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// retentionDays bounds how long audit rows are kept.
const retentionDays = 365

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@hourly", a.SchedReconcileStockTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedClearExpireData)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedReconcileStockTask repairs products whose availability flag drifted
// from their stock count.
func (a *Application) SchedReconcileStockTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	fixed, err := a.catalog.Reconcile(context.Background())
	if err != nil {
		zap.L().Error("stock reconcile failed", zap.Error(err))
		return
	}
	if fixed > 0 {
		zap.L().Warn("stock availability repaired", zap.Int64("rows", fixed))
	}
}

// SchedClearExpireData purges stock movements and notification logs past
// the retention window.
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx := context.Background()
	cutoff := time.Now().Add(-time.Hour * 24 * retentionDays)

	moves, err := a.catalog.PurgeMovements(ctx, cutoff)
	if err != nil {
		zap.L().Error("purge stock movements failed", zap.Error(err))
	}
	var logs int64
	if a.notifier != nil {
		logs, err = a.notifier.PurgeLogs(ctx, cutoff)
		if err != nil {
			zap.L().Error("purge notification logs failed", zap.Error(err))
		}
	}
	zap.L().Info("expired audit data cleared",
		zap.Int64("stock_movements", moves),
		zap.Int64("notification_logs", logs))
}
