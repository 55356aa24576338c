package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/db"
	"taskforge-controlplane/pkg/gen"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/pkg/otelcol"
	"taskforge-controlplane/pkg/profiling"
	"taskforge-controlplane/pkg/queue"
	"taskforge-controlplane/services/audit"
	"taskforge-controlplane/services/job"
	"taskforge-controlplane/services/kpi"
	"taskforge-controlplane/services/task"
)

// The worker consumes the daily chain queued by the control plane scheduler.
func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		gen.Module,
		queue.Server,
		audit.Module,
		task.Module,
		kpi.Module,
		job.Module,
		job.Worker,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
