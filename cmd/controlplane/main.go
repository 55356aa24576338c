package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/db"
	"taskforge-controlplane/pkg/gen"
	"taskforge-controlplane/pkg/health"
	"taskforge-controlplane/pkg/httpapi"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/pkg/minio"
	"taskforge-controlplane/pkg/otelcol"
	"taskforge-controlplane/pkg/profiling"
	"taskforge-controlplane/pkg/queue"
	"taskforge-controlplane/pkg/redis"
	"taskforge-controlplane/pkg/sequence"
	"taskforge-controlplane/pkg/server"
	"taskforge-controlplane/services/audit"
	"taskforge-controlplane/services/bootstrap"
	"taskforge-controlplane/services/job"
	"taskforge-controlplane/services/kpi"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/project"
	"taskforge-controlplane/services/task"
	"taskforge-controlplane/services/timelog"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		gen.Module,
		sequence.Module,
		minio.Module,
		bootstrap.Module,
		queue.Client,
		health.Module,
		httpapi.Module,
		server.ProvideHTTPServer,

		organization.Module,
		organization.HTTP,
		project.Module,
		project.HTTP,
		audit.Module,
		audit.HTTP,
		task.Module,
		task.HTTP,
		timelog.Module,
		timelog.HTTP,
		kpi.Module,
		kpi.HTTP,
		job.Module,
		job.HTTP,
		job.Schedule,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	if cfg.AppEnv == "production" {
		return fxevent.NopLogger
	}
	return &fxevent.ZapLogger{Logger: logger}
})
