package job

import (
	"taskforge-controlplane/pkg/httpapi"
	"taskforge-controlplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("job.service",
	fx.Provide(
		NewService,
	),
)

var HTTP = fx.Module("job.http",
	fx.Provide(httpapi.AsRoutes(NewHandler)),
)

// Schedule needs queue.Client for the enqueuer.
var Schedule = fx.Module("job.scheduler",
	fx.Provide(NewScheduler),
	fx.Invoke(StartScheduler),
)

// Worker needs queue.Server for the mux.
var Worker = fx.Module("job.worker",
	fx.Invoke(RegisterHandlers),
)

func RegisterHandlers(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.DailyRun, svc.HandleDailyRun)
	mux.HandleFunc(taskname.OverdueSweep, svc.HandleOverdueSweep)
	mux.HandleFunc(taskname.DigestSend, svc.HandleDigest)
	mux.HandleFunc(taskname.KPIRecalculate, svc.HandleKPIRecalculate)
}
