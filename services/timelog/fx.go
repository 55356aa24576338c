package timelog

import (
	"taskforge-controlplane/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("timelog.service",
	fx.Provide(
		NewService,
	),
)

var HTTP = fx.Module("timelog.http",
	fx.Provide(httpapi.AsRoutes(NewHandler)),
)
