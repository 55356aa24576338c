package task

import (
	"taskforge-controlplane/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(
		NewService,
	),
)

var HTTP = fx.Module("task.http",
	fx.Provide(httpapi.AsRoutes(NewHandler)),
)
