package kpi

import (
	"taskforge-controlplane/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("kpi.service",
	fx.Provide(
		NewService,
	),
)

var HTTP = fx.Module("kpi.http",
	fx.Provide(httpapi.AsRoutes(NewHandler)),
)
