package project

import (
	"taskforge-controlplane/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(
		NewService,
	),
)

var HTTP = fx.Module("project.http",
	fx.Provide(httpapi.AsRoutes(NewHandler)),
)
