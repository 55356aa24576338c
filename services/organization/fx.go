package organization

import (
	"taskforge-controlplane/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(
		NewService,
	),
)

var HTTP = fx.Module("organization.http",
	fx.Provide(httpapi.AsRoutes(NewHandler)),
)
