package audit

import (
	"taskforge-controlplane/pkg/httpapi"

	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(
		NewRecorder,
		NewService,
	),
)

var HTTP = fx.Module("audit.http",
	fx.Provide(httpapi.AsRoutes(NewHandler)),
)
