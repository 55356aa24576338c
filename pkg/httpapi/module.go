package httpapi

import (
	"net/http"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/health"
	"taskforge-controlplane/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(
		NewVerifier,
		NewEngine,
		NewHandler,
	),
)

// Registrar is implemented by every service handler that exposes routes on
// the authenticated API group.
type Registrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// AsRoutes annotates a handler constructor so its result joins the route group.
func AsRoutes(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Registrar)),
		fx.ResultTags(`group:"routes"`),
	)
}

func NewVerifier(cfg *config.Config) *auth.Verifier {
	return auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
}

type Params struct {
	fx.In
	Config     *config.Config
	Health     health.HealthService
	Verifier   *auth.Verifier
	Registrars []Registrar `group:"routes"`
}

func NewEngine(p Params) *gin.Engine {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Error())

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/", middleware.Auth(p.Verifier))
	for _, reg := range p.Registrars {
		reg.RegisterRoutes(api)
	}

	return r
}

// NewHandler wraps the engine with OpenTelemetry spans when a collector is
// configured so request logs carry trace ids.
func NewHandler(cfg *config.Config, engine *gin.Engine) http.Handler {
	if cfg.Otel.Addr == "" {
		return engine
	}
	return otelhttp.NewHandler(engine, cfg.AppName)
}
