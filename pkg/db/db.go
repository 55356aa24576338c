package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskforge-controlplane/pkg/config"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/prometheus"
)

var Module = fx.Module("database",
	fx.Provide(
		Dialect,
		New,
	),
	fx.Invoke(RegisterConnectionPool, Instrument),
)

// Dialect picks the gorm driver from DATABASE.TYPE. sqlite is the default so
// a fresh checkout runs without external services.
func Dialect(cfg *config.Config) (gorm.Dialector, error) {
	d := cfg.Database
	switch strings.ToLower(d.Type) {
	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			d.Host, d.Port, d.User, d.Password, d.DBNAME, d.SSLMode, d.Timezone)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBNAME)
		return mysql.Open(dsn), nil
	case "sqlite", "":
		path := d.Path
		if path == "" {
			path = "taskforge.db"
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return sqlite.Open(path + sep + "_foreign_keys=on"), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", d.Type)
	}
}

func New(cfg *config.Config, dialector gorm.Dialector) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	var logLevel logger.LogLevel
	var showSQL bool

	if cfg.AppEnv == "production" {
		logLevel = logger.Warn
		showSQL = false
	} else {
		logLevel = logger.Info
		showSQL = true
	}

	gormLogger := NewZapGormLogger(zap.L(), logLevel, showSQL)

	for i := 0; i < 5; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: gormLogger,
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err == nil {
			break
		}
		zap.L().Warn("[DB] Database not ready, retrying in 3 seconds... ", zap.Int("retry", i+1), zap.Error(err))
		time.Sleep(3 * time.Second)
	}

	if err != nil {
		zap.L().Error("[DB] Failed to connect to database", zap.Error(err))
		return nil, err
	}

	zap.L().Info("[DB] ✅ Database connection successfully configured.", zap.String("dialect", dialector.Name()))

	return db, nil
}

type connectionPoolParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	DB        *gorm.DB
	Config    *config.Config
}

func RegisterConnectionPool(p connectionPoolParams) error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		zap.L().Error("[DB] ❌ Failed to get sql.DB from gorm", zap.Error(err))
		return err
	}

	cp := p.Config.Database.ConnectionPool
	sqlDB.SetMaxIdleConns(cp.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cp.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cp.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cp.ConnMaxIdleTime)

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			zap.L().Info("[DB] Closing connection pool...")
			return sqlDB.Close()
		},
	})
	return nil
}

// Instrument attaches tracing when an OTLP collector is configured and
// prometheus collectors when DATABASE.METRICS is on.
func Instrument(db *gorm.DB, cfg *config.Config) error {
	if cfg.Otel.Addr != "" {
		if err := Otel(db); err != nil {
			return err
		}
	}
	if cfg.Database.Metrics {
		if err := Metric(db, cfg); err != nil {
			return err
		}
	}
	return nil
}

func Otel(db *gorm.DB) error {
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		zap.L().Error("❌ Failed to register db telemetry", zap.Error(err))
		return err
	}

	return nil
}

// Metric registers gorm's prometheus plugin on the default registry; the
// series are served by the API's /metrics endpoint.
func Metric(db *gorm.DB, cfg *config.Config) error {
	var collectors []prometheus.MetricsCollector
	switch db.Dialector.(type) {
	case *postgres.Dialector:
		collectors = append(collectors, &prometheus.Postgres{VariableNames: []string{"Threads_running"}})
	case *mysql.Dialector:
		collectors = append(collectors, &prometheus.MySQL{VariableNames: []string{"Threads_running"}})
	}

	if err := db.Use(prometheus.New(prometheus.Config{
		DBName:           dbName(cfg),
		RefreshInterval:  15,
		MetricsCollector: collectors,
	})); err != nil {
		zap.L().Error("❌ Failed to register db metrics", zap.Error(err))
		return err
	}
	return nil
}

func dbName(cfg *config.Config) string {
	if cfg.Database.DBNAME != "" {
		return cfg.Database.DBNAME
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path
	}
	return "unknown"
}
