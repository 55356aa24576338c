package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	Platform struct {
		OrganizationName string `mapstructure:"ORGANIZATION_NAME"`
		Timezone         string `mapstructure:"TIMEZONE"`
		NodeID           int64  `mapstructure:"NODE_ID"`
	} `mapstructure:"PLATFORM"`
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"` // grpc|http
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
	Auth struct {
		JWTSecret string `mapstructure:"JWT_SECRET"`
		Issuer    string `mapstructure:"ISSUER"`
	} `mapstructure:"AUTH"`
	Database struct {
		Type           string `mapstructure:"TYPE"` // postgres|mysql|sqlite
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		Path           string `mapstructure:"PATH"`
		Metrics        bool   `mapstructure:"METRICS"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	Minio struct {
		Endpoint   string `mapstructure:"ENDPOINT"`
		AccessKey  string `mapstructure:"ACCESS_KEY"`
		SecretKey  string `mapstructure:"SECRET_KEY"`
		Secure     bool   `mapstructure:"SECURE"`
		BucketName string `mapstructure:"BUCKET_NAME"`
	} `mapstructure:"MINIO"`
	Scheduler struct {
		Enable bool `mapstructure:"ENABLE"`
		Hour   int  `mapstructure:"HOUR"`
		Minute int  `mapstructure:"MINUTE"`
	} `mapstructure:"SCHEDULER"`
}

// Location resolves Platform.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.Platform.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Platform.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "taskforge-controlplane")
	v.SetDefault("PLATFORM.TIMEZONE", "UTC")
	v.SetDefault("PLATFORM.NODE_ID", 1)
	v.SetDefault("HTTP_SERVER.ADDR", "8080")
	v.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("DATABASE.TYPE", "sqlite")
	v.SetDefault("DATABASE.PATH", "taskforge.db")
	v.SetDefault("DATABASE.SSLMODE", "disable")
	v.SetDefault("DATABASE.TIMEZONE", "UTC")
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE.CONNECTION_POOL.MAX_OPEN_CONNS", 20)
	v.SetDefault("DATABASE.CONNECTION_POOL.CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DATABASE.CONNECTION_POOL.CONN_MAX_IDLE_TIME", 10*time.Minute)
	v.SetDefault("REDIS.ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS.POOL_SIZE", 10)
	v.SetDefault("REDIS.POOL_TIMEOUT", 5*time.Second)
	v.SetDefault("OTEL.PROTOCOL", "grpc")
	v.SetDefault("SCHEDULER.ENABLE", true)
	v.SetDefault("SCHEDULER.HOUR", 0)
	v.SetDefault("SCHEDULER.MINUTE", 0)

	// Zero defaults register the key so AutomaticEnv can fill it on Unmarshal.
	for _, key := range []string{
		"APP_VERSION", "PLATFORM.ORGANIZATION_NAME",
		"TLS.CERT_PATH", "TLS.KEY_PATH",
		"OTEL.ADDR", "PYROSCOPE.ADDR",
		"AUTH.JWT_SECRET", "AUTH.ISSUER",
		"DATABASE.HOST", "DATABASE.PORT", "DATABASE.DBNAME", "DATABASE.USER", "DATABASE.PASSWORD",
		"REDIS.PASSWORD",
		"MINIO.ENDPOINT", "MINIO.ACCESS_KEY", "MINIO.SECRET_KEY", "MINIO.BUCKET_NAME",
	} {
		v.SetDefault(key, "")
	}
	for _, key := range []string{"TLS.ENABLE", "DATABASE.METRICS", "MINIO.SECURE"} {
		v.SetDefault(key, false)
	}
	v.SetDefault("REDIS.DB", 0)
}

// LoadConfig reads config.yaml from the working directory when present and
// overlays environment variables (PLATFORM.TIMEZONE -> PLATFORM_TIMEZONE).
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
