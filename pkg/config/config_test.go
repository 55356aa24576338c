package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("PLATFORM_TIMEZONE", "Asia/Jakarta")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Database.Type)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, "8080", cfg.Server.Addr)
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "Asia/Jakarta", cfg.Location().String())
}

func TestLocationFallback(t *testing.T) {
	var nilCfg *Config
	require.Equal(t, time.UTC, nilCfg.Location())

	cfg := &Config{}
	cfg.Platform.Timezone = "Not/AZone"
	require.Equal(t, time.UTC, cfg.Location())
}
