package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if yaml != "" {
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := decode(newViper(t, ""))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, BackendMemory, cfg.Store.Backend)
	require.Equal(t, 24*time.Hour, cfg.Security.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.Security.RefreshTokenTTL)
	require.Equal(t, time.Hour, cfg.Security.ResetTokenTTL)
	require.Equal(t, 5, cfg.Security.MaxSessions)
	require.Equal(t, 30*time.Minute, cfg.Security.ExpiringSoon)
	require.Equal(t, "admin", cfg.Security.BootstrapAdmin.Username)
	require.False(t, cfg.IsProduction())
}

func TestYAMLOverrides(t *testing.T) {
	cfg, err := decode(newViper(t, `
environment: staging
store:
  backend: Redis
security:
  jwtsecret: s3cret
  accesstokenttl: 30m
  maxsessions: 3
  expiringsoon: 5m
allowcorsorigins: "https://a.example,https://b.example"
`))
	require.NoError(t, err)

	require.Equal(t, BackendRedis, cfg.Store.Backend)
	require.Equal(t, 30*time.Minute, cfg.Security.AccessTokenTTL)
	require.Equal(t, 3, cfg.Security.MaxSessions)
	require.Equal(t, 5*time.Minute, cfg.Security.ExpiringSoon)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowCORSOrigins)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"production without secret", "environment: production", "jwtsecret"},
		{"zero sessions", "security:\n  maxsessions: 0", "maxsessions"},
		{"unknown backend", "store:\n  backend: etcd", "store.backend"},
		{"zero reset ttl", "security:\n  resettokenttl: 0s", "resettokenttl"},
		{"negative expiring soon", "security:\n  expiringsoon: -1m", "expiringsoon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(newViper(t, tt.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProductionWithSecret(t *testing.T) {
	cfg, err := decode(newViper(t, "environment: Production\nsecurity:\n  jwtsecret: abc"))
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
}
