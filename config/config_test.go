package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := LoadConfig("arquivo-inexistente.env")

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 60*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, 7, cfg.ExpiryAlertDays)
	assert.Equal(t, "0 6 * * *", cfg.ExpiryScanCron)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("DB_TIMEOUT_SEC", "2")
	t.Setenv("EXPIRY_ALERT_DAYS", "3")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := LoadConfig("arquivo-inexistente.env")

	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 2*time.Second, cfg.DBTimeout)
	assert.Equal(t, 3, cfg.ExpiryAlertDays)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidate(t *testing.T) {
	valid := Config{StoreDriver: DriverMemory, JWTSecretKey: "k", DBTimeout: time.Second, TokenExpiry: time.Minute, Timezone: "UTC"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"válida", func(c *Config) {}, ""},
		{"driver desconhecido", func(c *Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"postgres sem URL", func(c *Config) { c.StoreDriver = DriverPostgres }, "DATABASE_URL"},
		{"sem segredo JWT", func(c *Config) { c.JWTSecretKey = "" }, "JWT_SECRET_KEY"},
		{"dias negativos", func(c *Config) { c.ExpiryAlertDays = -1 }, "EXPIRY_ALERT_DAYS"},
		{"fuso inválido", func(c *Config) { c.Timezone = "Marte/Olympus" }, "TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
