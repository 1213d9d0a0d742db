package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[storage]
driver = "memory"

[booking]
lead_time_minutes = 30
max_horizon_days = 14
default_timezone = "Europe/Moscow"

[kafka]
brokers = ["localhost:9092"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Booking.LeadTime())
	assert.Equal(t, 14, cfg.Booking.MaxHorizonDays)
	assert.Equal(t, "Europe/Moscow", cfg.Booking.DefaultTimezone)
	assert.True(t, cfg.Kafka.Enabled())

	// Не указанные значения остаются по умолчанию
	assert.Equal(t, 2, cfg.Booking.MaxClientReschedules)
	assert.Equal(t, 5, cfg.Booking.MaxProviderReschedules)
	assert.Equal(t, 4*time.Hour, cfg.Booking.MinRescheduleNotice())
	assert.Equal(t, 2*time.Hour, cfg.Booking.MinCancelNotice())
	assert.Equal(t, time.Hour, cfg.Booking.MinProviderCancelNotice())
	assert.Equal(t, "booking.notifications", cfg.Kafka.NotificationTopic)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }},
		{"redis locker without addr", func(c *Config) { c.Booking.Locker = LockerRedis }},
		{"negative lead time", func(c *Config) { c.Booking.LeadTimeMinutes = -1 }},
		{"zero horizon", func(c *Config) { c.Booking.MaxHorizonDays = 0 }},
		{"bad timezone", func(c *Config) { c.Booking.DefaultTimezone = "Mars/Olympus" }},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }},
		{"negative cancel notice", func(c *Config) { c.Booking.MinCancelHours = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, Default().Validate())
}
