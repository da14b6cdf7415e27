package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "key")
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("SENSOR_ROW_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.True(t, cfg.Debug)
	assert.Equal(t, "sensor", cfg.SensorTable)
	assert.Equal(t, "status", cfg.SensorColumn)
	assert.Equal(t, int64(1), cfg.SensorRowID)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.EventsEnabled)
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_KEY")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "key")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("SENSOR_ROW_ID", "7")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("EVENTS_ENABLED", "yes")
	t.Setenv("RABBITMQ_URL", "amqp://u:p@broker:5672/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(7), cfg.SensorRowID)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, "amqp://u:p@broker:5672/", cfg.AMQPURL)
}

func TestLoadBadRowID(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "key")
	t.Setenv("SENSOR_ROW_ID", "one")

	_, err := Load()
	assert.ErrorContains(t, err, "SENSOR_ROW_ID")
}

func TestSensorLimitClamps(t *testing.T) {
	t.Setenv("SENSOR_LIMIT_BURST", "0")
	t.Setenv("SENSOR_LIMIT_EVERY", "2s")
	t.Setenv("SENSOR_LIMIT_IDLE", "1s")

	l := LoadSensorLimit()
	assert.Equal(t, 1, l.Burst)
	assert.Equal(t, 2*time.Second, l.Every)
	assert.Equal(t, 2*time.Second, l.Idle)
	assert.Equal(t, "sensor:bucket", l.Prefix)
}

func TestSensorLimitIdleCoversBurst(t *testing.T) {
	t.Setenv("SENSOR_LIMIT_BURST", "30")
	t.Setenv("SENSOR_LIMIT_EVERY", "1m")
	t.Setenv("SENSOR_LIMIT_IDLE", "10m")

	assert.Equal(t, 30*time.Minute, LoadSensorLimit().Idle)
}

func TestLoadConsumer(t *testing.T) {
	t.Setenv("STATUS_LOG_PATH", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")

	cfg := LoadConsumer()
	assert.Equal(t, "logs/sensor.log", cfg.LogPath)
	assert.Equal(t, "amqp://u:p@broker:5672/", cfg.AMQPURL)

	t.Setenv("STATUS_LOG_PATH", "/var/log/relay/status.log")
	assert.Equal(t, "/var/log/relay/status.log", LoadConsumer().LogPath)
}
