package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://www.kmoni.bosai.go.jp/webservice/server/pros/latest.json", cfg.StationListURL)
	assert.Equal(t, "https://weather-kyoshin.east.edge.storage-yahoo.jp", cfg.RealtimeBaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, 1*time.Second, cfg.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.FetchMinInterval)
	assert.Equal(t, 2*time.Second, cfg.TimeLag)
	assert.Equal(t, 5*time.Second, cfg.SnapshotTimeout)
	assert.Equal(t, 10*time.Second, cfg.DirectoryTimeout)

	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "rendered-overlays", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("STATION_LIST_URL", "http://localhost:9000/sitelist.json")
	t.Setenv("REALTIME_BASE_URL", "http://localhost:9000")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("FETCH_MIN_INTERVAL", "250ms")
	t.Setenv("TIME_LAG", "3s")
	t.Setenv("SNAPSHOT_TIMEOUT", "4s")
	t.Setenv("DIRECTORY_TIMEOUT", "15s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-overlays")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/sitelist.json", cfg.StationListURL)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchMinInterval)
	assert.Equal(t, 3*time.Second, cfg.TimeLag)
	assert.Equal(t, 4*time.Second, cfg.SnapshotTimeout)
	assert.Equal(t, 15*time.Second, cfg.DirectoryTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-overlays", cfg.KafkaTopic)
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_NegativePollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_ZeroTimeLagAllowed(t *testing.T) {
	t.Setenv("TIME_LAG", "0s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.TimeLag)
}

func TestLoad_NegativeTimeLag(t *testing.T) {
	t.Setenv("TIME_LAG", "-2s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIME_LAG")
}

func TestLoad_RateLimitExceedsCadence(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "1s")
	t.Setenv("FETCH_MIN_INTERVAL", "2s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_MIN_INTERVAL")
}

func TestLoad_KafkaBrokersImplyEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
