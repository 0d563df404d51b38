package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	StationListURL  string
	RealtimeBaseURL string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Polling cadence and upstream lag compensation. The defaults are
	// empirically matched to the upstream publication latency; they are
	// configuration, not law.
	PollInterval     time.Duration
	FetchMinInterval time.Duration
	TimeLag          time.Duration
	SnapshotTimeout  time.Duration
	DirectoryTimeout time.Duration

	// Kafka overlay publishing configuration.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	pollInterval, err := durationEnv("POLL_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}
	fetchMinInterval, err := durationEnv("FETCH_MIN_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}
	timeLag, err := nonNegativeDurationEnv("TIME_LAG", "2s")
	if err != nil {
		return nil, err
	}
	snapshotTimeout, err := durationEnv("SNAPSHOT_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	directoryTimeout, err := durationEnv("DIRECTORY_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		StationListURL:  envOrDefault("STATION_LIST_URL", "http://www.kmoni.bosai.go.jp/webservice/server/pros/latest.json"),
		RealtimeBaseURL: envOrDefault("REALTIME_BASE_URL", "https://weather-kyoshin.east.edge.storage-yahoo.jp"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PollInterval:     pollInterval,
		FetchMinInterval: fetchMinInterval,
		TimeLag:          timeLag,
		SnapshotTimeout:  snapshotTimeout,
		DirectoryTimeout: directoryTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "rendered-overlays"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.StationListURL == "" {
		return nil, errors.New("STATION_LIST_URL is required")
	}
	if cfg.RealtimeBaseURL == "" {
		return nil, errors.New("REALTIME_BASE_URL is required")
	}
	if cfg.FetchMinInterval > cfg.PollInterval {
		return nil, errors.New("FETCH_MIN_INTERVAL must not exceed POLL_INTERVAL")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func nonNegativeDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
