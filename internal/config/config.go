package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve in images without zoneinfo
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Log           LogConfig
	PubSub        PubSubConfig
	Redis         RedisConfig
	Confirmation  ConfirmationConfig
	App           AppConfig
	Observability ObservabilityConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	SlowQueryThreshold time.Duration
}

type PubSubConfig struct {
	NatsURL         string
	GCloudProjectID string
}

// RedisConfig selects the shared pending-action store. An empty URL keeps
// pending actions in process memory.
type RedisConfig struct {
	URL string
}

type ConfirmationConfig struct {
	TTL           time.Duration
	ProcessingTTL time.Duration
}

type AppConfig struct {
	Location *time.Location
}

type ObservabilityConfig struct {
	Environment  string
	SamplingRate float64
}

func Load() (*Config, error) {
	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("SERVER_READ_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("SERVER_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	slowQueryThreshold, err := time.ParseDuration(getEnv("DB_SLOW_QUERY_THRESHOLD", "200ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_SLOW_QUERY_THRESHOLD: %w", err)
	}

	confirmationTTL, err := positiveDuration("CONFIRMATION_TTL", "5m")
	if err != nil {
		return nil, err
	}

	processingTTL, err := positiveDuration("CONFIRMATION_PROCESSING_TTL", "10m")
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	samplingRate, err := strconv.ParseFloat(getEnv("OTEL_SAMPLING_RATE", "1.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLING_RATE: %w", err)
	}

	if samplingRate < 0 || samplingRate > 1 {
		return nil, fmt.Errorf("invalid OTEL_SAMPLING_RATE: %v is outside [0, 1]", samplingRate)
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("POSTGRES_DSN environment variable is required")
	}

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         serverPort,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Database: DatabaseConfig{
			DSN:                dsn,
			MaxOpenConns:       maxOpenConns,
			MaxIdleConns:       maxIdleConns,
			ConnMaxLifetime:    connMaxLifetime,
			SlowQueryThreshold: slowQueryThreshold,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		PubSub: PubSubConfig{
			NatsURL:         os.Getenv("NATS_URL"),
			GCloudProjectID: os.Getenv("GCLOUD_PROJECT_ID"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Confirmation: ConfirmationConfig{
			TTL:           confirmationTTL,
			ProcessingTTL: processingTTL,
		},
		App: AppConfig{
			Location: location,
		},
		Observability: ObservabilityConfig{
			Environment:  getEnv("ENV", "dev"),
			SamplingRate: samplingRate,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// positiveDuration rejects zero: a zero TTL would expire entries on write.
func positiveDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}

	return d, nil
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
