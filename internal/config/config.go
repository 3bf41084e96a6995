package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Mail provider
	MailBaseURL string
	MailAPIKey  string
	MailFrom    string
	MailTimeout time.Duration

	// Maximum provider calls per second
	SendRate int

	// Engine
	EventFetchLimit int
	// RunInterval enables the internal scheduler; 0 relies on an external
	// cron hitting POST /api/v1/runs instead.
	RunInterval time.Duration

	// Kafka ingestion (disabled when no brokers are configured)
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 2)),

		MailBaseURL: getEnv("MAIL_BASE_URL", "https://api.mailchannel.example/v1/send"),
		MailAPIKey:  getEnv("MAIL_API_KEY", ""),
		MailFrom:    getEnv("MAIL_FROM", "alerts@bizlink.example"),
		MailTimeout: getDuration("MAIL_TIMEOUT", 10*time.Second),

		SendRate: getInt("SEND_RATE_PER_SEC", 10),

		EventFetchLimit: getInt("EVENT_FETCH_LIMIT", 1000),
		RunInterval:     getDuration("RUN_INTERVAL", 0),

		KafkaBrokers: getList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "admin-events"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "digest-engine"),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
