package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Audit sinks the outbox worker can ship to.
const (
	AuditSinkLog   = "log"
	AuditSinkKafka = "kafka"
	AuditSinkNats  = "nats"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	StorageDriver  string
	RunMigrations  bool
	MigrationsPath string
	LockTimeout    time.Duration
	IdempotencyTTL time.Duration
	BcryptCost     int

	JWTSecret string
	JWTIssuer string

	CORSAllowedOrigins []string
	RateLimit          string
	RedisURL           string

	AuditSink          string
	KafkaBrokers       []string
	KafkaAuditTopic    string
	NatsURL            string
	NatsAuditSubject   string
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
}

const insecureJWTSecret = "a-very-secret-key-should-be-longer-and-random"

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("LOCK_TIMEOUT", "5s")
	v.SetDefault("IDEMPOTENCY_TTL", "72h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("JWT_SECRET", insecureJWTSecret)
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("RATE_LIMIT", "600-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("AUDIT_SINK", AuditSinkLog)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_AUDIT_TOPIC", "mobile-money.audit")
	v.SetDefault("NATS_URL", "nats://127.0.0.1:4222")
	v.SetDefault("NATS_AUDIT_SUBJECT", "mobile_money.audit")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "2s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		StorageDriver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		MigrationsPath:     v.GetString("MIGRATIONS_PATH"),
		LockTimeout:        v.GetDuration("LOCK_TIMEOUT"),
		IdempotencyTTL:     v.GetDuration("IDEMPOTENCY_TTL"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimit:          v.GetString("RATE_LIMIT"),
		RedisURL:           v.GetString("REDIS_URL"),
		AuditSink:          strings.ToLower(v.GetString("AUDIT_SINK")),
		KafkaBrokers:       splitList(v.GetString("KAFKA_BROKERS")),
		KafkaAuditTopic:    v.GetString("KAFKA_AUDIT_TOPIC"),
		NatsURL:            v.GetString("NATS_URL"),
		NatsAuditSubject:   v.GetString("NATS_AUDIT_SUBJECT"),
		OutboxPollInterval: v.GetDuration("OUTBOX_POLL_INTERVAL"),
		OutboxBatchSize:    v.GetInt("OUTBOX_BATCH_SIZE"),
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.AuditSink {
	case AuditSinkLog, AuditSinkNats:
	case AuditSinkKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required when AUDIT_SINK=%s", AuditSinkKafka)
		}
	default:
		return nil, fmt.Errorf("unknown AUDIT_SINK %q", cfg.AuditSink)
	}

	if cfg.LockTimeout <= 0 {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be positive")
	}
	if cfg.IdempotencyTTL < 0 {
		return nil, fmt.Errorf("IDEMPOTENCY_TTL must not be negative")
	}

	if cfg.JWTSecret == insecureJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
