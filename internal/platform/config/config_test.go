package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"STORAGE_DRIVER": "memory"}))

	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, 72*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, AuditSinkLog, cfg.AuditSink)
	assert.Equal(t, "600-M", cfg.RateLimit)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestFromViper_Lists(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"STORAGE_DRIVER":       "MEMORY",
		"AUDIT_SINK":           "kafka",
		"KAFKA_BROKERS":        "k1:9092, k2:9092,",
		"CORS_ALLOWED_ORIGINS": "https://ops.example.com",
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://ops.example.com"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"postgres without url", map[string]any{"STORAGE_DRIVER": "postgres"}},
		{"unknown driver", map[string]any{"STORAGE_DRIVER": "sqlite"}},
		{"kafka without brokers", map[string]any{"STORAGE_DRIVER": "memory", "AUDIT_SINK": "kafka"}},
		{"unknown sink", map[string]any{"STORAGE_DRIVER": "memory", "AUDIT_SINK": "stdout"}},
		{"zero lock timeout", map[string]any{"STORAGE_DRIVER": "memory", "LOCK_TIMEOUT": "0s"}},
		{"default secret in production", map[string]any{"STORAGE_DRIVER": "memory", "IS_PRODUCTION": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromViper(newViper(tt.values))
			assert.Error(t, err)
		})
	}
}
