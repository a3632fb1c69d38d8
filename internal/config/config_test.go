package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ENVIRONMENT", "LOG_LEVEL", "STORAGE_BACKEND", "REQUEST_TIMEOUT",
	"DYNAMODB_TABLE_NAME", "AWS_REGION", "DYNAMODB_ENDPOINT",
	"MONGODB_URI", "MONGODB_PASSWORD", "MONGODB_DATABASE", "MONGODB_COLLECTION",
	"ALLOWED_ORIGINS", "RABBITMQ_URL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, BackendDynamoDB, cfg.StorageBackend)
	assert.Equal(t, "events-table", cfg.DynamoDBTable)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Empty(t, cfg.DynamoDBEndpoint)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.AllowAllOrigins())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "MongoDB")
	t.Setenv("MONGODB_URI", "mongodb+srv://user:<password>@cluster.example.net")
	t.Setenv("MONGODB_DATABASE", "calendar")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("REQUEST_TIMEOUT", "2500ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendMongoDB, cfg.StorageBackend)
	assert.Equal(t, "calendar", cfg.MongoDBDatabase)
	assert.Equal(t, "events", cfg.MongoDBCollection)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.AllowAllOrigins())
	assert.Equal(t, 2500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown backend":   {"STORAGE_BACKEND": "postgres"},
		"mongo without uri": {"STORAGE_BACKEND": "mongodb"},
		"bad timeout":       {"REQUEST_TIMEOUT": "soon"},
		"negative timeout":  {"REQUEST_TIMEOUT": "-1s"},
		"bad log level":     {"LOG_LEVEL": "verbose"},
		"origin no scheme":  {"ALLOWED_ORIGINS": "example.com"},
		"origin mixed list": {"ALLOWED_ORIGINS": "https://app.example.com,localhost:3000"},
		"origin bad scheme": {"ALLOWED_ORIGINS": "ftp://example.com"},
		"origin bare":       {"ALLOWED_ORIGINS": "https://"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
