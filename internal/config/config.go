package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joshua-takyi/events-api/internal/helpers"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendMongoDB  = "mongodb"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	StorageBackend string
	RequestTimeout time.Duration

	DynamoDBTable    string
	AWSRegion        string
	DynamoDBEndpoint string

	MongoDBURI        string
	MongoDBPassword   string
	MongoDBDatabase   string
	MongoDBCollection string

	AllowedOrigins []string
	RabbitMQURL    string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),

		StorageBackend: strings.ToLower(getEnvWithDefault("STORAGE_BACKEND", BackendDynamoDB)),

		DynamoDBTable:    getEnvWithDefault("DYNAMODB_TABLE_NAME", "events-table"),
		AWSRegion:        getEnvWithDefault("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),

		MongoDBURI:        os.Getenv("MONGODB_URI"),
		MongoDBPassword:   os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase:   getEnvWithDefault("MONGODB_DATABASE", "events"),
		MongoDBCollection: getEnvWithDefault("MONGODB_COLLECTION", "events"),

		AllowedOrigins: helpers.SplitCSV(getEnvWithDefault("ALLOWED_ORIGINS", "*")),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
	}

	timeout, err := time.ParseDuration(getEnvWithDefault("REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.RequestTimeout = timeout

	// Validate required fields
	switch cfg.StorageBackend {
	case BackendDynamoDB:
		if cfg.DynamoDBTable == "" {
			return nil, fmt.Errorf("DYNAMODB_TABLE_NAME is required")
		}
	case BackendMongoDB:
		if cfg.MongoDBURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when STORAGE_BACKEND is mongodb")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q (expected dynamodb or mongodb)", cfg.StorageBackend)
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	for _, origin := range cfg.AllowedOrigins {
		if !validOrigin(origin) {
			return nil, fmt.Errorf("ALLOWED_ORIGINS: %q must be * or start with http:// or https://", origin)
		}
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func validOrigin(origin string) bool {
	if origin == "*" {
		return true
	}
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(origin, scheme) && len(origin) > len(scheme) {
			return true
		}
	}
	return false
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Level is the slog level named by LogLevel, info when unparseable.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// AllowAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
