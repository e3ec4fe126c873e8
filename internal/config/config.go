package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	BlobStore BlobStoreConfig
	Notify    NotifyConfig
	Register  RegisterConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// BlobStoreConfig points at the external receipt and photograph store.
type BlobStoreConfig struct {
	BaseURL string
}

// NotifyConfig points at the transition-event notification sink. An empty
// base URL disables publishing.
type NotifyConfig struct {
	BaseURL string
	Token   string
}

// RegisterConfig holds the dead stock repair sweep schedule.
type RegisterConfig struct {
	CronSchedule string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "asset_engine"),
		},
		BlobStore: BlobStoreConfig{
			BaseURL: os.Getenv("BLOBSTORE_BASE_URL"),
		},
		Notify: NotifyConfig{
			BaseURL: os.Getenv("NOTIFY_BASE_URL"),
			Token:   os.Getenv("NOTIFY_TOKEN"),
		},
		Register: RegisterConfig{
			CronSchedule: getenvWithDefault("DEADSTOCK_CRON_SCHEDULE", "30 2 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.BlobStore.BaseURL == "" {
		return errors.New("BLOBSTORE_BASE_URL must be provided")
	}

	if c.Register.CronSchedule == "" {
		return errors.New("DEADSTOCK_CRON_SCHEDULE must be provided")
	}
	if c.Register.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
