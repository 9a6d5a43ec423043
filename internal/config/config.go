package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Cache     CacheConfig
	ItemDB    ItemDBConfig
	Vault     VaultConfig
	AI        AIConfig
	Import    ImportConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"fieldstock-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	APIKey      string `envconfig:"API_KEY" default:""` // gateway key for device pairing
}

// CacheConfig holds cache and sync buffer settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ItemDBConfig holds inventory database settings.
type ItemDBConfig struct {
	Type string `envconfig:"ITEM_DB_TYPE" default:"sqlite"` // sqlite, postgres, mysql, or mongodb
	Path string `envconfig:"ITEM_DB_PATH" default:"./data/fieldstock.db"`
	// PostgreSQL / MySQL settings
	Host     string `envconfig:"ITEM_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"ITEM_DB_PORT" default:"5432"`
	Name     string `envconfig:"ITEM_DB_NAME" default:"fieldstock"`
	User     string `envconfig:"ITEM_DB_USER" default:"postgres"`
	Password string `envconfig:"ITEM_DB_PASS" default:""`
	SSLMode  string `envconfig:"ITEM_DB_SSLMODE" default:"disable"`
	// MongoDB settings
	MongoURI        string `envconfig:"MONGODB_URI" default:""`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"fieldstock"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"items"`
}

// VaultConfig holds credential vault settings.
type VaultConfig struct {
	// EncryptionKey is a hex-encoded 32-byte key. Vault endpoints are
	// disabled when it is unset.
	EncryptionKey string `envconfig:"VAULT_ENCRYPTION_KEY" default:""`
	Path          string `envconfig:"VAULT_DB_PATH" default:"./data/vault.db"`
}

// AIConfig holds invoice extraction settings.
type AIConfig struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" default:""`
	Model        string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
}

// ImportConfig holds file import limits.
type ImportConfig struct {
	MaxFileSize int64 `envconfig:"IMPORT_MAX_FILE_SIZE" default:"10485760"` // 10 MiB
}

// RetentionConfig controls background cleanup of import history.
type RetentionConfig struct {
	ImportLogAge    time.Duration `envconfig:"IMPORT_LOG_RETENTION" default:"2160h"` // 90 days
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"24h"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (i *ItemDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		i.User, i.Password, i.Host, i.Port, i.Name, i.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (i *ItemDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		i.User, i.Password, i.Host, i.Port, i.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
