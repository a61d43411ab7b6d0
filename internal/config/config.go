package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	OpenAI     OpenAIConfig
	Knowledge  KnowledgeConfig
	Listing    ListingConfig
	Cache      CacheConfig
	Redis      RedisConfig
	PostgreSQL PostgreSQLConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatMaxTokens       int
	EmbeddingModel      string
	EmbeddingDimensions int
	Timeout             time.Duration
	Enabled             bool
}

// KnowledgeConfig holds knowledge-base configuration
type KnowledgeConfig struct {
	Dir  string // directory holding kb.index plus metadata.json or ids.json/chunks.jsonl
	TopK int
}

// ListingConfig holds property listing API configuration
type ListingConfig struct {
	BaseURL    string
	SiteURL    string // public site, used to derive listing URLs
	Timeout    time.Duration
	MaxRetries int
	PerPage    int
	ShowCount  int
}

// CacheConfig holds response cache configuration.
// The property TTL is deliberately the shortest: inventory changes faster
// than classification rules or company documentation.
type CacheConfig struct {
	IntentTTL   time.Duration
	CompanyTTL  time.Duration
	PropertyTTL time.Duration
	MaxEntries  int
}

// RedisConfig holds optional Redis cache backend configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Enabled  bool
}

// PostgreSQLConfig holds optional PostgreSQL configuration for the
// pgvector-backed chunk store and search logging
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 800),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			Timeout:             getEnvAsDuration("OPENAI_TIMEOUT", 15*time.Second),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
		},
		Knowledge: KnowledgeConfig{
			Dir:  getEnv("KB_DIR", "knowledge/marrfa_kb_out"),
			TopK: getEnvAsInt("KB_TOP_K", 12),
		},
		Listing: ListingConfig{
			BaseURL:    getEnv("LISTING_API_BASE", "https://apiv2.marrfa.com"),
			SiteURL:    getEnv("LISTING_SITE_URL", "https://www.marrfa.com"),
			Timeout:    getEnvAsDuration("LISTING_TIMEOUT", 8*time.Second),
			MaxRetries: getEnvAsInt("LISTING_MAX_RETRIES", 3),
			PerPage:    getEnvAsInt("LISTING_PER_PAGE", 15),
			ShowCount:  getEnvAsInt("LISTING_SHOW_COUNT", 10),
		},
		Cache: CacheConfig{
			IntentTTL:   getEnvAsDuration("CACHE_INTENT_TTL", 30*time.Minute),
			CompanyTTL:  getEnvAsDuration("CACHE_COMPANY_TTL", 30*time.Minute),
			PropertyTTL: getEnvAsDuration("CACHE_PROPERTY_TTL", 5*time.Minute),
			MaxEntries:  getEnvAsInt("CACHE_MAX_ENTRIES", 1000),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnv("REDIS_ADDR", "") != "",
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "marrfa_chat"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			Enabled:            getEnv("DATABASE_URL", getEnv("PG_DSN", "")) != "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
