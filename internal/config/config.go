package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Token store kinds accepted in TOKEN_STORE
const (
	TokenStoreMemory = "memory"
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
)

// Config holds the settings of the mock server, the probe and the client services
type Config struct {
	Port     int
	LogLevel string

	APIBaseURL       string
	HTTPTimeout      time.Duration
	MockFallback     bool
	EndpointsFile    string
	ChatPollInterval time.Duration

	TokenStore    string
	TokenFile     string
	RedisAddr     string
	RedisPassword string
}

// Load reads configuration from the environment, after a .env file if one exists
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	cfg.Port = cast.ToInt(getOrReturnDefault("PORT", 8080))
	cfg.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))

	cfg.APIBaseURL = cast.ToString(getOrReturnDefault("API_BASE_URL", "http://127.0.0.1:8000/api/"))
	cfg.HTTPTimeout = cast.ToDuration(getOrReturnDefault("HTTP_TIMEOUT", "10s"))
	cfg.MockFallback = cast.ToBool(getOrReturnDefault("MOCK_FALLBACK", true))
	cfg.EndpointsFile = cast.ToString(getOrReturnDefault("ENDPOINTS_FILE", ""))
	cfg.ChatPollInterval = cast.ToDuration(getOrReturnDefault("CHAT_POLL_INTERVAL", "5s"))

	cfg.TokenStore = strings.ToLower(cast.ToString(getOrReturnDefault("TOKEN_STORE", TokenStoreMemory)))
	cfg.TokenFile = cast.ToString(getOrReturnDefault("TOKEN_FILE", ".marketplace-token.yaml"))
	cfg.RedisAddr = cast.ToString(getOrReturnDefault("REDIS_ADDR", "localhost:6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: HTTP_TIMEOUT must be positive")
	}
	if c.ChatPollInterval <= 0 {
		return fmt.Errorf("config: CHAT_POLL_INTERVAL must be positive")
	}
	switch c.TokenStore {
	case TokenStoreMemory, TokenStoreFile, TokenStoreRedis:
	default:
		return fmt.Errorf("config: unknown TOKEN_STORE %q", c.TokenStore)
	}
	return nil
}

func getOrReturnDefault(key string, defaultValue any) any {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
