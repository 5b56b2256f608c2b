package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"recipe-share-go/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort       string
	Env            string
	AllowedOrigins []string
	DB             DBConfig
	Auth           AuthConfig
	Cache          CacheConfig
	Storage        StorageConfig
	RateLimit      RateLimitConfig
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig points at the external identity provider. Tokens are verified
// locally with JWTSecret when it is set, otherwise by calling the provider's
// userinfo endpoint.
type AuthConfig struct {
	URL            string
	PublishableKey string
	JWTSecret      string
	Timeout        time.Duration
	SkipAuth       bool
	MockUserID     string
	MockUserEmail  string
	MockUserName   string
	MockUserAvatar string
}

type CacheConfig struct {
	Backend       string // "memory" or "redis"
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type StorageConfig struct {
	Root           string
	BaseURL        string
	MaxUploadBytes int64
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

func Load(log logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
		log.Debug("config: no .env file found")
	} else {
		log.Info("config: .env loaded")
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: splitList(getEnv("HTTP_ALLOWED_ORIGINS", "http://localhost:5173")),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "recipe_share"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			URL:            getEnv("AUTH_URL", ""),
			PublishableKey: getEnv("AUTH_PUBLISHABLE_KEY", ""),
			JWTSecret:      getEnv("AUTH_JWT_SECRET", ""),
			Timeout:        getEnvDuration("AUTH_TIMEOUT", 5*time.Second),
			SkipAuth:       getEnvBool("AUTH_SKIP", false),
			MockUserID:     getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail:  getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:   getEnv("AUTH_MOCK_USER_NAME", ""),
			MockUserAvatar: getEnv("AUTH_MOCK_USER_AVATAR_URL", ""),
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			TTL:           getEnvDuration("CACHE_TTL", time.Minute),
			RedisAddr:     getEnv("CACHE_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("CACHE_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("CACHE_REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Root:           getEnv("STORAGE_ROOT", "./data/media"),
			BaseURL:        getEnv("STORAGE_BASE_URL", "/static"),
			MaxUploadBytes: int64(getEnvInt("STORAGE_MAX_UPLOAD_MB", 50)) << 20,
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst:   getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
