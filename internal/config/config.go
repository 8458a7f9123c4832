package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// RateLimitRule caps requests per client address within a sliding window.
type RateLimitRule struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitConfig maps endpoint paths to their admission rules. Endpoints
// absent from the table are never limited.
type RateLimitConfig struct {
	Rules     map[string]RateLimitRule
	Retention time.Duration
}

func Load() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "studyws"),
			Password: getEnv("DB_PASSWORD", "studyws"),
			DBName:   getEnv("DB_NAME", "studyws"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:             secret,
			AccessTokenExpiry:  getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getDurationEnv("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Rules: map[string]RateLimitRule{
				"/auth/login":    getRuleEnv("RATE_LIMIT_LOGIN", RateLimitRule{5, 60 * time.Second}),
				"/auth/register": getRuleEnv("RATE_LIMIT_REGISTER", RateLimitRule{3, 60 * time.Second}),
				"/auth/refresh":  getRuleEnv("RATE_LIMIT_REFRESH", RateLimitRule{10, 60 * time.Second}),
			},
			Retention: getDurationEnv("RATE_LIMIT_RETENTION", 24*time.Hour),
		},
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getRuleEnv parses "max/windowSeconds", e.g. "5/60".
func getRuleEnv(key string, defaultValue RateLimitRule) RateLimitRule {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return defaultValue
	}

	max, err := strconv.Atoi(parts[0])
	if err != nil || max <= 0 {
		return defaultValue
	}

	seconds, err := strconv.Atoi(parts[1])
	if err != nil || seconds <= 0 {
		return defaultValue
	}

	return RateLimitRule{MaxRequests: max, Window: time.Duration(seconds) * time.Second}
}
