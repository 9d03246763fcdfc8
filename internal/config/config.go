package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every environment-backed setting the servers and CLIs need.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret   string
	TokenExpiry time.Duration

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SummaryCacheTTL time.Duration

	AppURL string

	MediaPort   string
	MediaDir    string
	MaxUploadMB int64

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (if present) and the environment. Missing optional values
// fall back to development defaults; JWT_SECRET has no safe default and is
// checked by the callers that need it.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenExpiry: 72 * time.Hour,

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		SummaryCacheTTL: 10 * time.Minute,

		AppURL: getEnvOrDefault("APP_URL", "http://localhost:3000"),

		MediaPort:   getEnvOrDefault("MEDIA_PORT", "8081"),
		MediaDir:    getEnvOrDefault("MEDIA_DIR", "./uploads"),
		MaxUploadMB: 5,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			getEnvOrDefault("DB_USER", "postgres"),
			getEnvOrDefault("DB_PASSWORD", "postgres"),
			getEnvOrDefault("DB_HOST", "localhost"),
			getEnvOrDefault("DB_PORT", "5432"),
			getEnvOrDefault("DB_NAME", "campusmarket"),
		)
	}

	if cfg.RedisAddr == "" {
		if host := os.Getenv("REDIS_HOST"); host != "" {
			cfg.RedisAddr = host + ":" + getEnvOrDefault("REDIS_PORT", "6379")
		}
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if v, err := strconv.Atoi(db); err == nil {
			cfg.RedisDB = v
		}
	}

	if exp := os.Getenv("TOKEN_EXPIRY_HOURS"); exp != "" {
		if v, err := strconv.Atoi(exp); err == nil && v > 0 {
			cfg.TokenExpiry = time.Duration(v) * time.Hour
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
