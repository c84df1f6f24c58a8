package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/utils"
)

type Config struct {
	Port        string
	DatabaseURL string

	RedisAddr string
	RedisPass string
	CacheTTL  time.Duration

	JWTKey      string
	RequireAuth bool

	UploadDir string
	Compress  imageset.CompressOptions

	// RecalcPreviousCities also recalculates the cities a property's text
	// referenced before an update.
	RecalcPreviousCities bool

	SendGridAPIKey string
	ContactFrom    string
	ContactTo      string

	LogLevel string
}

// LoadEnv reads .env when present. A missing file only means the process
// environment is used as is.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Debugf("No .env file loaded: %v", err)
	}
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnvWithDefault("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPass:            os.Getenv("REDIS_PASS"),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		JWTKey:               os.Getenv("JWT_KEY"),
		RequireAuth:          getEnvAsBool("REQUIRE_AUTH", false),
		UploadDir:            getEnvWithDefault("UPLOAD_DIR", "uploads"),
		RecalcPreviousCities: getEnvAsBool("RECALC_PREVIOUS_CITIES", false),
		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		ContactFrom:          os.Getenv("CONTACT_FROM"),
		ContactTo:            os.Getenv("CONTACT_TO"),
		LogLevel:             getEnvWithDefault("LOG_LEVEL", "info"),
		Compress: imageset.CompressOptions{
			MaxDimension: getEnvAsInt("MAX_IMAGE_DIMENSION", imageset.DefaultCompressOptions.MaxDimension),
			MaxBytes:     getEnvAsInt("MAX_IMAGE_BYTES", imageset.DefaultCompressOptions.MaxBytes),
			MaxPixels:    getEnvAsInt("MAX_IMAGE_PIXELS", imageset.DefaultCompressOptions.MaxPixels),
		},
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURLFromParts()
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_HOST/DB_NAME must be set")
	}
	if cfg.RequireAuth && cfg.JWTKey == "" {
		return nil, fmt.Errorf("JWT_KEY must be set when REQUIRE_AUTH is enabled")
	}
	return cfg, nil
}

// postgresURLFromParts builds a URL from the discrete DB_* variables.
func postgresURLFromParts() string {
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnvWithDefault("DB_USER", "postgres"), os.Getenv("DB_PASS")),
		Host:     host + ":" + getEnvWithDefault("DB_PORT", "5432"),
		Path:     "/" + name,
		RawQuery: "sslmode=" + getEnvWithDefault("DB_SSL_MODE", "disable"),
	}
	return u.String()
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		utils.Logger.Warnf("Invalid integer for %s: %q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		utils.Logger.Warnf("Invalid boolean for %s: %q, using %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		utils.Logger.Warnf("Invalid duration for %s: %q, using %s", key, value, defaultValue)
	}
	return defaultValue
}
