package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cardregistry/internal/batch"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort   string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	JWTSecret    string
	TokenTTL     time.Duration
	CardHashSalt string
	SwaggerHost  string
	LogLevel     string
	LogFormat    string

	// Upload and throttling limits for the HTTP layer.
	MaxUploadSize string
	RateLimitRPS  float64

	// Batch file decoding.
	BatchLayout        batch.Layout
	BatchHeaderOffsets batch.HeaderOffsets
	BatchStrictTrailer bool
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		MySQLDSN:           getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/cards?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		TokenTTL:           getEnvDuration("TOKEN_TTL", 60*time.Minute),
		CardHashSalt:       os.Getenv("CARD_HASH_SALT"),
		SwaggerHost:        os.Getenv("SWAGGER_HOST"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		MaxUploadSize:      getEnv("MAX_UPLOAD_SIZE", "10M"),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 20),
		BatchLayout:        getEnvLayout("BATCH_LAYOUT", batch.LayoutTokens),
		BatchHeaderOffsets: getEnvOffsets("BATCH_HEADER_OFFSETS", batch.OffsetsCurrent),
		BatchStrictTrailer: getEnvBool("BATCH_STRICT_TRAILER", false),
	}
}

// BatchOptions returns the decoder options selected by configuration.
func (c *Config) BatchOptions() batch.Options {
	return batch.Options{
		Layout:        c.BatchLayout,
		Header:        c.BatchHeaderOffsets,
		StrictTrailer: c.BatchStrictTrailer,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return def
}

func getEnvLayout(key string, def batch.Layout) batch.Layout {
	switch l := batch.Layout(strings.ToLower(os.Getenv(key))); l {
	case batch.LayoutTokens, batch.LayoutColumns:
		return l
	default:
		return def
	}
}

// getEnvOffsets accepts the named conventions ("current", "legacy") or an
// explicit "date/code" pair such as "29/37".
func getEnvOffsets(key string, def batch.HeaderOffsets) batch.HeaderOffsets {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return def
	case "current":
		return batch.OffsetsCurrent
	case "legacy":
		return batch.OffsetsLegacy
	}

	date, code, ok := strings.Cut(v, "/")
	if !ok {
		return def
	}
	d, err := strconv.Atoi(strings.TrimSpace(date))
	if err != nil || d < 0 {
		return def
	}
	c, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil || c < 0 {
		return def
	}
	return batch.HeaderOffsets{Date: d, Code: c}
}
