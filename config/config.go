package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the storefront settings read from the environment
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	JWTSecret           string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	LocalStoreDir       string
	AssetsDir           string
	ImageCacheDir       string
	DriveCredentials    string
	DriveFolderID       string
	ChromePath          string
	ShippingConfigPath  string
	NotifyRatePerSecond float64
	NotifyBurst         int
	SessionIdleTTL      time.Duration
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Addr returns the listen address on all interfaces
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// LoadDotEnv loads .env outside production.
// Overload makes .env values win over system environment variables.
func LoadDotEnv(path string) {
	if os.Getenv("ENV") == "production" {
		return
	}
	if err := godotenv.Overload(path); err != nil {
		log.Printf("Warning: .env file not found at %s, using system environment variables", path)
		return
	}
	log.Printf("Successfully loaded environment variables from %s (overriding system variables)", path)
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		Port:               strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		DatabaseURL:        DatabaseURL(),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "data/local"),
		AssetsDir:          getEnv("ASSETS_DIR", "assets"),
		ImageCacheDir:      getEnv("IMAGE_CACHE_DIR", "cache/images"),
		DriveCredentials:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		DriveFolderID:      os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		ChromePath:         os.Getenv("CHROME_PATH"),
		ShippingConfigPath: os.Getenv("SHIPPING_CONFIG"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.NotifyBurst, err = getInt("NOTIFY_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.NotifyRatePerSecond, err = getFloat("NOTIFY_RATE_PER_SEC", 10); err != nil {
		return nil, err
	}
	if cfg.NotifyRatePerSecond <= 0 || cfg.NotifyBurst <= 0 {
		return nil, fmt.Errorf("NOTIFY_RATE_PER_SEC and NOTIFY_BURST must be positive")
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TTL must be positive")
	}
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		log.Printf("⚠️  JWT_SECRET is not set, every request is served as a guest")
	}
	return cfg, nil
}

// DatabaseURL returns DATABASE_URL, or a connection string built from the
// DB_* variables. It is empty when no database is configured.
func DatabaseURL() string {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		return connStr
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	dbname := os.Getenv("DB_NAME")
	if host == "" || user == "" || dbname == "" {
		return ""
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, getEnv("DB_PORT", "5432"), user, os.Getenv("DB_PASSWORD"), dbname, getEnv("DB_SSLMODE", "disable"))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
