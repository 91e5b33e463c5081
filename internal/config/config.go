package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Money
	BaseCurrency string

	// Exchange rates
	FXBaseURL      string
	FXCacheTTL     time.Duration
	FXCryptoPrices map[string]float64

	// Ops endpoints (rate refresh) API key
	OpsAPIKey string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finsight"),
		DBPassword: getEnv("DB_PASSWORD", "finsight"),
		DBName:     getEnv("DB_NAME", "finsight"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		BaseCurrency: getEnv("BASE_CURRENCY", "USD"),

		FXBaseURL:      getEnv("FX_BASE_URL", "https://api.frankfurter.app"),
		FXCryptoPrices: parseCryptoPrices(getEnv("FX_CRYPTO_PRICES", "")),

		OpsAPIKey: getEnv("OPS_API_KEY", ""),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)
	config.FXCacheTTL = getDuration("FX_CACHE_TTL", time.Hour)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a duration environment variable, falling back on
// the default when unset or malformed.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

// parseCryptoPrices parses "BTC=65000,ETH=3000" into a ticker -> price
// map. Prices are quoted in the base currency. Malformed entries are
// skipped with a warning rather than failing startup.
func parseCryptoPrices(raw string) map[string]float64 {
	prices := make(map[string]float64)
	if raw == "" {
		return prices
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			log.Printf("Warning: skipping malformed FX_CRYPTO_PRICES entry '%s'\n", pair)
			continue
		}
		price, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || price <= 0 {
			log.Printf("Warning: skipping FX_CRYPTO_PRICES entry '%s': bad price\n", pair)
			continue
		}
		prices[strings.ToUpper(parts[0])] = price
	}
	return prices
}
