package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"finsight/internal/logger"
)

// Config holds the PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig reads connection settings from the environment, loading
// .env first when present.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debug("no .env file found, using environment")
	}

	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "finsight"),
		Password: getEnv("DB_PASSWORD", "finsight"),
		DBName:   getEnv("DB_NAME", "finsight"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}, nil
}

// DSN returns the key=value connection string GORM expects.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// form golang-migrate expects.
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
