package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	Port          string
	Database      DatabaseConfig
	Redis         RedisConfig
	JWTSecret     string
	AdminEmail    string
	AdminPassword string
	FormURL       string
	Headless      bool
	RunTimeout    time.Duration
	Environment   string
}

func GetDatabaseConfig() DatabaseConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	password := getEnv("DB_PASSWORD", "")

	if password == "" {
		fmt.Println("Warning: DB_PASSWORD environment variable is not set.")
	}

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: password,
		DBName:   getEnv("DB_NAME", "slipgen"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	return RedisConfig{
		// Empty addr means no Redis; the run lease falls back to an
		// in-process lock table.
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetAppConfig() AppConfig {
	timeoutSec, _ := strconv.Atoi(getEnv("RUN_TIMEOUT_SECONDS", "120"))
	headless, _ := strconv.ParseBool(getEnv("BROWSER_HEADLESS", "true"))

	return AppConfig{
		Port:          getEnv("PORT", "8081"),
		Database:      GetDatabaseConfig(),
		Redis:         GetRedisConfig(),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		FormURL:       getEnv("FORM_URL", "https://wafid.com/en/book-appointment/"),
		Headless:      headless,
		RunTimeout:    time.Duration(timeoutSec) * time.Second,
		Environment:   getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
