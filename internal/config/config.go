package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// SLA Config
	IntakeSLA        time.Duration `env:"INTAKE_SLA" envDefault:"10m"`
	AckSLA           time.Duration `env:"ACK_SLA" envDefault:"90s"`
	SLACheckInterval time.Duration `env:"SLA_CHECK_INTERVAL" envDefault:"30s"`

	// Auto-Pilot Config
	AutoAssignMinSeverity   int     `env:"AUTO_ASSIGN_MIN_SEVERITY" envDefault:"5"`
	AutoAssignMaxDistanceKm float64 `env:"AUTO_ASSIGN_MAX_DISTANCE_KM" envDefault:"2"`
	AutoAssignMinScore      float64 `env:"AUTO_ASSIGN_MIN_SCORE" envDefault:"0.75"`

	// Travel Estimator Config
	OSRMURL       string        `env:"OSRM_URL"`
	TravelTimeout time.Duration `env:"TRAVEL_TIMEOUT" envDefault:"2s"`

	// Политика освобождения: очищать ли назначенное агентство при decline/timeout
	// (release-to-pool), либо сохранять его для повторной диспетчеризации
	// в рамках того же агентства (retain-agency-scope)
	ReleaseAgencyOnDecline bool `env:"RELEASE_AGENCY_ON_DECLINE" envDefault:"true"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		HTTPPort:                getEnv("HTTP_PORT", "8080"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:               os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvAsInt("REDIS_DB", 0),
		WebhookURL:              os.Getenv("WEBHOOK_URL"),
		WebhookSecret:           os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:          getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:       getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:        getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		IntakeSLA:               getEnvAsDuration("INTAKE_SLA", 10*time.Minute),
		AckSLA:                  getEnvAsDuration("ACK_SLA", 90*time.Second),
		SLACheckInterval:        getEnvAsDuration("SLA_CHECK_INTERVAL", 30*time.Second),
		AutoAssignMinSeverity:   getEnvAsInt("AUTO_ASSIGN_MIN_SEVERITY", 5),
		AutoAssignMaxDistanceKm: getEnvAsFloat("AUTO_ASSIGN_MAX_DISTANCE_KM", 2),
		AutoAssignMinScore:      getEnvAsFloat("AUTO_ASSIGN_MIN_SCORE", 0.75),
		OSRMURL:                 os.Getenv("OSRM_URL"),
		TravelTimeout:           getEnvAsDuration("TRAVEL_TIMEOUT", 2*time.Second),
		ReleaseAgencyOnDecline:  getEnvAsBool("RELEASE_AGENCY_ON_DECLINE", true),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
