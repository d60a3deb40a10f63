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

// app config, mostly AI provider and transport related
type Config struct {
	Provider       string
	Temperature    float64
	LLMTimeout     time.Duration
	Port           string
	AllowedOrigins []string
	JWTSecret      string
	AuthRequired   bool
	RecordBackend  string
	RedisAddr      string
	Postgres       PostgresConfig
	Export         ExportConfig
}

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	DB       string
	Port     string
	SSLMode  string
}

// DSN renders the connection string for gorm's postgres driver
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.DB, p.Port, p.SSLMode)
}

// settings for the scheduled interview record export
type ExportConfig struct {
	Enabled  bool
	Schedule string
	Dir      string
}

var supportedProviders = map[string]bool{
	"groq":   true,
	"gemini": true,
}

var supportedRecordBackends = map[string]bool{
	"none":     true,
	"postgres": true,
	"redis":    true,
}

// loads configuration from environment variables, reading .env when present
func LoadConfig() (*Config, error) {
	// a missing .env file is normal outside local development
	_ = godotenv.Load()

	config := &Config{
		Provider:       strings.ToLower(getEnvOrDefault("AI_PROVIDER", "groq")),
		Temperature:    getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		Port:           getEnvOrDefault("PORT", "5000"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AuthRequired:   getEnvBool("AUTH_REQUIRED", false),
		RecordBackend:  strings.ToLower(getEnvOrDefault("RECORD_BACKEND", "none")),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Postgres: PostgresConfig{
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			DB:       getEnvOrDefault("POSTGRES_DB", "postgres"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},
		Export: ExportConfig{
			Enabled:  getEnvBool("EXPORT_ENABLED", false),
			Schedule: getEnvOrDefault("EXPORT_SCHEDULE", "0 2 * * *"),
			Dir:      getEnvOrDefault("EXPORT_DIR", "./exports"),
		},
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if !supportedProviders[config.Provider] {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: groq, gemini")
	}
	if config.Temperature <= 0 || config.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be in (0, 2], got %v", config.Temperature)
	}
	if config.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %v", config.LLMTimeout)
	}
	if !supportedRecordBackends[config.RecordBackend] {
		return errors.New("unsupported record backend: " + config.RecordBackend)
	}
	if config.AuthRequired && config.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_REQUIRED is true")
	}
	// provider credentials are validated by the provider packages
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
