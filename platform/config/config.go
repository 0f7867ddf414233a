// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for redis-backed infrastructure
// (cache-invalidation broadcast and the reminder scheduler).
type RedisConfig interface {
	GetRedisURL() string
	GetInvalidationChannel() string
}

// SchedulerConfig provides settings for the asynq reminder scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// SchedulingConfig provides the business-hours rules for the
// appointment availability engine.
type SchedulingConfig interface {
	GetBusinessStartHour() int
	GetBusinessEndHour() int
	GetSlotMinutes() int
	GetBusinessLocation() *time.Location
}

// OwnerConfig provides the operator addresses used by default-owner resolution.
type OwnerConfig interface {
	GetOperatorEmails() []string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	RedisURL            string
	RedisTLSInsecure    bool
	InvalidationChannel string
	AsynqQueueName      string
	AsynqConcurrency    int
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	BusinessStartHour   int
	BusinessEndHour     int
	SlotMinutes         int
	BusinessTimezone    string
	OperatorEmails      []string
	EmailEnabled        bool
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	EmailFromName       string
	EmailFromAddress    string

	businessLocation *time.Location
}

// Load reads configuration from the environment, applying defaults.
// A .env file is loaded first when present (development convenience).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		RedisTLSInsecure:    getBoolEnv("REDIS_TLS_INSECURE", false),
		InvalidationChannel: getEnv("INVALIDATION_CHANNEL", "crm:invalidations"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    getIntEnv("ASYNQ_CONCURRENCY", 10),
		CORSAllowAll:        getBoolEnv("CORS_ALLOW_ALL", false),
		CORSOrigins:         getListEnv("CORS_ORIGINS"),
		CORSAllowCreds:      getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		BusinessStartHour:   getIntEnv("BUSINESS_START_HOUR", 6),
		BusinessEndHour:     getIntEnv("BUSINESS_END_HOUR", 23),
		SlotMinutes:         getIntEnv("SLOT_MINUTES", 30),
		BusinessTimezone:    getEnv("BUSINESS_TIMEZONE", "America/Sao_Paulo"),
		OperatorEmails:      getListEnv("OPERATOR_EMAILS"),
		EmailEnabled:        getBoolEnv("EMAIL_ENABLED", false),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getIntEnv("SMTP_PORT", 587),
		SMTPUsername:        os.Getenv("SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "CRM"),
		EmailFromAddress:    os.Getenv("EMAIL_FROM_ADDRESS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.BusinessEndHour <= cfg.BusinessStartHour {
		return nil, fmt.Errorf("BUSINESS_END_HOUR must be after BUSINESS_START_HOUR")
	}
	if cfg.SlotMinutes <= 0 || cfg.SlotMinutes > 60 {
		return nil, fmt.Errorf("SLOT_MINUTES must be between 1 and 60")
	}

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", cfg.BusinessTimezone, err)
	}
	cfg.businessLocation = loc

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool   { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string            { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool      { return c.RedisTLSInsecure }
func (c *Config) GetInvalidationChannel() string { return c.InvalidationChannel }
func (c *Config) GetAsynqQueueName() string      { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int       { return c.AsynqConcurrency }

func (c *Config) GetBusinessStartHour() int            { return c.BusinessStartHour }
func (c *Config) GetBusinessEndHour() int              { return c.BusinessEndHour }
func (c *Config) GetSlotMinutes() int                  { return c.SlotMinutes }
func (c *Config) GetBusinessLocation() *time.Location  { return c.businessLocation }

func (c *Config) GetOperatorEmails() []string { return c.OperatorEmails }

func (c *Config) GetEmailEnabled() bool        { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string          { return c.SMTPHost }
func (c *Config) GetSMTPPort() int             { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string      { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string      { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string     { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string  { return c.EmailFromAddress }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
