package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	Environment string
	JWTSecret   string
	TokenTTL    time.Duration

	// Exactly one store backend is active: Postgres when DatabaseURL is
	// set, otherwise the xlsx workbook at WorkbookPath.
	DatabaseURL  string
	WorkbookPath string
	StoreTimeout time.Duration

	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminPassword string

	EmailEnabled bool
	EmailFrom    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPUseTLS   bool

	ApproverPolicy          string
	EnforceBlackoutOnSubmit bool
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getEnv("APP_ADDR", ":8080"),
		Environment: getEnv("APP_ENV", "development"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 12*time.Hour),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		WorkbookPath: getEnv("WORKBOOK_PATH", "ptohub.xlsx"),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 30*time.Second),

		SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Admin"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),

		EmailEnabled: getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:    getEnv("EMAIL_FROM", "no-reply@example.com"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:   getEnvBool("SMTP_USE_TLS", true),

		ApproverPolicy:          getEnv("APPROVER_POLICY", "live"),
		EnforceBlackoutOnSubmit: getEnvBool("ENFORCE_BLACKOUT_ON_SUBMIT", false),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.DatabaseURL == "" && strings.TrimSpace(c.WorkbookPath) == "" {
		return fmt.Errorf("either DATABASE_URL or WORKBOOK_PATH must be set")
	}
	if c.ApproverPolicy != "live" && c.ApproverPolicy != "snapshot" {
		return fmt.Errorf("APPROVER_POLICY must be live or snapshot")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
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

func getEnvInt(key string, fallback int) int {
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
