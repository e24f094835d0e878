package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultWMSURL is used for companies without an endpoint of their own.
const DefaultWMSURL = "https://api.ongoingsystems.se/colliflow/service.asmx"

// Config holds all application configuration
type Config struct {
	Env       string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Log       LogConfig
	WMS       WMSConfig
	Schedule  ScheduleConfig
	Odoo      OdooConfig
	Admin     AdminConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
	LogSQL   bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
	Dir   string
}

// WMSConfig holds process-wide defaults for the WMS gateway.
// Credentials are per company and live in the database.
type WMSConfig struct {
	DefaultURL string
	Timeout    time.Duration
	DebugLog   bool // store every SOAP envelope
}

// ScheduleConfig holds cron specs per workflow. An empty spec disables the job.
type ScheduleConfig struct {
	Push     string
	Inbound  string
	Tracking string
	Serials  string
	Returns  string
	Odoo     string
}

// OdooConfig holds the ERP mirror connection
type OdooConfig struct {
	URL      string
	Database string
	Username string
	Password string
}

// Enabled reports whether the ERP mirror is configured.
func (c OdooConfig) Enabled() bool {
	return c.URL != "" && c.Database != "" && c.Username != ""
}

// AdminConfig holds the operator account of the admin API.
// PasswordHash is a bcrypt hash; an empty hash disables login.
type AdminConfig struct {
	Username     string
	PasswordHash string
	TokenTTL     time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	timeout, err := getDurationEnv("WMS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getDurationEnv("ADMIN_TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	logLevel := getEnv("LOG_LEVEL", "info")

	return &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "ongoingwms"),
			SSLMode:  getEnv("PG_SSLMODE", "disable"),
			LogSQL:   logLevel == "debug",
		},
		Log: LogConfig{
			Level: logLevel,
			Dir:   getEnv("LOG_DIR", "logs"),
		},
		WMS: WMSConfig{
			DefaultURL: getEnv("WMS_DEFAULT_URL", DefaultWMSURL),
			Timeout:    timeout,
			DebugLog:   getBoolEnv("WMS_DEBUG_LOG", true),
		},
		Schedule: ScheduleConfig{
			Push:     getEnv("SCHEDULE_PUSH", "@every 10m"),
			Inbound:  getEnv("SCHEDULE_INBOUND", "@every 15m"),
			Tracking: getEnv("SCHEDULE_TRACKING", "@every 30m"),
			Serials:  getEnv("SCHEDULE_SERIALS", "@every 1h"),
			Returns:  getEnv("SCHEDULE_RETURNS", "@every 1h"),
			Odoo:     getEnv("SCHEDULE_ODOO", "@every 15m"),
		},
		Odoo: OdooConfig{
			URL:      os.Getenv("ODOO_URL"),
			Database: os.Getenv("ODOO_DB"),
			Username: os.Getenv("ODOO_USER"),
			Password: os.Getenv("ODOO_PASSWORD"),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USER", "admin"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			TokenTTL:     tokenTTL,
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getDurationEnv accepts Go durations ("90s") or plain seconds ("90").
func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
