package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string

	Source   string // csv or postgres
	CSVPath  string
	DBConn   string
	RawTable string
	Persist  bool // Store the cleaned table and reports in Postgres

	Workers    int
	Schedule   string // Cron expression, empty disables scheduled runs
	RunOnStart bool

	JWTSecret         string
	AdminUser         string
	AdminPasswordHash string // bcrypt
	HMACSecret        string

	RedisAddr string
	ReportTTL time.Duration

	CBREnabled bool
	CBRURL     string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	NotifyTo     []string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		Source:   strings.ToLower(getEnv("SOURCE", SourceCSV)),
		CSVPath:  getEnv("CSV_PATH", "data/loans.csv"),
		DBConn:   getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=loans sslmode=disable"),
		RawTable: getEnv("RAW_TABLE", "analytics.loans_raw"),
		Persist:  getEnvBool("PERSIST", false),

		Workers:    getEnvInt("WORKERS", 0),
		Schedule:   getEnv("SCHEDULE", ""),
		RunOnStart: getEnvBool("RUN_ON_START", true),

		JWTSecret:         getEnv("JWT_SECRET", "secret"),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		HMACSecret:        getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		ReportTTL: getEnvDuration("REPORT_TTL", 24*time.Hour),

		CBREnabled: getEnvBool("CBR_ENABLED", false),
		CBRURL:     getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "25"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "reports@localhost"),
		NotifyTo:     splitList(getEnv("NOTIFY_TO", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and their combinations
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.CSVPath == "" {
			return fmt.Errorf("CSV_PATH is required for csv source")
		}
	case SourcePostgres:
		if c.RawTable == "" {
			return fmt.Errorf("RAW_TABLE is required for postgres source")
		}
	default:
		return fmt.Errorf("unknown SOURCE %q", c.Source)
	}
	if c.NeedsDB() && c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.HMACSecret == "" {
		return fmt.Errorf("HMAC_SECRET is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must not be negative")
	}
	if len(c.NotifyTo) > 0 && c.SenderEmail == "" {
		return fmt.Errorf("SENDER_EMAIL is required when NOTIFY_TO is set")
	}
	return nil
}

// NeedsDB reports whether a Postgres connection must be opened
func (c *Config) NeedsDB() bool {
	return c.Source == SourcePostgres || c.Persist
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultVal)))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultVal)))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, defaultVal.String()))
	if err != nil {
		return defaultVal
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
