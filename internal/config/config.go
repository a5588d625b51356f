package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	SiteOrigin string

	// Data API (PostgREST-style REST endpoint in front of Postgres)
	DataAPIURL        string
	DataAPIServiceKey string
	DataAPIAnonKey    string

	// Direct database access (fallback insert path, migrations, matcher)
	DatabaseURL string

	// Redis-backed rate limiting
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	RateLimitMax    int
	RateLimitWindow time.Duration

	// Email notifications
	EmailProvider  string // sendgrid, ses or stub
	SendGridAPIKey string
	LeadsToEmail   string
	LeadsFromEmail string
	LeadsFromName  string

	// AWS (SES sender). Credentials come from the SDK's default chain.
	AWSRegion string

	// Core Web Vitals checker
	PSIAPIKey string
	AlertTo   string
	AlertFrom string

	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		SiteOrigin: strings.TrimRight(getEnv("SITE_ORIGIN", "https://myautoimport.es"), "/"),

		DataAPIURL:        strings.TrimRight(getEnv("DATA_API_URL", ""), "/"),
		DataAPIServiceKey: getEnv("DATA_API_SERVICE_KEY", ""),
		DataAPIAnonKey:    getEnv("DATA_API_ANON_KEY", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 2),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 10*time.Minute),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		LeadsToEmail:   getEnv("LEADS_TO_EMAIL", ""),
		LeadsFromEmail: getEnv("LEADS_FROM_EMAIL", "onboarding@myautoimport.es"),
		LeadsFromName:  getEnv("LEADS_FROM_NAME", "My Auto Import"),

		AWSRegion: getEnv("AWS_REGION", "eu-west-1"),

		PSIAPIKey: getEnv("PSI_API_KEY", ""),
		AlertTo:   getEnv("ALERT_TO", ""),
		AlertFrom: getEnv("ALERT_FROM", "alerts@myautoimport.es"),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// PersistenceConfigured reports whether at least one lead insert path is usable.
func (c *Config) PersistenceConfigured() bool {
	return (c.DataAPIURL != "" && c.DataAPIServiceKey != "") || c.DatabaseURL != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
