package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Access tokens (JWT)
	JWTSecret       string
	JWTIssuer       string
	JWTAccessExpiry time.Duration

	// Refresh sessions
	RefreshTTLDays int

	// Magic links
	MagicLinkTTL time.Duration
	MagicLinkURL string

	// Mail
	MailFrom     string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string

	// Cookies
	CookieSecure bool

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "trailmark_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "trailmark"),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),

		RefreshTTLDays: parseInt(getEnv("REFRESH_TTL_DAYS", "30"), 30),

		MagicLinkTTL: parseDuration(getEnv("MAGIC_LINK_TTL", "15m")),
		MagicLinkURL: getEnv("MAGIC_LINK_URL", "http://localhost:3000/login/email"),

		MailFrom:     getEnv("MAIL_FROM", "no-reply@trailmark.app"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		CookieSecure: getEnv("COOKIE_SECURE", "true") == "true",

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

// RefreshExpiry is the refresh session lifetime as a duration.
func (c *Config) RefreshExpiry() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
