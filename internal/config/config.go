// Package config loads and validates environment variables at startup.
// Fail-fast: a malformed value is an error, a missing optional one turns the
// feature that needs it off.
package config

import (
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the portal.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. Empty disables sign-in.
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	UploadURL string // image host endpoint; empty disables uploads
	RedisURL  string // empty disables events and the visitor counter

	SweepInterval time.Duration

	// AdminEmails are promoted to admin the first time they sign in.
	AdminEmails []string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	port := 8080
	if s := os.Getenv("PORT"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 65535 {
			return nil, fmt.Errorf("PORT must be a valid port number, got %q", s)
		}
		port = v
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/portal.db"
	}

	interval := 60
	if s := os.Getenv("SWEEP_INTERVAL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be a positive integer, got %q", s)
		}
		interval = v
	}

	admins, err := parseEmails(os.Getenv("ADMIN_EMAILS"))
	if err != nil {
		return nil, err
	}

	callback := os.Getenv("GOOGLE_CALLBACK_URL")
	if callback == "" {
		callback = fmt.Sprintf("http://localhost:%d/auth/google/callback", port)
	}

	return &Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  callback,
		UploadURL:          os.Getenv("UPLOAD_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		SweepInterval:      time.Duration(interval) * time.Minute,
		AdminEmails:        admins,
	}, nil
}

// AuthEnabled reports whether session tokens can be issued.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

// OAuthEnabled reports whether Google sign-in is configured.
func (c *Config) OAuthEnabled() bool {
	return c.AuthEnabled() && c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// IsAdminEmail reports whether email is on the bootstrap admin list.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

func parseEmails(s string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if _, err := mail.ParseAddress(part); err != nil {
			return nil, fmt.Errorf("ADMIN_EMAILS contains an invalid address %q", part)
		}
		out = append(out, part)
	}
	return out, nil
}
