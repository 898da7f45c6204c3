// Package config provides centralized configuration management for the news widget.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net/url"
	"time"
	"unicode/utf8"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Feed     FeedConfig
	Display  DisplayConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 45s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"45s"`
}

// FeedConfig holds settings for the upstream news sheet.
type FeedConfig struct {
	// URL is the published sheet endpoint (required)
	// Supports both FEED_URL and GOOGLE_SHEET_URL env vars
	URL string `env:"FEED_URL" envAlt:"GOOGLE_SHEET_URL" required:"true"`

	// Format is auto, csv, json or rss (default: auto)
	Format string `env:"FEED_FORMAT" default:"auto"`

	// RefreshInterval is the time between background refreshes (default: 5m)
	RefreshInterval time.Duration `env:"FEED_REFRESH_INTERVAL" default:"5m"`

	// FetchTimeout bounds a single fetch (default: 30s)
	FetchTimeout time.Duration `env:"FEED_FETCH_TIMEOUT" default:"30s"`

	// MaxBodySize is the largest accepted body in bytes (default: 10MB)
	MaxBodySize int64 `env:"FEED_MAX_BODY_SIZE" default:"10485760"`

	// UserAgent overrides the fetch User-Agent header
	UserAgent string `env:"FEED_USER_AGENT"`

	// Delimiter is the CSV field separator, a single character (default: ,)
	Delimiter string `env:"FEED_DELIMITER" default:","`
}

// Comma returns the delimiter as a rune.
func (c *FeedConfig) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// DisplayConfig holds rendering settings.
type DisplayConfig struct {
	// Timezone is the IANA zone datelines are rendered in (default: UTC)
	Timezone string `env:"DISPLAY_TIMEZONE" default:"UTC"`

	// SummaryLimit is the maximum summary length in characters (default: 300)
	SummaryLimit int `env:"DISPLAY_SUMMARY_LIMIT" default:"300"`
}

// Location loads the display timezone, falling back to UTC.
func (c *DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// RefreshLimit is requests per minute for the manual refresh endpoint (default: 6)
	RefreshLimit int `env:"RATE_LIMIT_REFRESH" default:"6"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// redactURL drops credentials and the query string, which for published
// sheets carries the deployment key.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "[MASKED]"
	}
	u.User = nil
	if u.RawQuery != "" {
		u.RawQuery = "MASKED"
	}
	return u.String()
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
