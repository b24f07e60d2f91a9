package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort     string
	APIBaseURL     string
	SessionTTL     time.Duration
	CookieSecure   bool
	HTTPTimeout    time.Duration
	PresenceWindow time.Duration
	RedisURL       string
	ClientProfile  string
	LogLevel       string
}

// StubConfig configures the development stand-in for the remote API.
type StubConfig struct {
	Port      string
	JWTSecret string
	JWTExpiry time.Duration
	LogLevel  string
}

func LoadConfig() (*Config, error) {
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil || sessionTTL <= 0 {
		return nil, errors.New("invalid SESSION_TTL format")
	}
	httpTimeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, errors.New("invalid HTTP_TIMEOUT format")
	}
	presenceWindow, err := time.ParseDuration(getEnv("PRESENCE_WINDOW", "5m"))
	if err != nil || presenceWindow <= 0 {
		return nil, errors.New("invalid PRESENCE_WINDOW format")
	}
	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "true"))
	if err != nil {
		return nil, errors.New("invalid COOKIE_SECURE value")
	}

	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		APIBaseURL:     os.Getenv("API_BASE_URL"),
		SessionTTL:     sessionTTL,
		CookieSecure:   cookieSecure,
		HTTPTimeout:    httpTimeout,
		PresenceWindow: presenceWindow,
		RedisURL:       os.Getenv("REDIS_URL"),
		ClientProfile:  getEnv("CLIENT_PROFILE", "default"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if cfg.APIBaseURL == "" {
		return nil, errors.New("API_BASE_URL is required")
	}

	return cfg, nil
}

func LoadStubConfig() (*StubConfig, error) {
	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "168h"))
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}

	cfg := &StubConfig{
		Port:      getEnv("APISTUB_PORT", "3333"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTExpiry: expiry,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
