// Package config loads portal settings from the environment.
// File: config/config.go
package config

import (
	"crypto/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"hspace-portal/logger"
)

// Config holds every runtime setting of the portal.
type Config struct {
	Port         string
	Env          string
	SecretKey    []byte
	DatabasePath string
	TemplatesDir string
	StaticDir    string
	LogDir       string
	CookieSecure bool

	AdminUsernames []string
	ApplicationURL string

	// external event catalog
	CatalogAPIURL    string
	CatalogUserAgent string
	CatalogTimeout   time.Duration
	CatalogWindow    time.Duration
	CatalogLookahead time.Duration
	CatalogPageLimit int

	// wargame uploads
	UploadDir         string
	AllowedExtensions []string

	MetricsEnabled   bool
	MetricsNamespace string
	TracingEnabled   bool
}

// Load reads the configuration. Call godotenv.Load first to pick up a .env file.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("APP_ENV", "development"),
		SecretKey:    getSecretEnv("SECRET_KEY"),
		DatabasePath: getEnv("DATABASE_PATH", "hspace.db"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "templates"),
		StaticDir:    getEnv("STATIC_DIR", "static"),
		LogDir:       os.Getenv("LOG_DIR"),
		CookieSecure: getBoolEnv("COOKIE_SECURE", false),

		AdminUsernames: getListEnv("ADMIN_USERNAMES", nil),
		ApplicationURL: strings.TrimRight(getEnv("APPLICATION_URL", "http://localhost:8080"), "/"),

		CatalogAPIURL:    getEnv("CATALOG_API_URL", "https://ctftime.org/api/v1/events/"),
		CatalogUserAgent: getEnv("CATALOG_USER_AGENT", "HSpaceCatalog/1.0 (+https://example.com)"),
		CatalogTimeout:   getDurationEnv("CATALOG_TIMEOUT", 10*time.Second),
		CatalogWindow:    getDurationEnv("CATALOG_CACHE_WINDOW", 900*time.Second),
		CatalogLookahead: getDurationEnv("CATALOG_LOOKAHEAD", 90*24*time.Hour),
		CatalogPageLimit: getIntEnv("CATALOG_PAGE_LIMIT", 30),

		UploadDir:         getEnv("WARGAME_UPLOAD_DIR", "static/uploads/wargame"),
		AllowedExtensions: getListEnv("WARGAME_ALLOWED_EXTENSIONS", []string{"zip", "tar", "gz", "7z", "pdf", "txt", "md"}),

		MetricsEnabled:   getBoolEnv("METRICS_ENABLED", false),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "HSpace"),
		TracingEnabled:   getBoolEnv("TRACING_ENABLED", false),
	}
}

// IsAdmin reports whether username is listed in ADMIN_USERNAMES.
func (c *Config) IsAdmin(username string) bool {
	for _, admin := range c.AdminUsernames {
		if admin == username {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logger.Warn.Printf("Config: invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		logger.Warn.Printf("Config: invalid boolean value for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

// getDurationEnv accepts Go duration syntax ("15m") or a bare number of seconds ("900").
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	logger.Warn.Printf("Config: invalid duration value for %s, using default %v", key, defaultValue)
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// getSecretEnv falls back to a random key, which invalidates sessions on restart.
func getSecretEnv(key string) []byte {
	if value := os.Getenv(key); value != "" {
		return []byte(value)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logger.Error.Fatalf("Config: failed to generate session secret: %v", err)
	}
	logger.Warn.Printf("Config: %s not set, generated a random session secret", key)
	return secret
}
