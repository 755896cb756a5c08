// internal/config/config.go
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database struct {
		Host       string `json:"host"`
		Port       string `json:"port"`
		User       string `json:"user"`
		Password   string `json:"password"`
		Name       string `json:"name"`
		SSLMode    string `json:"sslmode"`
		SearchPath string `json:"schema"`
	} `json:"database"`
	Directory struct {
		URL     string        `json:"url"`
		Timeout time.Duration `json:"timeout"`
	} `json:"directory"`
	Session struct {
		Secret       string        `json:"secret"`
		CookieName   string        `json:"cookie_name"`
		CacheTTL     time.Duration `json:"cache_ttl"`
		ExpiryPeriod time.Duration `json:"expiry_period"`
	} `json:"session"`
	Server struct {
		Port         string        `json:"port"`
		ReadTimeout  time.Duration `json:"read_timeout"`
		WriteTimeout time.Duration `json:"write_timeout"`
	}
	Sendgrid struct {
		APIKey string `json:"api_key"`
		From   string `json:"from"`
	} `json:"sendgrid"`
	SMTP map[string]struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
		From     string `json:"from"`
	} `json:"smtp"`
	Uploads struct {
		Dir     string `json:"dir"`
		BaseURL string `json:"base_url"`
	} `json:"uploads"`
	Cleanup struct {
		Schedule  string `json:"schedule"`
		BatchSize int    `json:"batch_size"`
		DryRun    bool   `json:"dry_run"`
	} `json:"cleanup"`
	// WebhookSecretHash is the argon2id hash of the deleted-organizations webhook secret.
	WebhookSecretHash string `json:"webhook_secret_hash"`
	DefaultLocale     string `json:"default_locale"`
	BaseURL           string `json:"base_url"`
}

func Load() *Config {
	// A missing .env is normal outside of development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	cfg := &Config{}

	// Database configuration
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", "survey_web")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.SearchPath = getEnv("DB_SCHEMA", "public")

	// Organization directory (OAuth server)
	cfg.Directory.URL = getEnv("OAUTH_SERVER_URL", "http://localhost:3000")
	cfg.Directory.Timeout = getEnvDuration("DIRECTORY_TIMEOUT", 10*time.Second)

	// Session configuration
	cfg.Session.Secret = getEnv("SESSION_SECRET", "your-secret-key")
	cfg.Session.CookieName = getEnv("SESSION_COOKIE", "survey_session")
	cfg.Session.CacheTTL = getEnvDuration("SESSION_CACHE_TTL", 30*time.Minute)
	cfg.Session.ExpiryPeriod = time.Hour * 24

	// Sendgrid configuration
	cfg.Sendgrid.APIKey = getEnv("SENDGRID_API_KEY", "")
	cfg.Sendgrid.From = getEnv("SENDGRID_FROM", "")

	// SMTP configuration, used when no Sendgrid key is set
	cfg.SMTP = map[string]struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
		From     string `json:"from"`
	}{
		"smtp": {
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.ReadTimeout = time.Second * 15
	cfg.Server.WriteTimeout = time.Second * 15

	// Question image uploads
	cfg.Uploads.Dir = getEnv("UPLOAD_DIR", "./uploads")
	cfg.Uploads.BaseURL = getEnv("UPLOAD_BASE_URL", "/uploads")

	// Deleted organization cleanup
	cfg.Cleanup.Schedule = getEnv("CLEANUP_SCHEDULE", "@every 30m")
	cfg.Cleanup.BatchSize = getEnvInt("CLEANUP_BATCH_SIZE", 100)
	cfg.Cleanup.DryRun = getEnvBool("CLEANUP_DRY_RUN", false)

	cfg.WebhookSecretHash = getEnv("WEBHOOK_SECRET_HASH", "")
	cfg.DefaultLocale = getEnv("DEFAULT_LOCALE", "en")
	cfg.BaseURL = getEnv("BASE_URL", "http://localhost:8080")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
