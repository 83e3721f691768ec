// Package config provides application configuration management using Viper.
// It supports loading from environment variables, config files, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Tenants   TenantsConfig
	Session   SessionConfig
	Chat      ChatConfig
	Email     EmailConfig
	Database  DatabaseConfig
	Admin     AdminConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string
	Port        int
	Environment string
}

// TenantsConfig locates the per-tenant data files.
type TenantsConfig struct {
	Dir string
}

// SessionConfig holds conversation session settings.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	CookieName    string
	CookieMaxAge  time.Duration
	CookieSecure  bool
}

// ChatConfig holds chat behavior toggles.
type ChatConfig struct {
	// ForceWizard routes every pricing-looking message into the step-by-step
	// flow instead of one-shot answers.
	ForceWizard bool
}

// EmailConfig holds Postmark settings for estimate delivery.
type EmailConfig struct {
	Enabled       bool
	PostmarkToken string
	APIURL        string
	From          string
	BCC           string
	MessageStream string
	Timeout       time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings for the optional quote
// archive. The service runs fully without it.
type DatabaseConfig struct {
	Enabled               bool
	Host                  string
	Port                  int
	User                  string
	Password              string
	Name                  string
	SSLMode               string
	MaxConnections        int
	ConnectionMaxLifetime time.Duration
}

// ConnectionString returns a PostgreSQL connection string.
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AdminConfig gates operator-only features.
type AdminConfig struct {
	// KeyHash is a bcrypt hash of the admin key presented via X-Admin-Key.
	// Empty disables admin features entirely.
	KeyHash string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables and config files.
// Environment variables take precedence over config file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shopquote")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configNotFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFoundErr) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("server.host"),
			Port:        v.GetInt("server.port"),
			Environment: v.GetString("server.env"),
		},
		Tenants: TenantsConfig{
			Dir: v.GetString("tenants.dir"),
		},
		Session: SessionConfig{
			TTL:           v.GetDuration("session.ttl"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
			CookieName:    v.GetString("session.cookie_name"),
			CookieMaxAge:  v.GetDuration("session.cookie_max_age"),
			CookieSecure:  v.GetBool("session.cookie_secure"),
		},
		Chat: ChatConfig{
			ForceWizard: v.GetBool("chat.force_wizard"),
		},
		Email: EmailConfig{
			Enabled:       v.GetBool("email.enabled"),
			PostmarkToken: v.GetString("email.postmark_token"),
			APIURL:        v.GetString("email.api_url"),
			From:          v.GetString("email.from"),
			BCC:           v.GetString("email.bcc"),
			MessageStream: v.GetString("email.stream"),
			Timeout:       v.GetDuration("email.timeout"),
		},
		Database: DatabaseConfig{
			Enabled:               v.GetBool("database.enabled"),
			Host:                  v.GetString("database.host"),
			Port:                  v.GetInt("database.port"),
			User:                  v.GetString("database.user"),
			Password:              v.GetString("database.password"),
			Name:                  v.GetString("database.name"),
			SSLMode:               v.GetString("database.sslmode"),
			MaxConnections:        v.GetInt("database.max_connections"),
			ConnectionMaxLifetime: v.GetDuration("database.connection_max_lifetime"),
		},
		Admin: AdminConfig{
			KeyHash: v.GetString("admin.key_hash"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")

	v.SetDefault("tenants.dir", "./clients")

	v.SetDefault("session.ttl", "1h")
	v.SetDefault("session.sweep_interval", "5m")
	v.SetDefault("session.cookie_name", "sid")
	v.SetDefault("session.cookie_max_age", "720h")
	v.SetDefault("session.cookie_secure", true)

	v.SetDefault("chat.force_wizard", false)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.api_url", "https://api.postmarkapp.com")
	v.SetDefault("email.stream", "outbound")
	v.SetDefault("email.timeout", "30s")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "shopquote")
	v.SetDefault("database.name", "shopquote")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.connection_max_lifetime", "5m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")
}

// Validate checks that all required configuration values are present.
func (c *Config) Validate() error {
	var missing []string

	if c.Tenants.Dir == "" {
		missing = append(missing, "TENANTS_DIR")
	}
	if c.Session.TTL <= 0 {
		missing = append(missing, "SESSION_TTL (must be positive)")
	}
	if c.Email.Enabled {
		if c.Email.PostmarkToken == "" {
			missing = append(missing, "EMAIL_POSTMARK_TOKEN")
		}
		if c.Email.From == "" {
			missing = append(missing, "EMAIL_FROM")
		}
	}
	if c.Database.Enabled && c.Database.Password == "" {
		missing = append(missing, "DATABASE_PASSWORD")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
