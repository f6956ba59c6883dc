package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port      string `yaml:"port" env:"SERVER_PORT"`
		Mode      string `yaml:"mode" env:"SERVER_MODE"`
		PublicURL string `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
		URL      string `yaml:"url" env:"REDIS_URL"`
		StatsTTL string `yaml:"stats_ttl" env:"REDIS_STATS_TTL"`
	} `yaml:"redis"`

	RateLimit struct {
		Enabled           bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
		RequestsPerMinute int  `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"`
		Burst             int  `yaml:"burst" env:"RATE_LIMIT_BURST"`
		AuthPerMinute     int  `yaml:"auth_per_minute" env:"RATE_LIMIT_AUTH_RPM"`
	} `yaml:"rate_limit"`

	Kafka struct {
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`
		Topic   string   `yaml:"topic" env:"KAFKA_TOPIC"`
	} `yaml:"kafka"`

	SMTP struct {
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"SMTP_FROM"`
	} `yaml:"smtp"`

	Gamification struct {
		SessionHostedPoints   int64 `yaml:"session_hosted_points" env:"POINTS_SESSION_HOSTED"`
		SessionAttendedPoints int64 `yaml:"session_attended_points" env:"POINTS_SESSION_ATTENDED"`
		ArticlePoints         int64 `yaml:"article_points" env:"POINTS_ARTICLE"`
		MentorshipPoints      int64 `yaml:"mentorship_points" env:"POINTS_MENTORSHIP"`
	} `yaml:"gamification"`

	Admin struct {
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Username string `yaml:"username" env:"ADMIN_USERNAME"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file next to the working directory is read first if present;
// variables already set in the process environment win.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Load default config with sane defaults
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.PublicURL = "http://localhost:8080"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "alumnihub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "alumnihub.app"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.URL = "redis://localhost:6379/0"
	config.Redis.StatsTTL = "5m"

	config.RateLimit.Enabled = true
	config.RateLimit.RequestsPerMinute = 120
	config.RateLimit.Burst = 20
	config.RateLimit.AuthPerMinute = 10

	config.Kafka.Topic = "alumnihub.events"

	config.SMTP.Port = 587
	config.SMTP.From = "no-reply@alumnihub.app"

	config.Gamification.SessionHostedPoints = 50
	config.Gamification.SessionAttendedPoints = 10
	config.Gamification.ArticlePoints = 25
	config.Gamification.MentorshipPoints = 100
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	if config.Redis.Enabled {
		if config.Redis.URL == "" {
			return fmt.Errorf("redis url is required when redis is enabled")
		}
		if _, err := time.ParseDuration(config.Redis.StatsTTL); err != nil {
			return fmt.Errorf("invalid redis stats ttl: %w", err)
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerMinute <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requests per minute and burst must be positive")
	}

	if len(config.Kafka.Brokers) > 0 && config.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}

	g := config.Gamification
	if g.SessionHostedPoints < 0 || g.SessionAttendedPoints < 0 || g.ArticlePoints < 0 || g.MentorshipPoints < 0 {
		return fmt.Errorf("gamification points must not be negative")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// SMTPEnabled reports whether outbound email is configured
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.Username != "" && c.SMTP.Password != ""
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
