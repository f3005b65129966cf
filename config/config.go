package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Session  SessionConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Mail     MailConfig
	Media    MediaConfig
	S3       S3Config
	Redis    RedisConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type LogConfig struct {
	Level  string
	Format string // json, console
	File   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxIdleConns int
	MaxOpenConns int
	LogQueries   bool // echo SQL through the gorm logger
}

type SessionConfig struct {
	Name   string
	Secret string
	MaxAge int // seconds
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// MailConfig configures outgoing email. An empty SMTPHost selects the console mailer.
type MailConfig struct {
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	From                 string
	CustomerServiceEmail string
}

type MediaConfig struct {
	Backend string // local, s3
	Root    string
	URL     string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// RedisConfig is optional; an empty Host disables the API token blacklist.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type ImportConfig struct {
	Schedule string // cron expression, empty disables the scheduled import
	Source   string
	ImageDir string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8000"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", "console"),
			File:   getEnv("LOG_FILE", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "booktime"),
			Password: getEnv("DB_PASSWORD", "booktime"),
			DBName:   getEnv("DB_NAME", "booktime"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			MaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "50"), 50),
			LogQueries:   getEnv("DB_LOG_QUERIES", "false") == "true",
		},
		Session: SessionConfig{
			Name:   getEnv("SESSION_NAME", "booktime_session"),
			Secret: getEnv("SESSION_SECRET", "change-me-session-secret"),
			MaxAge: parseInt(getEnv("SESSION_MAX_AGE", "1209600"), 1209600),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "change-me-jwt-secret"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:8000")),
		},
		Mail: MailConfig{
			SMTPHost:             getEnv("SMTP_HOST", ""),
			SMTPPort:             parseInt(getEnv("SMTP_PORT", "587"), 587),
			SMTPUsername:         getEnv("SMTP_USERNAME", ""),
			SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
			From:                 getEnv("MAIL_FROM", "site@booktime.domain"),
			CustomerServiceEmail: getEnv("CUSTOMER_SERVICE_EMAIL", "customerservice@booktime.domain"),
		},
		Media: MediaConfig{
			Backend: getEnv("MEDIA_BACKEND", "local"),
			Root:    getEnv("MEDIA_ROOT", "./media"),
			URL:     getEnv("MEDIA_URL", "/media/"),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-west-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "booktime-media"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Import: ImportConfig{
			Schedule: getEnv("IMPORT_SCHEDULE", ""),
			Source:   getEnv("IMPORT_SOURCE", ""),
			ImageDir: getEnv("IMPORT_IMAGE_DIR", ""),
		},
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
		if config.Server.Environment == "development" {
			config.Log.Level = "debug"
		}
	}

	if config.Server.Environment == "production" {
		if err := config.validateSecrets(); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (c *Config) validateSecrets() error {
	if strings.HasPrefix(c.Session.Secret, "change-me") {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	if strings.HasPrefix(c.JWT.Secret, "change-me") {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
