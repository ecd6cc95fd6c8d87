package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Assets       AssetsConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines the admin identity and session token parameters.
// AdminPasswordHash, when set, takes precedence over AdminPassword and is
// expected to be a bcrypt hash.
type AuthConfig struct {
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	SessionTTLSeconds int
	SecureCookies     bool
}

// AssetsConfig points at the external asset host posts upload images to.
// An empty UploadURL disables image uploads.
type AssetsConfig struct {
	UploadURL      string
	Folder         string
	TimeoutSeconds int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// minJWTSecretLen guards against weak signing secrets.
const minJWTSecretLen = 32

// SessionTTL returns the session token lifetime.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(a.SessionTTLSeconds) * time.Second
}

// Load reads configuration from environment variables, applying defaults
// where possible. The admin credentials and signing secret have no defaults:
// a process without them must not come up with auth silently disabled.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	auth := AuthConfig{
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("AUTH_JWT_SECRET"),
		SessionTTLSeconds: getEnvAsInt("AUTH_SESSION_TTL_SECONDS", 3600),
		SecureCookies:     getEnvAsBool("AUTH_SECURE_COOKIES", getEnv("APP_ENV", "development") == "production"),
	}
	if err := auth.validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "blog-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			CacheTTL: time.Duration(getEnvAsInt("REDIS_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: auth,
		Assets: AssetsConfig{
			UploadURL:      os.Getenv("ASSET_UPLOAD_URL"),
			Folder:         getEnv("ASSET_UPLOAD_FOLDER", "blog_images"),
			TimeoutSeconds: getEnvAsInt("ASSET_UPLOAD_TIMEOUT_SECONDS", 15),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", ""),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

func (a AuthConfig) validate() error {
	if a.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME is required")
	}
	if a.AdminPassword == "" && a.AdminPasswordHash == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if a.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if len(a.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
