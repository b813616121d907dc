package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Rate limit backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Portal    PortalConfig
	CORS      CORSConfig
	Log       LogConfig
	Upload    UploadConfig
	PayHere   PayHereConfig
	RateLimit RateLimitConfig
	Finance   FinanceConfig
	Crypto    CryptoConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// PortalConfig controls the parent portal session cookie.
type PortalConfig struct {
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadConfig bounds spreadsheet uploads and where originals are kept.
type UploadConfig struct {
	MaxBytes          int64
	StorageDir        string
	Retention         time.Duration
	RetentionSchedule string // cron spec for the cleanup job
	LockTTL           time.Duration
}

// PayHereConfig toggles processor data behaviour.
type PayHereConfig struct {
	PlaceholderData bool
}

// RateLimitConfig configures login and kiosk throttling.
type RateLimitConfig struct {
	Backend  string
	LoginMax int
	KioskMax int
	Window   time.Duration
}

// FinanceConfig governs finance summary caching.
type FinanceConfig struct {
	CacheTTL time.Duration
}

// CryptoConfig holds the key for encrypted columns.
type CryptoConfig struct {
	FieldKey string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.Portal = PortalConfig{
		SessionTTL:   parseDuration(v.GetString("PORTAL_SESSION_TTL"), 7*24*time.Hour),
		CookieName:   v.GetString("PORTAL_COOKIE_NAME"),
		CookieSecure: cfg.Env == EnvProduction,
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Upload = UploadConfig{
		MaxBytes:          maxUpload,
		StorageDir:        v.GetString("UPLOAD_STORAGE_DIR"),
		Retention:         parseDuration(v.GetString("UPLOAD_RETENTION"), 90*24*time.Hour),
		RetentionSchedule: v.GetString("UPLOAD_RETENTION_SCHEDULE"),
		LockTTL:           parseDuration(v.GetString("IMPORT_LOCK_TTL"), time.Minute),
	}

	cfg.PayHere = PayHereConfig{
		PlaceholderData: v.GetBool("PAYHERE_PLACEHOLDER_DATA"),
	}

	backend := strings.ToLower(v.GetString("RATE_LIMIT_BACKEND"))
	if backend != RateLimitBackendRedis {
		backend = RateLimitBackendMemory
	}
	cfg.RateLimit = RateLimitConfig{
		Backend:  backend,
		LoginMax: v.GetInt("RATE_LIMIT_LOGIN_MAX"),
		KioskMax: v.GetInt("RATE_LIMIT_KIOSK_MAX"),
		Window:   parseDuration(v.GetString("RATE_LIMIT_WINDOW"), 15*time.Minute),
	}

	cfg.Finance = FinanceConfig{
		CacheTTL: parseDuration(v.GetString("FINANCE_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Crypto = CryptoConfig{
		FieldKey: v.GetString("FIELD_ENCRYPTION_KEY"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "piano_academy")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "piano-academy-api")

	v.SetDefault("PORTAL_SESSION_TTL", "168h")
	v.SetDefault("PORTAL_COOKIE_NAME", "parent_session")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)
	v.SetDefault("UPLOAD_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOAD_RETENTION", "2160h")
	v.SetDefault("UPLOAD_RETENTION_SCHEDULE", "@every 6h")
	v.SetDefault("IMPORT_LOCK_TTL", "1m")

	v.SetDefault("PAYHERE_PLACEHOLDER_DATA", false)

	v.SetDefault("RATE_LIMIT_BACKEND", RateLimitBackendMemory)
	v.SetDefault("RATE_LIMIT_LOGIN_MAX", 5)
	v.SetDefault("RATE_LIMIT_KIOSK_MAX", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")

	v.SetDefault("FINANCE_CACHE_TTL", "10m")
	v.SetDefault("FIELD_ENCRYPTION_KEY", "")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
