package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheMemory = "memory"
	CacheBolt   = "bolt"
	CacheNone   = "none"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// URLExpiry is the lifetime of presigned download links.
	URLExpiry time.Duration
	// PublicBaseURL, when set, replaces presigned links with stable public ones.
	PublicBaseURL string
}

// CacheConfig selects and sizes the result cache.
type CacheConfig struct {
	Backend            string
	TTL                time.Duration
	Capacity           int
	Shards             int
	EvictionPercentage int
	BoltPath           string
}

// CatalogConfig holds presentation defaults of the catalog.
type CatalogConfig struct {
	DateLayout string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	TZLocation string
	LogLevel   string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Cache      CacheConfig
	Catalog    CatalogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:    getEnv("APP_HOST", "localhost:8080"),
		Port:       getEnv("PORT", "8080"), // default only for non-sensitive value
		TZLocation: getEnv("TZ_LOCATION", "UTC"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			URLExpiry:     getEnvDuration("MINIO_URL_EXPIRY", 15*time.Minute),
			PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", ""),
		},
		Cache: CacheConfig{
			Backend:            getEnv("CACHE_BACKEND", CacheMemory),
			TTL:                getEnvDuration("CACHE_TTL", time.Hour),
			Capacity:           getEnvInt("CACHE_CAPACITY", 10000),
			Shards:             getEnvInt("CACHE_SHARDS", 64),
			EvictionPercentage: getEnvInt("CACHE_EVICTION_PERCENTAGE", 10),
			BoltPath:           getEnv("CACHE_BOLT_PATH", "cdox-cache.db"),
		},
		Catalog: CatalogConfig{
			DateLayout: getEnv("CATALOG_DATE_LAYOUT", "Jan 02, 2006"),
		},
	}
}

// Validate checks the settings that have no safe fallback.
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Database),
		validation.Field(&c.Cache),
	)
}

// Validate implements validation.Validatable.
func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.Name, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (c MinIOConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required),
		validation.Field(&c.AccessKey, validation.Required),
		validation.Field(&c.SecretKey, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.PublicBaseURL, is.URL),
	)
}

// Validate implements validation.Validatable.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(CacheMemory, CacheBolt, CacheNone)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.BoltPath, validation.When(c.Backend == CacheBolt, validation.Required)),
	)
}

// Location resolves TZLocation, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TZLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("90s", "1h") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if s, err := strconv.Atoi(v); err == nil {
			return time.Duration(s) * time.Second
		}
	}
	return def
}

// LogValue implements slog.LogValuer with secrets masked.
func (c *AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("tz", c.TZLocation),
		slog.Group("database",
			slog.String("host", c.Database.Host),
			slog.String("name", c.Database.Name),
			slog.String("user", c.Database.User),
			slog.String("password", mask(c.Database.Password)),
		),
		slog.Group("minio",
			slog.String("endpoint", c.MinIO.Endpoint),
			slog.String("bucket", c.MinIO.Bucket),
			slog.String("secret_key", mask(c.MinIO.SecretKey)),
		),
		slog.Group("cache",
			slog.String("backend", c.Cache.Backend),
			slog.Duration("ttl", c.Cache.TTL),
		),
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}
