package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int `validate:"gte=0"`
	MaxIdleConns       int `validate:"gte=0"`
	ConnMaxLifetimeSec int `validate:"gte=0"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LocalStorageConfig holds settings for the directory-backed content store.
type LocalStorageConfig struct {
	Dir string
}

// QuotaConfig holds per-user storage limits.
type QuotaConfig struct {
	// LimitBytes is the maximum total bytes one user may have stored.
	LimitBytes int64 `validate:"gt=0"`
	// MaxUploadBytes caps a single request body.
	MaxUploadBytes int `validate:"gt=0"`
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	JWTSecret string `validate:"required,min=16"`
	Issuer    string
}

// ClassifierConfig holds settings for the optional post-upload classification.
type ClassifierConfig struct {
	Enabled    bool
	Endpoint   string `validate:"omitempty,url"`
	APIKey     string
	Model      string
	Workers    int `validate:"gt=0"`
	QueueSize  int `validate:"gt=0"`
	TimeoutSec int `validate:"gt=0"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost         string
	Port            string `validate:"required"`
	Timezone        string
	MetadataBackend string `validate:"oneof=postgres memory"`
	StorageBackend  string `validate:"oneof=minio local"`
	Database        DatabaseConfig
	MinIO           MinIOConfig
	Local           LocalStorageConfig
	Quota           QuotaConfig
	Auth            AuthConfig
	Classifier      ClassifierConfig
}

// Location resolves Timezone, falling back to UTC when unset or unknown.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:         getEnv("APP_HOST", "localhost:8080"),
		Port:            getEnv("PORT", "8080"),
		Timezone:        getEnv("APP_TIMEZONE", "UTC"),
		MetadataBackend: getEnv("METADATA_BACKEND", "postgres"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "minio"),
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
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Local: LocalStorageConfig{
			Dir: getEnv("LOCAL_STORAGE_DIR", "./uploads"),
		},
		Quota: QuotaConfig{
			LimitBytes:     getEnvInt64("QUOTA_LIMIT_BYTES", 100*1024*1024),
			MaxUploadBytes: getEnvInt("UPLOAD_MAX_BYTES", 50*1024*1024),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "pdfvault"),
		},
		Classifier: ClassifierConfig{
			Enabled:    getEnvBool("CLASSIFIER_ENABLED", false),
			Endpoint:   getEnv("CLASSIFIER_ENDPOINT", "https://api-inference.huggingface.co"),
			APIKey:     getEnv("CLASSIFIER_API_KEY", ""),
			Model:      getEnv("CLASSIFIER_MODEL", "facebook/bart-large-mnli"),
			Workers:    getEnvInt("CLASSIFIER_WORKERS", 2),
			QueueSize:  getEnvInt("CLASSIFIER_QUEUE_SIZE", 64),
			TimeoutSec: getEnvInt("CLASSIFIER_TIMEOUT_SEC", 30),
		},
	}
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

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
