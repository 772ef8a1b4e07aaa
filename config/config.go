package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Uploads   UploadConfig
	RateLimit RateLimitConfig
	Query     QueryConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
	LogLevel       string
}

type DatabaseConfig struct {
	Driver       string // mongo, postgres or memory
	MongoURI     string
	DatabaseName string
	PostgresDSN  string
	SeedProjects bool
}

type AuthConfig struct {
	JWTSecret     string
	AccessTTL     time.Duration
	AdminEmail    string
	AdminPassword string
}

type StorageConfig struct {
	Driver string // gcs, r2, minio or none

	GCSBucket       string
	CredentialsFile string

	R2Bucket       string
	R2AccessKeyID  string
	R2SecretKey    string
	R2Endpoint     string
	R2PublicDomain string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string
}

type UploadConfig struct {
	MaxSizeMB              int
	AllowedExtensions      []string
	AllowedMimeTypes       []string
	AttachmentMimeTypes    []string
	MaxAttachmentsPerEntry int
}

type RateLimitConfig struct {
	RedisAddr     string
	RedisPassword string
	RPS           float64
	Burst         int
	Window        time.Duration
}

type QueryConfig struct {
	MaxLimit     int
	DefaultLimit int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
			LogLevel:       v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			MongoURI:     v.GetString("MONGODB_URI"),
			DatabaseName: v.GetString("DATABASE_NAME"),
			PostgresDSN:  v.GetString("POSTGRES_DSN"),
			SeedProjects: v.GetBool("SEED_SAMPLE_PROJECTS"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			AccessTTL:     time.Duration(v.GetInt("ACCESS_TOKEN_TTL_MINUTES")) * time.Minute,
			AdminEmail:    strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(v.GetString("STORAGE_DRIVER")),
			GCSBucket:       v.GetString("GCS_BUCKET"),
			CredentialsFile: v.GetString("CREDENTIALS_FILE_LOCATION"),
			R2Bucket:        v.GetString("R2_BUCKET"),
			R2AccessKeyID:   v.GetString("R2_ACCESS_KEY_ID"),
			R2SecretKey:     v.GetString("R2_SECRET_ACCESS_KEY"),
			R2Endpoint:      v.GetString("R2_ENDPOINT"),
			R2PublicDomain:  v.GetString("R2_PUBLIC_DOMAIN"),
			MinIOEndpoint:   v.GetString("MINIO_ENDPOINT"),
			MinIOAccessKey:  v.GetString("MINIO_ACCESS_KEY"),
			MinIOSecretKey:  v.GetString("MINIO_SECRET_KEY"),
			MinIOBucket:     v.GetString("MINIO_BUCKET"),
			MinIOUseSSL:     v.GetBool("MINIO_USE_SSL"),
			MinIOPublicURL:  v.GetString("MINIO_PUBLIC_URL"),
		},
		Uploads: UploadConfig{
			MaxSizeMB:              v.GetInt("MAX_UPLOAD_SIZE_MB"),
			AllowedExtensions:      splitList(strings.ToLower(v.GetString("ALLOWED_FILE_EXTENSIONS"))),
			AllowedMimeTypes:       splitList(strings.ToLower(v.GetString("ALLOWED_FILE_MIME_TYPES"))),
			AttachmentMimeTypes:    splitList(strings.ToLower(v.GetString("ALLOWED_ATTACHMENT_MIME_TYPES"))),
			MaxAttachmentsPerEntry: v.GetInt("MAX_ATTACHMENTS"),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			Window:        time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Query: QueryConfig{
			MaxLimit:     v.GetInt("READ_QUERY_MAX_LIMIT"),
			DefaultLimit: v.GetInt("DEFAULT_READ_QUERY_LIMIT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("DB_DRIVER", "mongo")
	v.SetDefault("DATABASE_NAME", "cncdesign")
	v.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 24*60)
	v.SetDefault("STORAGE_DRIVER", "none")
	v.SetDefault("MINIO_BUCKET", "cncdesign")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 10)
	v.SetDefault("ALLOWED_FILE_EXTENSIONS", ".jpg,.jpeg,.png,.webp,.gif,.pdf")
	v.SetDefault("ALLOWED_FILE_MIME_TYPES", "image/jpeg,image/png,image/webp,image/gif,application/pdf")
	v.SetDefault("ALLOWED_ATTACHMENT_MIME_TYPES", "image/jpeg,image/png,image/webp,image/gif,application/pdf")
	v.SetDefault("MAX_ATTACHMENTS", 10)
	v.SetDefault("RATE_LIMIT_RPS", 0.2)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("READ_QUERY_MAX_LIMIT", 100)
	v.SetDefault("DEFAULT_READ_QUERY_LIMIT", 20)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mongo":
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when DB_DRIVER=mongo")
		}
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want mongo, postgres or memory)", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "gcs", "r2", "minio", "none":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want gcs, r2, minio or none)", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.AccessTTL <= 0 {
		c.Auth.AccessTTL = 24 * time.Hour
	}
	if c.Query.MaxLimit < 1 {
		c.Query.MaxLimit = 100
	}
	if c.Query.DefaultLimit < 1 || c.Query.DefaultLimit > c.Query.MaxLimit {
		c.Query.DefaultLimit = 20
	}
	if c.Uploads.MaxSizeMB <= 0 {
		c.Uploads.MaxSizeMB = 10
	}
	return nil
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
