package config

import (
	"log"
	"strings"

	"moveis-catalog/internal/domain"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Storage   StorageConfig
	Store     StoreConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

// AdminConfig is the bootstrap account created at startup when missing.
type AdminConfig struct {
	Username string
	Password string
}

type StorageConfig struct {
	Root        string
	Bucket      string
	PublicURL   string
	MaxUploadMB int64
}

type StoreConfig struct {
	WhatsAppPhone string
	Categories    []string
}

type AnalyticsConfig struct {
	FlushSchedule string
}

type RateLimitConfig struct {
	Requests int
	Window   int // in seconds
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	File string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("STORAGE_ROOT", "data")
	viper.SetDefault("STORAGE_BUCKET", "product-images")
	viper.SetDefault("STORAGE_PUBLIC_URL", "/media")
	viper.SetDefault("STORAGE_MAX_UPLOAD_MB", 50)
	viper.SetDefault("STORE_WHATSAPP_PHONE", "5561998605145")
	viper.SetDefault("STORE_CATEGORIES", strings.Join(domain.Categories, ","))
	viper.SetDefault("ANALYTICS_FLUSH_SCHEDULE", "@every 30s")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("DB_MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Admin: AdminConfig{
			Username: viper.GetString("ADMIN_USERNAME"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		Storage: StorageConfig{
			Root:        viper.GetString("STORAGE_ROOT"),
			Bucket:      viper.GetString("STORAGE_BUCKET"),
			PublicURL:   strings.TrimRight(viper.GetString("STORAGE_PUBLIC_URL"), "/"),
			MaxUploadMB: viper.GetInt64("STORAGE_MAX_UPLOAD_MB"),
		},
		Store: StoreConfig{
			WhatsAppPhone: viper.GetString("STORE_WHATSAPP_PHONE"),
			Categories:    splitList(viper.GetString("STORE_CATEGORIES")),
		},
		Analytics: AnalyticsConfig{
			FlushSchedule: viper.GetString("ANALYTICS_FLUSH_SCHEDULE"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetInt("RATE_LIMIT_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			File: viper.GetString("LOG_FILE"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
