package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret          string
	FederatedSecret string // shared with the identity gateway for federated sign-in
	AccessExpiry    int    // in minutes
	RefreshExpiry   int    // in days
}

type StorageConfig struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// AdminConfig carries the admin email allow-list. Matching is exact and
// case-sensitive; the list is consulted on every login so additions take
// effect without a migration.
type AdminConfig struct {
	Emails []string
}

func Load() *Config {
	// Populate the process environment from .env if present, then let viper
	// pick everything up.
	_ = godotenv.Load()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_BUCKET", "product-images")
	viper.SetDefault("STORAGE_USE_PATH_STYLE", true)
	viper.SetDefault("STORAGE_PRESIGN_EXPIRATION", "15m")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:          viper.GetString("JWT_SECRET"),
			FederatedSecret: viper.GetString("JWT_FEDERATED_SECRET"),
			AccessExpiry:    viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry:   viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Storage: StorageConfig{
			Endpoint:          viper.GetString("STORAGE_ENDPOINT"),
			Region:            viper.GetString("STORAGE_REGION"),
			Bucket:            viper.GetString("STORAGE_BUCKET"),
			AccessKey:         viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:         viper.GetString("STORAGE_SECRET_KEY"),
			UseSSL:            viper.GetBool("STORAGE_USE_SSL"),
			UsePathStyle:      viper.GetBool("STORAGE_USE_PATH_STYLE"),
			PresignExpiration: viper.GetDuration("STORAGE_PRESIGN_EXPIRATION"),
		},
		Admin: AdminConfig{
			Emails: viper.GetStringSlice("ADMIN_EMAILS"),
		},
	}
}
