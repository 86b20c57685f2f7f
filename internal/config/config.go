/**
 * @description
 * This package handles configuration management for the registry-service. It
 * uses the Viper library to read configuration from environment variables
 * (with an optional .env file), providing a centralized and straightforward
 * way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the registry-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisSessionPrefix   string `mapstructure:"REDIS_SESSION_PREFIX"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	JWTIssuer            string `mapstructure:"JWT_ISSUER"`
	AccessTokenMinutes   int    `mapstructure:"ACCESS_TOKEN_MINUTES"`
	RefreshTokenDays     int    `mapstructure:"REFRESH_TOKEN_DAYS"`
	UploadDir            string `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB          int64  `mapstructure:"MAX_UPLOAD_MB"`
	RegionsAPIBaseURL    string `mapstructure:"REGIONS_API_BASE_URL"`
	RegionsAPIKey        string `mapstructure:"REGIONS_API_KEY"`
	SuperAdminEmail      string `mapstructure:"SUPER_ADMIN_EMAIL"`
	SuperAdminPassword   string `mapstructure:"SUPER_ADMIN_PASSWORD"`
	SuperAdminName       string `mapstructure:"SUPER_ADMIN_NAME"`
	SuperAdminNationalID string `mapstructure:"SUPER_ADMIN_NATIONAL_ID"`
	SuperAdminKraPin     string `mapstructure:"SUPER_ADMIN_KRA_PIN"`
}

// AccessTokenTTL returns the configured access-token lifetime.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh-token lifetime.
func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_SESSION_PREFIX", "registry:sessions")
	viper.SetDefault("JWT_ISSUER", "registry-service")
	viper.SetDefault("ACCESS_TOKEN_MINUTES", 15)
	viper.SetDefault("REFRESH_TOKEN_DAYS", 7)
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("SUPER_ADMIN_NAME", "System Administrator")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_SESSION_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_ISSUER")
	_ = viper.BindEnv("ACCESS_TOKEN_MINUTES")
	_ = viper.BindEnv("REFRESH_TOKEN_DAYS")
	_ = viper.BindEnv("UPLOAD_DIR")
	_ = viper.BindEnv("MAX_UPLOAD_MB")
	_ = viper.BindEnv("REGIONS_API_BASE_URL")
	_ = viper.BindEnv("REGIONS_API_KEY")
	_ = viper.BindEnv("SUPER_ADMIN_EMAIL")
	_ = viper.BindEnv("SUPER_ADMIN_PASSWORD")
	_ = viper.BindEnv("SUPER_ADMIN_NAME")
	_ = viper.BindEnv("SUPER_ADMIN_NATIONAL_ID")
	_ = viper.BindEnv("SUPER_ADMIN_KRA_PIN")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.JWTSecret = strings.TrimSpace(config.JWTSecret)

	if config.AccessTokenMinutes <= 0 {
		config.AccessTokenMinutes = 15
	}
	if config.RefreshTokenDays <= 0 {
		config.RefreshTokenDays = 7
	}
	if config.MaxUploadMB <= 0 {
		config.MaxUploadMB = 10
	}
	if strings.TrimSpace(config.UploadDir) == "" {
		config.UploadDir = "./uploads"
	}

	return
}
