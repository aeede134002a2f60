package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	InitialBalance int64         `mapstructure:"initial_balance"`
	DeadlineSweep  time.Duration `mapstructure:"deadline_sweep"`
	FrontendURL    string        `mapstructure:"frontend_url"`
	TokenLifetime  time.Duration `mapstructure:"token_lifetime"`
}

// Load reads configuration from config.yaml when present, with environment
// variables taking precedence over file values and defaults.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "pronostix")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("app.jwt_secret", "")
	v.SetDefault("app.initial_balance", 100)
	v.SetDefault("app.deadline_sweep", 10*time.Minute)
	v.SetDefault("app.frontend_url", "")
	v.SetDefault("app.token_lifetime", 24*time.Hour)

	// Environment variable overrides
	bindings := map[string]string{
		"database.host":       "DB_HOST",
		"database.port":       "DB_PORT",
		"database.user":       "DB_USER",
		"database.password":   "DB_PASSWORD",
		"database.dbname":     "DB_NAME",
		"server.port":         "SERVER_PORT",
		"server.mode":         "GIN_MODE",
		"app.jwt_secret":      "JWT_SECRET",
		"app.initial_balance": "INITIAL_BALANCE",
		"app.frontend_url":    "FRONTEND_URL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
