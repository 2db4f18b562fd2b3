package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Storage
	DatabasePath string

	// External catalogs
	TMDBAPIKey string // empty disables movie/series search

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and an optional .env
// file in the working directory.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// .env is optional
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	dbPath := viper.GetString("DATABASE_PATH")
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".mediahub", "data.db")
	}

	return &Config{
		ServerPort:   viper.GetString("SERVER_PORT"),
		DatabasePath: dbPath,
		TMDBAPIKey:   viper.GetString("TMDB_API_KEY"),
		LogLevel:     viper.GetString("LOG_LEVEL"),
	}, nil
}
