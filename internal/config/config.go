package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultMaxUploadBytes caps incoming image uploads at 10 MiB.
const DefaultMaxUploadBytes = 10 << 20

// Config holds all application configuration
type Config struct {
	Server struct {
		Port      string `json:"port"`
		StaticDir string `json:"static_dir"`
		Debug     bool   `json:"debug"`
	} `json:"server"`

	Database struct {
		Path string `json:"path"`
	} `json:"database"`

	ML struct {
		Type       string `json:"type"` // "gemini" or "vertex"
		ConfigPath string `json:"config_path"`
	} `json:"ml"`

	Upload struct {
		MaxSizeBytes int64 `json:"max_size_bytes"`
	} `json:"upload"`

	RateLimit struct {
		// Analysis requests allowed per client per minute. Zero disables
		// rate limiting.
		PerMinute int `json:"per_minute"`
	} `json:"rate_limit"`
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Handle missing values
	if config.Server.Port == "" {
		// Fail if port is not set
		return nil, fmt.Errorf("server port is not set in config file")
	}
	if config.Server.StaticDir == "" {
		config.Server.StaticDir = "./static"
	}
	if config.Database.Path == "" {
		config.Database.Path = "platecheck.db"
	}
	if config.ML.Type == "" {
		config.ML.Type = "gemini"
	}
	if config.Upload.MaxSizeBytes == 0 {
		config.Upload.MaxSizeBytes = DefaultMaxUploadBytes
	}

	return &config, nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("PLATECHECK_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}
