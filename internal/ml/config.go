package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

// BaseConfig provides common configuration functionality for model backends.
type BaseConfig struct {
	ConfigPath string
}

// LoadConfig loads backend configuration from a file, falling back to
// environment variables when no usable file is found.
func (c *BaseConfig) LoadConfig(configPath string, envPrefix string, config interface{}) error {
	// Try to load from file first
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := json.Unmarshal(data, config); err == nil {
				log.Infof("loaded %s configuration from file: %s", envPrefix, configPath)
				return nil
			}
		}
	}

	// Try default config file in config directory
	defaultPath := filepath.Join("config", fmt.Sprintf("%s.json", envPrefix))
	if data, err := os.ReadFile(defaultPath); err == nil {
		if err := json.Unmarshal(data, config); err == nil {
			log.Infof("loaded %s configuration from default file: %s", envPrefix, defaultPath)
			return nil
		}
	}

	// Fall back to environment variables
	log.Infof("using environment variables for %s configuration", envPrefix)
	return nil
}
