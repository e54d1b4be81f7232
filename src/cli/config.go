// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config represents the path builder configuration structure.
//
// The configuration can be loaded from a JSON or YAML file passed via the
// --config flag or the X509_PATH_BUILDER_CONFIG_FILE environment variable,
// with defaults applied for any missing values.
// Supported file extensions: .json, .yaml, .yml
type Config struct {
	// Defaults: Default settings for path building operations
	Defaults struct {
		// Timeout: Default timeout in seconds for network operations
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// AIACacheTTL: How long fetched AIA issuers stay cached, in seconds
		AIACacheTTL int `json:"aiaCacheTTLSeconds" yaml:"aiaCacheTTLSeconds"`
	} `json:"defaults" yaml:"defaults"`

	// HTTP: HTTP client settings for AIA and revocation fetches
	HTTP struct {
		// UserAgent: Custom User-Agent header (a default is derived from the version when empty)
		UserAgent string `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	} `json:"http" yaml:"http"`
}

// detectConfigFormat determines the configuration file format based on file
// extension. It uses case-insensitive extension matching for cross-platform
// compatibility.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// loadConfig loads configuration from a JSON or YAML file or applies defaults.
//
// Configuration Priority:
//  1. Default values are set
//  2. X509_PATH_BUILDER_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults (if file exists and is valid)
func loadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set defaults
	config.Defaults.Timeout = 10
	config.Defaults.AIACacheTTL = 3600

	// Check environment variable for config file path if not provided
	if configPath == "" {
		configPath = os.Getenv("X509_PATH_BUILDER_CONFIG_FILE")
	}

	// Try to load from file if path is provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Detect format and unmarshal accordingly
		format := detectConfigFormat(configPath)
		if err := unmarshalConfig(data, config, format); err != nil {
			return nil, err
		}

		// Validate and set defaults for invalid values
		if config.Defaults.Timeout <= 0 {
			config.Defaults.Timeout = 10
		}
		if config.Defaults.AIACacheTTL <= 0 {
			config.Defaults.AIACacheTTL = 3600
		}
	}

	return config, nil
}
