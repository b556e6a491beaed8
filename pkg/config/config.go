package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults the mseed command line tools start from.
// Flags override anything set here.
type Config struct {
	Read     Read     `yaml:"read"`
	Merge    Merge    `yaml:"merge"`
	Holdings Holdings `yaml:"holdings"`
}

// Read controls record reading.
type Read struct {
	// Lenient skips records failing CRC verification instead of stopping.
	Lenient bool `yaml:"lenient"`
}

// Merge controls record merging.
type Merge struct {
	MaxRecordSize   int     `yaml:"max_record_size"`
	ToleranceFactor float64 `yaml:"tolerance_factor"`
}

// Holdings locates the holdings index database.
type Holdings struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Merge: Merge{
			MaxRecordSize:   4096,
			ToleranceFactor: 0.5,
		},
		Holdings: Holdings{
			Dir: "./mseed-holdings",
		},
	}
}

// LoadConfig loads configuration from the specified path.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path.
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the
// current platform.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./mseed.yaml"
	}
	return filepath.Join(homeDir, ".config", "mseed", "config.yaml")
}

// ConfigExists checks if a configuration file exists.
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

// Load returns the config at the default path, or the built-in defaults
// when no file exists.
func Load() (*Config, error) {
	path := GetDefaultConfigPath()
	if !ConfigExists(path) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
