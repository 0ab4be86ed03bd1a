package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Detector DetectorConfig `json:"detector"`
	Output   OutputConfig   `json:"output"`
}

// ServerConfig holds configuration for the web front-end
type ServerConfig struct {
	Addr string `json:"addr"`
}

// DetectorConfig holds configuration for the remote detection API
type DetectorConfig struct {
	Endpoint       string `json:"endpoint"`
	Strategy       string `json:"strategy"`        // "per-prompt" or "batched"
	TimeoutSeconds int    `json:"timeout_seconds"` // per-call deadline for the remote API
	CredentialFile string `json:"credential_file"`
	CredentialEnv  string `json:"credential_env"`
}

// OutputConfig holds configuration for annotated output and the archive
type OutputConfig struct {
	ArchiveVariant string `json:"archive_variant"` // "csv" or "text"
	JPEGQuality    int    `json:"jpeg_quality"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Detector: DetectorConfig{
			Endpoint:       "https://api.landing.ai/v1/tools/agentic-object-detection",
			Strategy:       "per-prompt",
			TimeoutSeconds: 60,
			CredentialFile: "visionagent_api_key.txt",
			CredentialEnv:  "VISIONAGENT_API_KEY",
		},
		Output: OutputConfig{
			ArchiveVariant: "csv",
			JPEGQuality:    90,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file yields
// the defaults and no error.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	if c.Detector.Endpoint == "" {
		return fmt.Errorf("detector.endpoint cannot be empty")
	}

	if c.Detector.Strategy != "per-prompt" && c.Detector.Strategy != "batched" {
		return fmt.Errorf("detector.strategy must be \"per-prompt\" or \"batched\"")
	}

	if c.Detector.TimeoutSeconds < 0 {
		return fmt.Errorf("detector.timeout_seconds cannot be negative")
	}

	if c.Output.ArchiveVariant != "csv" && c.Output.ArchiveVariant != "text" {
		return fmt.Errorf("output.archive_variant must be \"csv\" or \"text\"")
	}

	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100")
	}

	return nil
}

// ResolveCredential returns the API credential, preferring an explicitly
// provided value, then the credential file, then the environment variable.
// An empty result means no credential is available; callers surface that as
// a missing-input condition rather than an error here.
func (c *Config) ResolveCredential(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c.Detector.CredentialFile != "" {
		if data, err := os.ReadFile(c.Detector.CredentialFile); err == nil {
			if key := strings.TrimSpace(string(data)); key != "" {
				return key
			}
		}
	}
	if c.Detector.CredentialEnv != "" {
		return strings.TrimSpace(os.Getenv(c.Detector.CredentialEnv))
	}
	return ""
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "agentic-detect", "config.json")
}
