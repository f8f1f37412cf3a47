// Package config provides configuration management.
package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pricing-detective/core/identity"
	"pricing-detective/core/types"
	"pricing-detective/internal/errors"
	"pricing-detective/internal/logging"
)

// Environment variables that override the loaded configuration
const (
	EnvAPIURL   = "PRICING_DETECTIVE_API_URL"
	EnvDeviceID = "PRICING_DETECTIVE_DEVICE_ID"
	EnvLanguage = "PRICING_DETECTIVE_LANGUAGE"
	EnvLogLevel = "LOG_LEVEL"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Backend contains analysis backend settings
	Backend BackendConfig `json:"backend" yaml:"backend"`

	// Identity contains device identity settings
	Identity IdentityConfig `json:"identity" yaml:"identity"`

	// Session contains session defaults
	Session SessionConfig `json:"session" yaml:"session"`

	// Server contains session API settings
	Server ServerConfig `json:"server" yaml:"server"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// BackendConfig contains analysis backend settings
type BackendConfig struct {
	// BaseURL is the backend origin
	BaseURL string `json:"base_url" yaml:"base_url"`

	// TimeoutSeconds bounds each backend request
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`

	// UserAgent is sent with every request
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Timeout returns the request timeout as a duration
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// IdentityConfig contains device identity settings
type IdentityConfig struct {
	// DeviceID pins the device id instead of fingerprinting the host
	DeviceID string `json:"device_id,omitempty" yaml:"device_id,omitempty"`

	// MachineIDPaths are probed in order for a stable machine id
	MachineIDPaths []string `json:"machine_id_paths,omitempty" yaml:"machine_id_paths,omitempty"`
}

// SessionConfig contains session defaults
type SessionConfig struct {
	// Language is the default answer language
	Language string `json:"language" yaml:"language"`
}

// ServerConfig contains session API settings
type ServerConfig struct {
	// Address is the listen address
	Address string `json:"address" yaml:"address"`

	// AllowedOrigins are the CORS origins allowed to drive the session
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color" yaml:"no_color"`
}

var outputFormats = []string{"cli", "json", "markdown"}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 90,
			UserAgent:      "pricing-detective/" + Version,
		},
		Identity: IdentityConfig{
			MachineIDPaths: append([]string(nil), identity.DefaultMachineIDPaths...),
		},
		Session: SessionConfig{
			Language: types.DefaultLanguage,
		},
		Server: ServerConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"*"},
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Version is the application version
var Version = "0.1.0"

// DefaultPath returns the per-user configuration file path
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "pricing-detective.json"
	}
	return filepath.Join(homeDir, ".pricing-detective", "config.json")
}

// Load loads configuration from a file. The format follows the extension:
// .json, .yaml/.yml or .hcl. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrapf(errors.TypeConfig, err, "read %s", path)
	}

	config := Default()
	switch ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".hcl":
		err = decodeHCL(data, path, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.TypeConfig, err, "parse %s", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves configuration to a file in the format its extension names
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.TypeConfig, err, "create %s", dir)
	}

	var (
		data []byte
		err  error
	)
	switch ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".hcl":
		data = encodeHCL(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Config("encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.TypeConfig, err, "write %s", path)
	}
	return nil
}

// Validate checks the configuration for values no component can work with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Config("backend.base_url must be an http(s) URL", err).
			WithContext("base_url", c.Backend.BaseURL)
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return errors.Config("backend.timeout_seconds must be positive", nil).
			WithContext("timeout_seconds", c.Backend.TimeoutSeconds)
	}
	if !contains(outputFormats, c.Output.DefaultFormat) {
		return errors.Newf(errors.TypeConfig, "output.default_format must be one of %s", strings.Join(outputFormats, ", ")).
			WithContext("default_format", c.Output.DefaultFormat)
	}
	return nil
}

// ApplyEnv overlays the environment variable overrides
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.Backend.BaseURL = v
	}
	if v, ok := lookup(EnvDeviceID); ok && v != "" {
		c.Identity.DeviceID = v
	}
	if v, ok := lookup(EnvLanguage); ok && v != "" {
		c.Session.Language = types.NormalizeLanguage(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
