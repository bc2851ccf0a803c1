// =============================================================================
// Loyverse Export - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. Settings come from two places:
//
//   1. An optional YAML file (config.yaml) for non-secret settings:
//      endpoints, payment types, output naming, timeouts.
//   2. The process environment (optionally seeded from a .env file) for the
//      API credentials. The token is never read from the YAML file so it
//      cannot end up committed alongside the config.
//
// ARCHITECTURE:
//   The configuration system follows a load -> validate -> apply-defaults
//   pattern: a missing config file is not an error (every setting has a
//   default), but a present file with invalid values is.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// ENVIRONMENT VARIABLES
// =============================================================================

const (
	// EnvAPIToken is the environment variable holding the Loyverse bearer
	// token. Required for any run that talks to the API.
	EnvAPIToken = "LOYVERSE_API_TOKEN"

	// EnvAPIBaseURL optionally overrides the API base URL from the
	// environment. Takes precedence over the YAML setting.
	EnvAPIBaseURL = "LOYVERSE_API_BASE_URL"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// APIBaseURL is the base URL of the Loyverse API.
	// Default: "https://api.loyverse.com/v1.0"
	APIBaseURL string `yaml:"api_base_url"`

	// APIToken is the bearer token used for API authorization.
	// Loaded from the LOYVERSE_API_TOKEN environment variable only.
	APIToken string `yaml:"-"`

	// Endpoints lists the API endpoints fetched during an export.
	// Default: ["receipts", "shifts"]
	Endpoints []string `yaml:"endpoints"`

	// PaymentTypes is the closed enumeration of payment method names used
	// for the per-payment-type totals written back onto payment rows.
	// Payments whose name is not in this list are excluded from those
	// totals on purpose; they still appear in every other sheet and
	// aggregate.
	PaymentTypes []string `yaml:"payment_types"`

	// OutputDir is the directory where generated workbooks are placed.
	// Default: "." (current directory)
	OutputDir string `yaml:"output_dir"`

	// FilenameFormat is the output file naming pattern. Supported
	// placeholders:
	//   {timestamp} - Current time as YYYYMMDD_HHMMSS
	//   {uuid}      - A random UUID
	// Default: "loyverse_export_{timestamp}.xlsx"
	FilenameFormat string `yaml:"filename_format"`

	// TopItems is the number of top-selling items shown on the Summary
	// sheet. Default: 5
	TopItems int `yaml:"top_items"`

	// RequestTimeoutSeconds is the per-request HTTP timeout.
	// Default: 30
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file at path, overlays environment settings,
// validates the result, and applies defaults.
//
// PARAMETERS:
//   - path: Path to the YAML config file. A missing file is tolerated and
//     yields the defaults; any other read or parse failure is an error.
//
// RETURNS:
//   - The loaded configuration.
//   - An error if the file is unreadable, malformed, or invalid.
func Load(path string) (*Config, error) {
	// Seed the environment from a .env file when present. A missing .env
	// is the normal case in production, so the error is ignored.
	_ = godotenv.Load()

	config := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file: run entirely on defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Environment overrides and secrets.
	if url := os.Getenv(EnvAPIBaseURL); url != "" {
		config.APIBaseURL = url
	}
	config.APIToken = os.Getenv(EnvAPIToken)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.applyDefaults()

	return config, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
// Defaults are applied after validation, so empty values pass here.
func (c *Config) Validate() error {
	if c.TopItems < 0 {
		return fmt.Errorf("top_items must not be negative, got %d", c.TopItems)
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative, got %d", c.RequestTimeoutSeconds)
	}
	for _, e := range c.Endpoints {
		if e == "" {
			return fmt.Errorf("endpoints must not contain empty entries")
		}
	}
	return nil
}

// RequireToken verifies that an API token is configured. Called by commands
// that actually hit the API, so offline invocations (help, version) work
// without credentials.
func (c *Config) RequireToken() error {
	if c.APIToken == "" {
		return fmt.Errorf("%s is not set", EnvAPIToken)
	}
	return nil
}

// =============================================================================
// DEFAULTS
// =============================================================================

// applyDefaults fills in default values for any unset fields.
func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://api.loyverse.com/v1.0"
	}
	if len(c.Endpoints) == 0 {
		c.Endpoints = []string{"receipts", "shifts"}
	}
	if len(c.PaymentTypes) == 0 {
		c.PaymentTypes = []string{
			"QR Maybank",
			"Shopeefood",
			"Sedekah",
			"FoodPanda",
			"Grabfood",
			"Cash",
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.FilenameFormat == "" {
		c.FilenameFormat = "loyverse_export_{timestamp}.xlsx"
	}
	if c.TopItems == 0 {
		c.TopItems = 5
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 30
	}
}
