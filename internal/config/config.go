package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// GoogleCredentials represents the structure of Google OAuth credentials JSON file.
type GoogleCredentials struct {
	Installed struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"installed"`
	Web struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"web"`
}

// LoadGoogleCredentials loads Google OAuth credentials from a JSON file.
func LoadGoogleCredentials(path string) (clientID, clientSecret string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds GoogleCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", "", fmt.Errorf("failed to parse credentials file: %w", err)
	}

	// Try "installed" first (for desktop apps), then "web"
	if creds.Installed.ClientID != "" {
		return creds.Installed.ClientID, creds.Installed.ClientSecret, nil
	}
	if creds.Web.ClientID != "" {
		return creds.Web.ClientID, creds.Web.ClientSecret, nil
	}

	return "", "", fmt.Errorf("no client_id found in credentials file (expected 'installed' or 'web' section)")
}

// Config holds the configuration for the schedule sync tool.
type Config struct {
	// SpreadsheetID identifies the master schedule spreadsheet.
	SpreadsheetID string `json:"spreadsheet_id"`
	// SheetIndex selects which sheet (tab) of the spreadsheet to sync.
	SheetIndex int `json:"sheet_index,omitempty"`
	// GoogleCredentialsPath points at the OAuth credentials JSON file.
	GoogleCredentialsPath string `json:"google_credentials_path,omitempty"`
	// TokenPath is where the OAuth token is stored between runs.
	TokenPath string `json:"token_path,omitempty"`
	// Timezone is the IANA zone the spreadsheet's wall-clock times are
	// written in (default: Local).
	Timezone string `json:"timezone,omitempty"`
	// RequestTimeoutSeconds bounds each individual Google API call
	// (default: 30).
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty"`
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadConfigFromFile loads configuration from a JSON file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// LoadConfig loads configuration with the following precedence (highest to lowest):
// 1. Command-line flags
// 2. Environment variables
// 3. Config file
// 4. Defaults
// Returns an error if any required value is missing.
func LoadConfig(configFile, spreadsheetIDFlag, credentialsPathFlag, tokenPathFlag string) (*Config, error) {
	var config Config

	// Step 1: Load from config file if provided
	if configFile != "" {
		fileConfig, err := LoadConfigFromFile(configFile)
		if err != nil {
			return nil, err
		}
		config = *fileConfig
	}

	// Step 2: Override with environment variables
	if spreadsheetID := os.Getenv("SPREADSHEET_ID"); spreadsheetID != "" {
		config.SpreadsheetID = spreadsheetID
	}
	if credentialsPath := os.Getenv("GOOGLE_CREDENTIALS_PATH"); credentialsPath != "" {
		config.GoogleCredentialsPath = credentialsPath
	}
	if tokenPath := os.Getenv("TOKEN_PATH"); tokenPath != "" {
		config.TokenPath = tokenPath
	}
	if timezone := os.Getenv("TIMEZONE"); timezone != "" {
		config.Timezone = timezone
	}
	if sheetIndex := os.Getenv("SHEET_INDEX"); sheetIndex != "" {
		var err error
		if config.SheetIndex, err = strconv.Atoi(sheetIndex); err != nil {
			return nil, fmt.Errorf("invalid SHEET_INDEX value: %w", err)
		}
	}
	if timeout := os.Getenv("REQUEST_TIMEOUT_SECONDS"); timeout != "" {
		var err error
		if config.RequestTimeoutSeconds, err = strconv.Atoi(timeout); err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS value: %w", err)
		}
	}

	// Step 3: Override with command-line flags (highest priority)
	if spreadsheetIDFlag != "" {
		config.SpreadsheetID = spreadsheetIDFlag
	}
	if credentialsPathFlag != "" {
		config.GoogleCredentialsPath = credentialsPathFlag
	}
	if tokenPathFlag != "" {
		config.TokenPath = tokenPathFlag
	}

	// Step 4: Apply defaults and validate required fields
	if config.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet_id must be provided via --spreadsheet flag, SPREADSHEET_ID environment variable, or config file")
	}
	if config.GoogleCredentialsPath == "" {
		return nil, fmt.Errorf("google_credentials_path must be provided via --credentials flag, GOOGLE_CREDENTIALS_PATH environment variable, or config file")
	}
	if config.TokenPath == "" {
		config.TokenPath = "token.json"
	}
	if config.SheetIndex < 0 {
		return nil, fmt.Errorf("sheet_index must not be negative, got %d", config.SheetIndex)
	}
	if config.RequestTimeoutSeconds == 0 {
		config.RequestTimeoutSeconds = 30
	}
	if config.RequestTimeoutSeconds < 0 {
		return nil, fmt.Errorf("request_timeout_seconds must not be negative, got %d", config.RequestTimeoutSeconds)
	}

	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return &config, nil
}
