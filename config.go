// Copyright 2025 Serge Kamanzi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Household identity
	HouseholdID string `yaml:"household_id"`

	// Remote computation services
	APIBase        string `yaml:"api_base"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`

	// Forecast settings
	ForecastMonths int `yaml:"forecast_months"`

	// Household profile sent alongside forecast/prediction requests
	Region     string  `yaml:"region"`
	Residents  int     `yaml:"residents"`
	Rooms      int     `yaml:"rooms"`
	Appliances int     `yaml:"appliances"`
	TariffPlan string  `yaml:"tariff_plan"`
	AvgIncome  float64 `yaml:"avg_income"`

	// HTTP API
	ServeAddr      string   `yaml:"serve_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Storage
	StoragePath string `yaml:"storage_path"`

	// Debugging
	Debug bool `yaml:"debug"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Set defaults
	config := &Config{
		APIBase:        DefaultAPIBase,
		RequestTimeout: 30,
		ForecastMonths: DefaultForecastMonths,
		ServeAddr:      ":8080",
		StoragePath:    getDefaultStoragePath(),
		Debug:          false,
	}

	// If no path provided, return defaults with env var overrides
	if path == "" {
		config.applyEnvironmentVariables()
		return config, nil
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentVariables()

	return config, nil
}

// getDefaultStoragePath returns the default storage path
func getDefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".energy-dashboard"
	}
	return filepath.Join(home, ".config", "energy-dashboard")
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("ENERGY_HOUSEHOLD_ID"); val != "" {
		c.HouseholdID = val
	}
	if val := os.Getenv("ENERGY_API_BASE"); val != "" {
		c.APIBase = val
	}
	if val := os.Getenv("ENERGY_FORECAST_MONTHS"); val != "" {
		if months, err := strconv.Atoi(val); err == nil {
			c.ForecastMonths = months
		}
	}
	if val := os.Getenv("ENERGY_SERVE_ADDR"); val != "" {
		c.ServeAddr = val
	}
	if val := os.Getenv("ENERGY_STORAGE_PATH"); val != "" {
		c.StoragePath = val
	}
	if val := os.Getenv("ENERGY_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Household builds the household profile sent to the remote services
func (c *Config) Household() HouseholdInfo {
	return HouseholdInfo{
		HouseholdID: c.HouseholdID,
		Region:      c.Region,
		Residents:   c.Residents,
		Rooms:       c.Rooms,
		Appliances:  c.Appliances,
		TariffPlan:  c.TariffPlan,
		AvgIncome:   c.AvgIncome,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	if c.HouseholdID == "" {
		errors = append(errors, "household_id is required")
	}

	if c.APIBase == "" {
		errors = append(errors, "api_base is required")
	} else if !strings.HasPrefix(c.APIBase, "http://") && !strings.HasPrefix(c.APIBase, "https://") {
		errors = append(errors, "api_base must be an http(s) URL")
	}

	// Validate forecast horizon
	if c.ForecastMonths < 1 || c.ForecastMonths > 24 {
		errors = append(errors, "forecast_months must be between 1 and 24")
	}

	// Validate request timeout
	if c.RequestTimeout < 1 || c.RequestTimeout > 300 {
		errors = append(errors, "request_timeout_seconds must be between 1 and 300")
	}

	// Set default storage path if empty
	if c.StoragePath == "" {
		c.StoragePath = getDefaultStoragePath()
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
