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
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	// Define command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	householdID := flag.String("household", "", "Household ID (overrides config)")
	inputPath := flag.String("input", "", "JSON or CSV file with historical monthly kWh values")
	months := flag.Int("months", 0, "Forecast horizon in months (overrides config)")
	outputPath := flag.String("output", "", "Output file for report (default: stdout)")
	serve := flag.Bool("serve", false, "Run the dashboard API server instead of a one-shot report")
	addr := flag.String("addr", "", "API listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("energy-dashboard %s\n", GetVersion())
		os.Exit(0)
	}

	// Optional .env file for local development
	_ = godotenv.Load()

	// Initialize logger
	logger := NewLogger(*debug)
	logger.Info("Starting energy-dashboard", "version", GetVersion())

	// Check for updates (non-blocking)
	go CheckForUpdates(logger)

	// Load configuration
	logger.Info("Loading configuration", "config_file", *configPath)
	config, err := LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Override with command-line flags
	if *householdID != "" {
		config.HouseholdID = *householdID
	}
	if *months > 0 {
		config.ForecastMonths = *months
	}
	if *addr != "" {
		config.ServeAddr = *addr
	}
	if *debug {
		config.Debug = true
		// Recreate logger with debug enabled
		logger = NewLogger(true)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Configuration loaded successfully")

	// Initialize storage
	logger.Info("Initializing storage", "path", config.StoragePath)
	storage, err := NewStorage(config.StoragePath, config.HouseholdID, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	// Wire the remote services client, the fallback forecaster and the service
	logger.Info("Creating compute services client", "api_base", config.APIBase)
	client := NewComputeClient(config.APIBase, time.Duration(config.RequestTimeout)*time.Second, logger)
	forecaster := NewForecaster(logger)
	service := NewForecastService(client, forecaster, storage, config, logger)

	// Persist the household session so later runs pick up the same household
	if err := storage.SaveSession(&Session{
		HouseholdID: config.HouseholdID,
		Household:   config.Household(),
	}); err != nil {
		logger.Warn("Failed to save session", "error", err)
	}

	// Serve mode: run the dashboard JSON API
	if *serve {
		server := NewServer(service, storage, config, logger)
		if err := server.ListenAndServe(config.ServeAddr); err != nil {
			logger.Error("API server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	// One-shot mode: load history, run the pipeline, write the report
	historical, err := loadHistory(*inputPath, config, storage, logger)
	if err != nil {
		logger.Error("Failed to load historical series", "error", err)
		os.Exit(1)
	}

	logger.Info("Running forecast pipeline",
		"history_len", len(historical),
		"months", config.ForecastMonths,
	)
	result := service.Analyze(historical, config.ForecastMonths, config.Household())

	reporter := NewReporter(logger)
	if err := reporter.GenerateReport(result, *outputPath); err != nil {
		logger.Error("Failed to generate report", "error", err)
		os.Exit(1)
	}

	logger.Info("Forecast completed successfully", "forecast_id", result.Forecast.ForecastID)
}

// loadHistory loads the historical series from the input file when given,
// otherwise from the household's recorded readings
func loadHistory(inputPath string, config *Config, storage *Storage, logger *Logger) ([]float64, error) {
	if inputPath != "" {
		logger.Info("Loading historical series from file", "path", inputPath)
		return LoadSeriesFile(inputPath)
	}

	readings, err := storage.LoadReadings(config.HouseholdID)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded recorded readings", "count", len(readings))
	return SeriesFromReadings(readings), nil
}
