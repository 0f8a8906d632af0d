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

const (
	// DefaultAPIBase is the base URL of the remote computation services
	// (prediction, clustering, anomaly detection, forecasting)
	DefaultAPIBase = "http://localhost:8000/api"

	// ForecastEndpointPath is the remote SARIMA forecasting endpoint
	ForecastEndpointPath = "/forecast"

	// PredictEndpointPath is the remote consumption prediction endpoint
	PredictEndpointPath = "/predict"

	// ClusterEndpointPath is the remote K-Means usage clustering endpoint
	ClusterEndpointPath = "/cluster"

	// AnomalyEndpointPath is the remote Isolation Forest anomaly endpoint
	AnomalyEndpointPath = "/anomalies"
)

// Residential electricity tariff, RWF per kWh, in three consumption tiers.
// The thresholds and rates are fixed and shared by the fallback forecaster,
// the analyzer and the HTTP API.
const (
	TariffTier1Limit = 20.0
	TariffTier2Limit = 50.0

	TariffTier1Rate = 89.0
	TariffTier2Rate = 310.0
	TariffTier3Rate = 369.0
)

// Tariff bracket labels, derived from the same thresholds as the bill.
const (
	BracketLow  = "0-20 kWh"
	BracketMid  = "21-50 kWh"
	BracketHigh = "50+ kWh"
)

// Forecast confidence labels, a function of historical series length only.
const (
	ConfidenceLow       = "low"
	ConfidenceLowMedium = "low-medium"
	ConfidenceMedium    = "medium"
)

const (
	// FallbackBaselineKWh is emitted for every month when the historical
	// series is empty or has a zero mean
	FallbackBaselineKWh = 5.0

	// FallbackModelName identifies a locally computed fallback forecast in
	// the model_used field; remote results carry the backend's own name
	FallbackModelName = "linear_regression_fallback"

	// DefaultForecastMonths is the horizon used when the caller does not
	// request one
	DefaultForecastMonths = 6
)

// Trend directions reported on a forecast result.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
)
