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
	"time"
)

// HouseholdInfo describes the household a forecast or prediction is for
type HouseholdInfo struct {
	HouseholdID string  `json:"household_id"`
	Region      string  `json:"region,omitempty"`
	Residents   int     `json:"residents,omitempty"`
	Rooms       int     `json:"rooms,omitempty"`
	Appliances  int     `json:"appliances,omitempty"`
	TariffPlan  string  `json:"tariff_plan,omitempty"`
	AvgIncome   float64 `json:"avg_income,omitempty"`
}

// ForecastPoint is a single predicted month
type ForecastPoint struct {
	Month                string  `json:"month"`                 // e.g. "March 2026"
	PredictedConsumption float64 `json:"predicted_consumption"` // kWh
	PredictedBill        float64 `json:"predicted_bill"`        // RWF
	TariffBracket        string  `json:"tariff_bracket"`
	Confidence           string  `json:"confidence"`
}

// ForecastResult is a complete multi-month forecast. It is constructed fresh
// on each request and never mutated afterwards; both the remote forecasting
// service and the local fallback produce this exact shape, so callers only
// learn which path ran from ModelUsed.
type ForecastResult struct {
	ForecastID                  string          `json:"forecast_id"`
	Predictions                 []ForecastPoint `json:"predictions"`
	TotalForecastedConsumption  float64         `json:"total_forecasted_consumption"`  // kWh
	TotalForecastedBill         float64         `json:"total_forecasted_bill"`         // RWF
	AverageMonthlyConsumption   float64         `json:"average_monthly_consumption"`   // kWh
	AverageMonthlyBill          float64         `json:"average_monthly_bill"`          // RWF
	Trend                       string          `json:"trend"` // increasing / decreasing
	TrendPercentage             float64         `json:"trend_percentage"`
	HistoricalData              []float64       `json:"historical_data"`
	ModelUsed                   string          `json:"model_used"`
	GeneratedAt                 time.Time       `json:"generated_at"`
}

// MonthlyReading is a recorded monthly consumption entry for a household
type MonthlyReading struct {
	Month      string    `json:"month"` // e.g. "2026-03"
	KWh        float64   `json:"kwh"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Session maps the original dashboard's browser-local household persistence
// to explicit state saved through storage
type Session struct {
	HouseholdID string        `json:"household_id"`
	Household   HouseholdInfo `json:"household"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Prediction is the remote ML service's consumption prediction for a household
type Prediction struct {
	PredictedConsumption float64 `json:"predicted_consumption"` // kWh
	PredictedBill        float64 `json:"predicted_bill"`        // RWF
	TariffBracket        string  `json:"tariff_bracket"`
	ModelUsed            string  `json:"model_used"`
}

// ClusterAssignment is the remote K-Means service's usage-pattern grouping
type ClusterAssignment struct {
	Cluster     int     `json:"cluster"`
	Label       string  `json:"label"` // e.g. "low usage", "high usage"
	Centroid    float64 `json:"centroid"`
	Description string  `json:"description,omitempty"`
}

// AnomalyFlag marks one historical month the remote Isolation Forest service
// considers unusual
type AnomalyFlag struct {
	Index    int     `json:"index"`
	Month    string  `json:"month,omitempty"`
	Value    float64 `json:"value"`
	Score    float64 `json:"score"`
	Severity string  `json:"severity,omitempty"`
}

// ReductionAdvice is the outcome of the consumption-reduction heuristic:
// what it takes to drop into the next cheaper tariff bracket
type ReductionAdvice struct {
	CurrentConsumption float64 `json:"current_consumption"` // kWh
	CurrentBracket     string  `json:"current_bracket"`
	TargetConsumption  float64 `json:"target_consumption"` // kWh
	TargetBracket      string  `json:"target_bracket"`
	ReductionKWh       float64 `json:"reduction_kwh"`
	ReductionPercent   float64 `json:"reduction_percent"`
	EstimatedSaving    float64 `json:"estimated_saving"` // RWF per month
}

// Insight represents an actionable recommendation shown on the dashboard
type Insight struct {
	Category    string `json:"category"` // tariff, trend, usage, data
	Priority    string `json:"priority"` // high, medium, low
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// AnalysisResult bundles everything the dashboard report presents for one
// household: the forecast, the statistics behind it, and the advice
type AnalysisResult struct {
	GeneratedAt      time.Time        `json:"generated_at"`
	Household        HouseholdInfo    `json:"household"`
	Forecast         *ForecastResult  `json:"forecast"`
	HistoricalMean   float64          `json:"historical_mean"`    // kWh
	HistoricalStdDev float64          `json:"historical_std_dev"` // kWh
	LatestBill       float64          `json:"latest_bill"`        // RWF
	Reduction        *ReductionAdvice `json:"reduction,omitempty"`
	Anomalies        []AnomalyFlag    `json:"anomalies,omitempty"`
	Cluster          *ClusterAssignment `json:"cluster,omitempty"`
	Insights         []Insight        `json:"insights"`
	// Charts (base64 encoded PNG images)
	ConsumptionChart string `json:"consumption_chart,omitempty"`
	BillChart        string `json:"bill_chart,omitempty"`
}

// Wire types for the remote computation services

// ForecastRequest is the body sent to the remote forecasting endpoint; the
// local fallback accepts the same inputs
type ForecastRequest struct {
	HistoricalData []float64     `json:"historical_data"`
	ForecastMonths int           `json:"forecast_months"`
	HouseholdInfo  HouseholdInfo `json:"household_info"`
}

// ForecastResponse mirrors the remote forecasting endpoint's reply. Its shape
// is structurally identical to ForecastResult so either path satisfies the
// same callers.
type ForecastResponse struct {
	ForecastID                 string          `json:"forecast_id"`
	Predictions                []ForecastPoint `json:"predictions"`
	TotalForecastedConsumption float64         `json:"total_forecasted_consumption"`
	TotalForecastedBill        float64         `json:"total_forecasted_bill"`
	AverageMonthlyConsumption  float64         `json:"average_monthly_consumption"`
	AverageMonthlyBill         float64         `json:"average_monthly_bill"`
	Trend                      string          `json:"trend"`
	TrendPercentage            float64         `json:"trend_percentage"`
	HistoricalData             []float64       `json:"historical_data"`
	ModelUsed                  string          `json:"model_used"`
	Error                      string          `json:"error,omitempty"`
}

// PredictRequest is the body sent to the remote prediction endpoint
type PredictRequest struct {
	HouseholdInfo HouseholdInfo `json:"household_info"`
	ApplianceKWh  []float64     `json:"appliance_kwh,omitempty"`
}

// PredictResponse mirrors the remote prediction endpoint's reply
type PredictResponse struct {
	PredictedConsumption float64 `json:"predicted_consumption"`
	PredictedBill        float64 `json:"predicted_bill"`
	TariffBracket        string  `json:"tariff_bracket"`
	ModelUsed            string  `json:"model_used"`
	Error                string  `json:"error,omitempty"`
}

// ClusterRequest is the body sent to the remote clustering endpoint
type ClusterRequest struct {
	HistoricalData []float64     `json:"historical_data"`
	HouseholdInfo  HouseholdInfo `json:"household_info"`
}

// ClusterResponse mirrors the remote clustering endpoint's reply
type ClusterResponse struct {
	Cluster     int     `json:"cluster"`
	Label       string  `json:"label"`
	Centroid    float64 `json:"centroid"`
	Description string  `json:"description,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// AnomalyRequest is the body sent to the remote anomaly-detection endpoint
type AnomalyRequest struct {
	HistoricalData []float64 `json:"historical_data"`
}

// AnomalyResponse mirrors the remote anomaly-detection endpoint's reply
type AnomalyResponse struct {
	Anomalies []AnomalyFlag `json:"anomalies"`
	Error     string        `json:"error,omitempty"`
}

// ErrorEnvelope is the JSON error body the HTTP API returns
type ErrorEnvelope struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
