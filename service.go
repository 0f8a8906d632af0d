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
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"time"
)

// ForecastService orchestrates forecasting: the remote forecasting service
// is authoritative, the local forecaster is the transparent recovery path.
// Callers cannot tell which path produced a result except via ModelUsed.
type ForecastService struct {
	client     *ComputeClient
	forecaster *Forecaster
	storage    *Storage
	config     *Config
	logger     *Logger
}

// NewForecastService creates a forecast service
func NewForecastService(client *ComputeClient, forecaster *Forecaster, storage *Storage, config *Config, logger *Logger) *ForecastService {
	return &ForecastService{
		client:     client,
		forecaster: forecaster,
		storage:    storage,
		config:     config,
		logger:     logger,
	}
}

// Forecast produces a multi-month forecast for the household. Remote results
// are cached briefly, keyed by household, horizon and a digest of the series
// content so an edited month invalidates the entry; fallback results are
// never cached so a recovered remote service takes over on the next request.
func (s *ForecastService) Forecast(historical []float64, months int, household HouseholdInfo) *ForecastResult {
	if months < 1 {
		months = s.config.ForecastMonths
	}

	logger := s.logger.WithHousehold(household.HouseholdID)

	cacheKey := fmt.Sprintf("forecast_%s_%d_%s", household.HouseholdID, months, seriesDigest(historical))
	var cachedResult *ForecastResult
	cached, err := s.storage.LoadCache(cacheKey, &cachedResult)
	if err != nil {
		logger.Warn("Failed to load forecast from cache", "error", err)
	}
	if cached && cachedResult != nil {
		logger.Info("Loaded forecast from cache", "forecast_id", cachedResult.ForecastID)
		return cachedResult
	}

	request := ForecastRequest{
		HistoricalData: historical,
		ForecastMonths: months,
		HouseholdInfo:  household,
	}

	result, err := s.client.FetchForecast(request)
	if err != nil {
		logger.LogFallback(fallbackReason(err), err)
		return s.forecaster.Forecast(historical, months)
	}

	if err := s.storage.SaveCache(cacheKey, result, 1*time.Hour); err != nil {
		logger.Warn("Failed to cache forecast", "error", err)
	}

	return result
}

// seriesDigest hashes the series values so cache keys change whenever any
// reading changes, not just when the series length does
func seriesDigest(series []float64) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range series {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Predict proxies a household consumption prediction to the remote model.
// Unlike forecasting there is no local recovery path: the prediction depends
// entirely on the remote trained model, so its errors surface to the caller.
func (s *ForecastService) Predict(request PredictRequest) (*Prediction, error) {
	prediction, err := s.client.FetchPrediction(request)
	if err != nil {
		return nil, err
	}

	s.logger.WithHousehold(request.HouseholdInfo.HouseholdID).Info("Prediction fetched",
		"model", prediction.ModelUsed,
		"consumption", prediction.PredictedConsumption,
	)
	return prediction, nil
}

// fallbackReason classifies why the remote path was abandoned, for logging
func fallbackReason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsModelUnavailable() {
			return "model_unavailable"
		}
		if apiErr.StatusCode > 0 {
			return fmt.Sprintf("status_%d", apiErr.StatusCode)
		}
		return "transport"
	}
	return "invalid_response"
}

// Analyze runs the full pipeline for a household: forecast (remote with
// fallback), historical statistics, reduction advice, best-effort cluster
// and anomaly enrichment, and insights.
func (s *ForecastService) Analyze(historical []float64, months int, household HouseholdInfo) *AnalysisResult {
	logger := s.logger.WithHousehold(household.HouseholdID)

	logger.LogForecastStage("forecast")
	forecast := s.Forecast(historical, months, household)

	analyzer := NewAnalyzer(s.config, logger)

	logger.LogForecastStage("analysis")
	result := analyzer.Analyze(historical, forecast, household)

	// Cluster and anomaly context comes from remote services only; without
	// them the report simply omits those sections.
	logger.LogForecastStage("enrichment")
	if cluster, err := s.client.FetchCluster(ClusterRequest{
		HistoricalData: historical,
		HouseholdInfo:  household,
	}); err != nil {
		logger.Debug("Cluster enrichment unavailable", "error", err)
	} else {
		result.Cluster = cluster
	}

	if len(historical) > 0 {
		if anomalies, err := s.client.FetchAnomalies(AnomalyRequest{
			HistoricalData: historical,
		}); err != nil {
			logger.Debug("Anomaly enrichment unavailable", "error", err)
		} else {
			result.Anomalies = anomalies
		}
	}

	logger.LogForecastStage("insights")
	result.Insights = analyzer.GenerateInsights(result)

	// Persist the result so the dashboard can reload the latest forecast
	if err := s.storage.SaveForecastResult(forecast, household.HouseholdID); err != nil {
		logger.Warn("Failed to save forecast result", "error", err)
	}

	return result
}
