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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ComputeClient handles communication with the remote computation services:
// prediction, clustering, anomaly detection and time-series forecasting.
// All heavy statistics live behind these endpoints; this client only carries
// request/response plumbing.
type ComputeClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *Logger
}

// NewComputeClient creates a client for the remote computation services
func NewComputeClient(baseURL string, timeout time.Duration, logger *Logger) *ComputeClient {
	return &ComputeClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchForecast requests a multi-month forecast from the remote forecasting
// service. A non-2xx response, a transport failure, or an error body naming
// an unloaded model all surface as *APIError so the caller can decide to
// fall back locally.
func (c *ComputeClient) FetchForecast(request ForecastRequest) (*ForecastResult, error) {
	var response ForecastResponse
	if err := c.postJSON(ForecastEndpointPath, request, &response); err != nil {
		return nil, err
	}

	if response.Error != "" {
		return nil, &APIError{
			Endpoint: c.baseURL + ForecastEndpointPath,
			Message:  response.Error,
		}
	}

	if len(response.Predictions) == 0 {
		return nil, &DataError{
			DataType: "forecast",
			Message:  "remote forecast returned no predictions",
		}
	}

	result := &ForecastResult{
		ForecastID:                 response.ForecastID,
		Predictions:                response.Predictions,
		TotalForecastedConsumption: response.TotalForecastedConsumption,
		TotalForecastedBill:        response.TotalForecastedBill,
		AverageMonthlyConsumption:  response.AverageMonthlyConsumption,
		AverageMonthlyBill:         response.AverageMonthlyBill,
		Trend:                      response.Trend,
		TrendPercentage:            response.TrendPercentage,
		HistoricalData:             response.HistoricalData,
		ModelUsed:                  response.ModelUsed,
		GeneratedAt:                time.Now(),
	}

	c.logger.Info("Remote forecast fetched",
		"forecast_id", result.ForecastID,
		"model", result.ModelUsed,
		"points", len(result.Predictions),
	)

	return result, nil
}

// FetchPrediction requests a consumption prediction for a household profile
func (c *ComputeClient) FetchPrediction(request PredictRequest) (*Prediction, error) {
	var response PredictResponse
	if err := c.postJSON(PredictEndpointPath, request, &response); err != nil {
		return nil, err
	}

	if response.Error != "" {
		return nil, &APIError{
			Endpoint: c.baseURL + PredictEndpointPath,
			Message:  response.Error,
		}
	}

	return &Prediction{
		PredictedConsumption: response.PredictedConsumption,
		PredictedBill:        response.PredictedBill,
		TariffBracket:        response.TariffBracket,
		ModelUsed:            response.ModelUsed,
	}, nil
}

// FetchCluster requests the household's usage-pattern cluster assignment
func (c *ComputeClient) FetchCluster(request ClusterRequest) (*ClusterAssignment, error) {
	var response ClusterResponse
	if err := c.postJSON(ClusterEndpointPath, request, &response); err != nil {
		return nil, err
	}

	if response.Error != "" {
		return nil, &APIError{
			Endpoint: c.baseURL + ClusterEndpointPath,
			Message:  response.Error,
		}
	}

	return &ClusterAssignment{
		Cluster:     response.Cluster,
		Label:       response.Label,
		Centroid:    response.Centroid,
		Description: response.Description,
	}, nil
}

// FetchAnomalies requests anomaly flags for a historical series
func (c *ComputeClient) FetchAnomalies(request AnomalyRequest) ([]AnomalyFlag, error) {
	var response AnomalyResponse
	if err := c.postJSON(AnomalyEndpointPath, request, &response); err != nil {
		return nil, err
	}

	if response.Error != "" {
		return nil, &APIError{
			Endpoint: c.baseURL + AnomalyEndpointPath,
			Message:  response.Error,
		}
	}

	return response.Anomalies, nil
}

// postJSON is the shared request helper: marshal, POST, classify failures,
// decode into target
func (c *ComputeClient) postJSON(path string, payload interface{}, target interface{}) error {
	url := c.baseURL + path

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", GetUserAgent())

	c.logger.LogAPIRequest("POST", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{
			Endpoint: url,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.LogAPIError(url, resp.StatusCode, fmt.Errorf("%s", string(bodyBytes)))
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   url,
			Message:    string(bodyBytes),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
