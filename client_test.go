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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string) *ComputeClient {
	return NewComputeClient(baseURL, 5*time.Second, NewLogger(false))
}

func TestFetchForecastNon2xxIsAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).FetchForecast(ForecastRequest{
		HistoricalData: []float64{10, 12},
		ForecastMonths: 3,
	})
	if err == nil {
		t.Fatal("expected an error for a 503 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", apiErr.StatusCode)
	}
	if !apiErr.IsModelUnavailable() {
		t.Error("503 should be classified as model unavailability")
	}
	if !apiErr.IsRetryable() {
		t.Error("503 should be retryable")
	}
}

func TestFetchForecastErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ForecastResponse{Error: "model not loaded"})
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).FetchForecast(ForecastRequest{
		HistoricalData: []float64{10, 12},
		ForecastMonths: 3,
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *APIError", err)
	}
	if !apiErr.IsModelUnavailable() {
		t.Errorf("%q should be classified as model unavailability", apiErr.Message)
	}
}

func TestFetchForecastEmptyPredictions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ForecastResponse{ForecastID: "empty", ModelUsed: "sarima"})
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).FetchForecast(ForecastRequest{
		HistoricalData: []float64{10, 12},
		ForecastMonths: 3,
	})

	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("error type %T, want *DataError", err)
	}
}

func TestFetchForecastTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	_, err := newTestClient(ts.URL).FetchForecast(ForecastRequest{
		HistoricalData: []float64{10, 12},
		ForecastMonths: 3,
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *APIError", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("status %d, want 0 for a transport failure", apiErr.StatusCode)
	}
	if apiErr.Unwrap() == nil {
		t.Error("transport failure should wrap the underlying error")
	}
}

func TestFetchPrediction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PredictEndpointPath {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type %q, want application/json", ct)
		}
		json.NewEncoder(w).Encode(PredictResponse{
			PredictedConsumption: 34.5,
			PredictedBill:        CalculateBill(34.5),
			TariffBracket:        BracketMid,
			ModelUsed:            "random_forest",
		})
	}))
	defer ts.Close()

	prediction, err := newTestClient(ts.URL).FetchPrediction(PredictRequest{
		HouseholdInfo: HouseholdInfo{HouseholdID: "HH-001", Residents: 4},
	})
	if err != nil {
		t.Fatalf("FetchPrediction: %v", err)
	}
	if prediction.PredictedConsumption != 34.5 {
		t.Errorf("consumption %v, want 34.5", prediction.PredictedConsumption)
	}
	if prediction.TariffBracket != BracketMid {
		t.Errorf("bracket %q, want %q", prediction.TariffBracket, BracketMid)
	}
}

func TestFetchAnomalies(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request AnomalyRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(request.HistoricalData) != 4 {
			t.Errorf("got %d historical points, want 4", len(request.HistoricalData))
		}
		json.NewEncoder(w).Encode(AnomalyResponse{
			Anomalies: []AnomalyFlag{{Index: 3, Value: 90, Score: -0.7, Severity: "high"}},
		})
	}))
	defer ts.Close()

	anomalies, err := newTestClient(ts.URL).FetchAnomalies(AnomalyRequest{
		HistoricalData: []float64{10, 11, 12, 90},
	})
	if err != nil {
		t.Fatalf("FetchAnomalies: %v", err)
	}
	if len(anomalies) != 1 || anomalies[0].Index != 3 {
		t.Errorf("unexpected anomalies: %+v", anomalies)
	}
}
