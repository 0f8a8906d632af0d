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
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestAPIAgainst wires the full API against the given remote compute
// services base URL.
func newTestAPIAgainst(t *testing.T, remoteURL string) http.Handler {
	t.Helper()
	logger := NewLogger(false)
	storage, err := NewStorage(t.TempDir(), "HH-API", logger)
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	config := &Config{
		HouseholdID:    "HH-API",
		APIBase:        remoteURL,
		RequestTimeout: 5,
		ForecastMonths: DefaultForecastMonths,
	}
	client := NewComputeClient(remoteURL, 2*time.Second, logger)
	service := NewForecastService(client, testForecaster(21), storage, config, logger)

	return NewServer(service, storage, config, logger).Handler()
}

// newTestAPI wires the full API against an unreachable remote, so every
// forecast request exercises the local fallback path.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()

	return newTestAPIAgainst(t, down.URL)
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestAPI(t)

	resp := doRequest(t, handler, http.MethodGet, "/health", "")
	if resp.Code != http.StatusOK {
		t.Errorf("status %d, want 200", resp.Code)
	}
	if resp.Body.String() != "OK" {
		t.Errorf("body %q, want OK", resp.Body.String())
	}
}

func TestTariffEstimateEndpoint(t *testing.T) {
	handler := newTestAPI(t)

	resp := doRequest(t, handler, http.MethodGet, "/api/tariff/estimate?kwh=5", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.Code)
	}

	var payload struct {
		KWh          float64 `json:"kwh"`
		Bill         float64 `json:"bill"`
		Bracket      string  `json:"bracket"`
		MarginalRate float64 `json:"marginal_rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if math.Abs(payload.Bill-445) > 1e-9 {
		t.Errorf("bill %v, want 445", payload.Bill)
	}
	if payload.Bracket != BracketLow {
		t.Errorf("bracket %q, want %q", payload.Bracket, BracketLow)
	}
	if payload.MarginalRate != TariffTier1Rate {
		t.Errorf("marginal rate %v, want %v", payload.MarginalRate, TariffTier1Rate)
	}
}

func TestTariffEstimateRejectsBadInput(t *testing.T) {
	handler := newTestAPI(t)

	for _, query := range []string{"", "kwh=abc", "kwh=-3"} {
		path := "/api/tariff/estimate"
		if query != "" {
			path += "?" + query
		}
		resp := doRequest(t, handler, http.MethodGet, path, "")
		if resp.Code != http.StatusBadRequest {
			t.Errorf("query %q: status %d, want 400", query, resp.Code)
		}
	}
}

func TestForecastEndpointFallback(t *testing.T) {
	handler := newTestAPI(t)

	body := `{"historical_data": [10, 20, 30], "forecast_months": 3}`
	resp := doRequest(t, handler, http.MethodPost, "/api/forecast", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", resp.Code, resp.Body.String())
	}

	var result ForecastResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.ModelUsed != FallbackModelName {
		t.Errorf("model %q, want %q", result.ModelUsed, FallbackModelName)
	}
	if len(result.Predictions) != 3 {
		t.Errorf("got %d points, want 3", len(result.Predictions))
	}
	for _, point := range result.Predictions {
		if point.PredictedConsumption <= 0 {
			t.Errorf("non-positive consumption %v for %s", point.PredictedConsumption, point.Month)
		}
	}

	// A successful forecast becomes retrievable as the latest one
	latest := doRequest(t, handler, http.MethodGet, "/api/forecasts/latest?household=HH-API", "")
	if latest.Code != http.StatusOK {
		t.Fatalf("latest status %d, want 200", latest.Code)
	}
	var stored ForecastResult
	if err := json.NewDecoder(latest.Body).Decode(&stored); err != nil {
		t.Fatalf("decoding latest: %v", err)
	}
	if stored.ForecastID != result.ForecastID {
		t.Errorf("latest forecast ID %q, want %q", stored.ForecastID, result.ForecastID)
	}
}

func TestForecastEndpointValidation(t *testing.T) {
	handler := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"historical_data": [10,`},
		{"horizon too long", `{"historical_data": [10, 20], "forecast_months": 25}`},
		{"negative readings", `{"historical_data": [10, -5, 20], "forecast_months": 3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, handler, http.MethodPost, "/api/forecast", tt.body)
			if resp.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400", resp.Code)
			}
			var envelope ErrorEnvelope
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				t.Fatalf("decoding error envelope: %v", err)
			}
			if envelope.Message == "" {
				t.Error("error envelope should carry a message")
			}
		})
	}
}

func TestPredictEndpointProxiesRemote(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PredictEndpointPath {
			http.NotFound(w, r)
			return
		}
		var request PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if request.HouseholdInfo.HouseholdID != "HH-API" {
			t.Errorf("household %q, want the configured default", request.HouseholdInfo.HouseholdID)
		}
		json.NewEncoder(w).Encode(PredictResponse{
			PredictedConsumption: 28.4,
			PredictedBill:        CalculateBill(28.4),
			TariffBracket:        BracketMid,
			ModelUsed:            "random_forest",
		})
	}))
	defer remote.Close()

	handler := newTestAPIAgainst(t, remote.URL)

	resp := doRequest(t, handler, http.MethodPost, "/api/predict", `{}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", resp.Code, resp.Body.String())
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if prediction.PredictedConsumption != 28.4 {
		t.Errorf("consumption %v, want 28.4", prediction.PredictedConsumption)
	}
	if prediction.ModelUsed != "random_forest" {
		t.Errorf("model %q, want the remote backend's name", prediction.ModelUsed)
	}
}

func TestPredictEndpointRemoteDown(t *testing.T) {
	handler := newTestAPI(t)

	resp := doRequest(t, handler, http.MethodPost, "/api/predict", `{}`)
	if resp.Code != http.StatusBadGateway {
		t.Errorf("status %d, want 502 when the prediction service is unreachable", resp.Code)
	}
}

func TestPredictEndpointRejectsBadJSON(t *testing.T) {
	handler := newTestAPI(t)

	resp := doRequest(t, handler, http.MethodPost, "/api/predict", `{"household_info":`)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("status %d, want 400", resp.Code)
	}
}

func TestLatestForecastNotFound(t *testing.T) {
	handler := newTestAPI(t)

	resp := doRequest(t, handler, http.MethodGet, "/api/forecasts/latest?household=HH-UNKNOWN", "")
	if resp.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", resp.Code)
	}
}

func TestReadingsEndpoints(t *testing.T) {
	handler := newTestAPI(t)

	post := doRequest(t, handler, http.MethodPost, "/api/readings",
		`{"household_id": "HH-API", "month": "2026-02", "kwh": 18.5}`)
	if post.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201: %s", post.Code, post.Body.String())
	}

	// Defaults to the configured household when none is given
	post = doRequest(t, handler, http.MethodPost, "/api/readings",
		`{"month": "2026-01", "kwh": 16}`)
	if post.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201", post.Code)
	}

	list := doRequest(t, handler, http.MethodGet, "/api/readings?household=HH-API", "")
	if list.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", list.Code)
	}
	var readings []MonthlyReading
	if err := json.NewDecoder(list.Body).Decode(&readings); err != nil {
		t.Fatalf("decoding readings: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(readings))
	}
	if readings[0].Month != "2026-01" {
		t.Errorf("first reading %q, want the oldest month", readings[0].Month)
	}
}

func TestReadingsValidation(t *testing.T) {
	handler := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad month format", `{"household_id": "HH-API", "month": "February 2026", "kwh": 10}`},
		{"negative kwh", `{"household_id": "HH-API", "month": "2026-02", "kwh": -1}`},
		{"malformed JSON", `{"month":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, handler, http.MethodPost, "/api/readings", tt.body)
			if resp.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400", resp.Code)
			}
		})
	}
}

func TestReadingsListEmpty(t *testing.T) {
	handler := newTestAPI(t)

	resp := doRequest(t, handler, http.MethodGet, "/api/readings?household=HH-EMPTY", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.Code)
	}
	if body := strings.TrimSpace(resp.Body.String()); body != "[]" {
		t.Errorf("body %q, want an empty JSON array", body)
	}
}
