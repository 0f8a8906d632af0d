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
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server exposes the dashboard JSON API consumed by the front end
type Server struct {
	service *ForecastService
	storage *Storage
	config  *Config
	logger  *Logger
}

// NewServer creates the dashboard API server
func NewServer(service *ForecastService, storage *Storage, config *Config, logger *Logger) *Server {
	return &Server{
		service: service,
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// Handler builds the routed, CORS-wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/forecast", s.handleForecast).Methods(http.MethodPost)
	api.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	api.HandleFunc("/tariff/estimate", s.handleTariffEstimate).Methods(http.MethodGet)
	api.HandleFunc("/forecasts/latest", s.handleLatestForecast).Methods(http.MethodGet)
	api.HandleFunc("/readings", s.handleAddReading).Methods(http.MethodPost)
	api.HandleFunc("/readings", s.handleListReadings).Methods(http.MethodGet)

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}
	if len(s.config.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = s.config.AllowedOrigins
	}

	return cors.New(corsOptions).Handler(router)
}

// ListenAndServe starts the API server
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("Starting dashboard API", "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleForecast runs the remote-with-fallback forecast path
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var request ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if request.ForecastMonths < 1 {
		request.ForecastMonths = s.config.ForecastMonths
	}
	if request.ForecastMonths > 24 {
		s.respondError(w, http.StatusBadRequest, "forecast_months must be at most 24")
		return
	}
	if _, err := validateSeries(request.HistoricalData); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if request.HouseholdInfo.HouseholdID == "" {
		request.HouseholdInfo = s.config.Household()
	}

	result := s.service.Forecast(request.HistoricalData, request.ForecastMonths, request.HouseholdInfo)

	if err := s.storage.SaveForecastResult(result, request.HouseholdInfo.HouseholdID); err != nil {
		s.logger.Warn("Failed to save forecast result", "error", err)
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handlePredict proxies a household consumption prediction to the remote
// model; there is no local fallback for this path
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var request PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if request.HouseholdInfo.HouseholdID == "" {
		request.HouseholdInfo = s.config.Household()
	}

	prediction, err := s.service.Predict(request)
	if err != nil {
		s.logger.Error("Prediction request failed", "error", err)
		s.respondError(w, http.StatusBadGateway, "prediction service unavailable")
		return
	}

	s.respondJSON(w, http.StatusOK, prediction)
}

// handleTariffEstimate computes bill and bracket for a consumption figure
func (s *Server) handleTariffEstimate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("kwh")
	kwh, err := strconv.ParseFloat(raw, 64)
	if err != nil || kwh < 0 {
		s.respondError(w, http.StatusBadRequest, "kwh must be a non-negative number")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"kwh":           kwh,
		"bill":          round2(CalculateBill(kwh)),
		"bracket":       TariffBracket(kwh),
		"marginal_rate": MarginalRate(kwh),
	})
}

// handleLatestForecast returns the last stored forecast for a household
func (s *Server) handleLatestForecast(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("household")
	if householdID == "" {
		householdID = s.config.HouseholdID
	}
	if householdID == "" {
		s.respondError(w, http.StatusBadRequest, "household is required")
		return
	}

	result, err := s.storage.LoadLatestForecast(householdID)
	if err != nil {
		s.logger.Error("Failed to load latest forecast", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load forecast")
		return
	}
	if result == nil {
		s.respondError(w, http.StatusNotFound, "no forecast recorded for household")
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handleAddReading records one monthly consumption reading
func (s *Server) handleAddReading(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		HouseholdID string  `json:"household_id"`
		Month       string  `json:"month"`
		KWh         float64 `json:"kwh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if payload.HouseholdID == "" {
		payload.HouseholdID = s.config.HouseholdID
	}
	if payload.HouseholdID == "" {
		s.respondError(w, http.StatusBadRequest, "household_id is required")
		return
	}
	if payload.KWh < 0 {
		s.respondError(w, http.StatusBadRequest, "kwh must be non-negative")
		return
	}
	if _, err := time.Parse("2006-01", payload.Month); err != nil {
		s.respondError(w, http.StatusBadRequest, "month must be formatted YYYY-MM")
		return
	}

	reading := MonthlyReading{
		Month:      payload.Month,
		KWh:        payload.KWh,
		RecordedAt: time.Now(),
	}

	if err := s.storage.AppendReading(payload.HouseholdID, reading); err != nil {
		s.logger.Error("Failed to record reading", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to record reading")
		return
	}

	s.respondJSON(w, http.StatusCreated, reading)
}

// handleListReadings lists the recorded readings for a household
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("household")
	if householdID == "" {
		householdID = s.config.HouseholdID
	}
	if householdID == "" {
		s.respondError(w, http.StatusBadRequest, "household is required")
		return
	}

	readings, err := s.storage.LoadReadings(householdID)
	if err != nil {
		s.logger.Error("Failed to load readings", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	if readings == nil {
		readings = []MonthlyReading{}
	}

	s.respondJSON(w, http.StatusOK, readings)
}

// handleHealth is the liveness probe
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// respondJSON sends a JSON success response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error envelope
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorEnvelope{
		StatusCode: statusCode,
		Message:    message,
	})
}
