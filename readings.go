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
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"
)

// MaxHistoryMonths caps how much history a single forecast request accepts
const MaxHistoryMonths = 120

// LoadSeriesFile loads a historical monthly kWh series from a JSON or CSV
// file. JSON files hold a plain number array; CSV files hold one value per
// row (an optional header row is skipped), in chronological order.
func LoadSeriesFile(path string) ([]float64, error) {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return loadSeriesJSON(path)
	}
	return loadSeriesCSV(path)
}

func loadSeriesJSON(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{
			Operation: "read_series",
			Path:      path,
			Err:       err,
		}
	}

	var series []float64
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, &DataError{
			DataType: "historical_series",
			Message:  "file must contain a JSON array of monthly kWh values",
		}
	}

	return validateSeries(series)
}

func loadSeriesCSV(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &StorageError{
			Operation: "open_series",
			Path:      path,
			Err:       err,
		}
	}
	defer file.Close()

	return loadSeriesCSVFromReader(file)
}

func loadSeriesCSVFromReader(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var series []float64
	first := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataError{
				DataType: "historical_series",
				Message:  "malformed CSV row",
			}
		}
		if len(record) == 0 {
			continue
		}

		// The value is in the last field so "month,kwh" rows work too
		raw := strings.TrimSpace(record[len(record)-1])
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// A header row is fine once, at the top
			if first {
				first = false
				continue
			}
			return nil, &DataError{
				DataType: "historical_series",
				Message:  "non-numeric value: " + raw,
			}
		}
		first = false
		series = append(series, value)
	}

	return validateSeries(series)
}

// validateSeries enforces the input contract: non-negative values, bounded
// length
func validateSeries(series []float64) ([]float64, error) {
	if len(series) > MaxHistoryMonths {
		return nil, &DataError{
			DataType: "historical_series",
			Message:  "series exceeds " + strconv.Itoa(MaxHistoryMonths) + " months",
		}
	}

	for i, v := range series {
		if v < 0 {
			return nil, &DataError{
				DataType: "historical_series",
				Message:  "negative consumption at month " + strconv.Itoa(i),
			}
		}
	}

	return series, nil
}

// SeriesFromReadings flattens recorded monthly readings into the kWh series
// the forecaster consumes
func SeriesFromReadings(readings []MonthlyReading) []float64 {
	series := make([]float64, len(readings))
	for i, r := range readings {
		series[i] = r.KWh
	}
	return series
}
