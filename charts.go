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
	"encoding/base64"
	"fmt"
	"math"
	"time"

	charts "github.com/vicanso/go-charts/v2"
)

// ChartGenerator renders report-side charts; the browser dashboard renders
// its own
type ChartGenerator struct {
	theme string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		theme: "dark",
	}
}

// GenerateConsumptionChart creates a line chart of historical consumption
// followed by the forecast, as a base64-encoded PNG
func (cg *ChartGenerator) GenerateConsumptionChart(result *ForecastResult) (string, error) {
	if result == nil || len(result.Predictions) == 0 {
		return "", fmt.Errorf("no forecast data available")
	}

	labels, historicalSeries, forecastSeries := splitSeries(result)

	p, err := charts.LineRender(
		[][]float64{historicalSeries, forecastSeries},
		charts.TitleTextOptionFunc("Monthly Consumption Forecast"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Recorded (kWh)", "Forecast (kWh)"}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render consumption chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// GenerateBillChart creates a line chart of the forecasted monthly bills,
// as a base64-encoded PNG
func (cg *ChartGenerator) GenerateBillChart(result *ForecastResult) (string, error) {
	if result == nil || len(result.Predictions) == 0 {
		return "", fmt.Errorf("no forecast data available")
	}

	labels := make([]string, len(result.Predictions))
	bills := make([]float64, len(result.Predictions))
	for i, p := range result.Predictions {
		labels[i] = p.Month
		bills[i] = p.PredictedBill
	}

	p, err := charts.LineRender(
		[][]float64{bills},
		charts.TitleTextOptionFunc("Forecasted Monthly Bills"),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Bill (RWF)"}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.getTheme()),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render bill chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

// splitSeries lays historical and forecast values on a shared axis, padding
// with NaN so the two lines do not overlap
func splitSeries(result *ForecastResult) (labels []string, historical []float64, forecast []float64) {
	n := len(result.HistoricalData)
	m := len(result.Predictions)

	labels = make([]string, 0, n+m)
	historical = make([]float64, 0, n+m)
	forecast = make([]float64, 0, n+m)

	anchor := monthStart(time.Now())
	for i, v := range result.HistoricalData {
		labels = append(labels, anchor.AddDate(0, -(n-1-i), 0).Format("Jan 2006"))
		historical = append(historical, v)
		forecast = append(forecast, math.NaN())
	}
	for _, p := range result.Predictions {
		labels = append(labels, p.Month)
		historical = append(historical, math.NaN())
		forecast = append(forecast, p.PredictedConsumption)
	}

	return labels, historical, forecast
}

// getTheme returns the chart theme name
func (cg *ChartGenerator) getTheme() string {
	return cg.theme
}
