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
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Forecaster produces a best-effort multi-month consumption forecast from a
// short, possibly noisy historical series, without any external service. It
// is the recovery path when the remote forecasting call fails, so it never
// returns an error itself: degenerate inputs fall back to a flat baseline.
//
// The series is assumed to be consecutive monthly samples ending in the
// current month; irregular calendar gaps are not detected.
type Forecaster struct {
	logger *Logger
	rng    *rand.Rand
	now    func() time.Time
}

// NewForecaster creates a fallback forecaster. The noise source is seeded
// from the wall clock: forecasts are meant to look plausible, not to be
// reproducible.
func NewForecaster(logger *Logger) *Forecaster {
	return &Forecaster{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Forecast predicts consumption and billing for the requested number of
// future months. The result always contains exactly months points, every
// predicted consumption is strictly positive, and the aggregates are the
// sum/average of the emitted points.
func (f *Forecaster) Forecast(historical []float64, months int) *ForecastResult {
	if months < 1 {
		months = DefaultForecastMonths
	}

	n := len(historical)
	mean := calculateMean(historical)
	stdDev := calculateStdDev(historical, mean)
	confidence := confidenceLabel(n)
	anchor := monthStart(f.now())

	f.logger.Debug("Running fallback forecast",
		"history_len", n,
		"months", months,
		"mean", mean,
		"std_dev", stdDev,
	)

	// Degenerate series: no history, or a history that averages to zero.
	// Emit a flat baseline so callers still get a sane non-zero forecast.
	if n == 0 || mean == 0 {
		points := make([]ForecastPoint, months)
		for i := range points {
			points[i] = forecastPoint(anchor, i+1, FallbackBaselineKWh, confidence)
		}
		return f.assemble(historical, points, mean)
	}

	slope, intercept := linearFit(historical)

	monthlyAverages := calendarMonthAverages(historical, anchor)

	// Noise magnitude tracks the historical spread; a perfectly flat series
	// still gets a 10%-of-mean magnitude so predictions are not a straight
	// line.
	noiseScale := stdDev
	if noiseScale == 0 {
		noiseScale = mean * 0.1
	}

	points := make([]ForecastPoint, months)
	for i := 0; i < months; i++ {
		t := n + i

		predicted := intercept + slope*float64(t)
		predicted *= f.seasonalFactor(monthlyAverages, mean, n, anchor, i+1, t)
		predicted += (f.rng.Float64()*2 - 1) * 0.05 * noiseScale

		// Regression can run negative on steeply declining series; fall
		// back to a small extrapolation from the mean.
		if math.IsNaN(predicted) || math.IsInf(predicted, 0) || predicted <= 0 {
			predicted = mean * (1 + 0.02*float64(i+1))
		}

		floor := mean * 0.05
		if floor < 0.1 {
			floor = 0.1
		}
		if predicted < floor {
			predicted = floor
		}

		points[i] = forecastPoint(anchor, i+1, round2(predicted), confidence)
	}

	return f.assemble(historical, points, mean)
}

// seasonalFactor returns the multiplicative adjustment for a future month.
// With at least a full year of history the factor is the ratio of that
// calendar month's historical average to the overall mean; shorter series
// get a weak sinusoidal ripple (period 12, amplitude 5%) as a seasonal
// proxy.
func (f *Forecaster) seasonalFactor(monthlyAverages map[time.Month]float64, mean float64, n int, anchor time.Time, monthsAhead, t int) float64 {
	if n >= 12 {
		target := anchor.AddDate(0, monthsAhead, 0).Month()
		if avg, ok := monthlyAverages[target]; ok && mean > 0 {
			return avg / mean
		}
		return 1
	}
	return 1 + 0.05*math.Sin(2*math.Pi*float64(t)/12)
}

// assemble derives aggregates and trend from the emitted points and wraps
// everything into an immutable result
func (f *Forecaster) assemble(historical []float64, points []ForecastPoint, mean float64) *ForecastResult {
	var totalKWh, totalBill float64
	for _, p := range points {
		totalKWh += p.PredictedConsumption
		totalBill += p.PredictedBill
	}

	count := float64(len(points))
	forecastMean := totalKWh / count

	trend, trendPct := forecastTrend(historical, forecastMean)

	result := &ForecastResult{
		ForecastID:                 uuid.NewString(),
		Predictions:                points,
		TotalForecastedConsumption: round2(totalKWh),
		TotalForecastedBill:        round2(totalBill),
		AverageMonthlyConsumption:  round2(totalKWh / count),
		AverageMonthlyBill:         round2(totalBill / count),
		Trend:                      trend,
		TrendPercentage:            trendPct,
		HistoricalData:             historical,
		ModelUsed:                  FallbackModelName,
		GeneratedAt:                f.now(),
	}

	f.logger.Debug("Fallback forecast assembled",
		"forecast_id", result.ForecastID,
		"points", len(points),
		"trend", trend,
		"historical_mean", mean,
	)

	return result
}

// forecastTrend compares the forecast mean against the mean of the last three
// historical points. A zero historical baseline reports a zero percentage.
func forecastTrend(historical []float64, forecastMean float64) (string, float64) {
	recent := historical
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	baseline := calculateMean(recent)

	trend := TrendDecreasing
	if forecastMean > baseline {
		trend = TrendIncreasing
	}

	if baseline == 0 {
		return trend, 0
	}
	return trend, round2(math.Abs(forecastMean-baseline) / baseline * 100)
}

// linearFit performs ordinary least-squares simple linear regression of the
// series against its index 0..n-1, returning slope and intercept
func linearFit(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return 0, values[0]
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// calendarMonthAverages buckets the historical samples by the calendar month
// they fall in, assuming the last sample is the current month
func calendarMonthAverages(historical []float64, anchor time.Time) map[time.Month]float64 {
	n := len(historical)
	sums := make(map[time.Month]float64)
	counts := make(map[time.Month]int)

	for i, v := range historical {
		m := anchor.AddDate(0, -(n-1-i), 0).Month()
		sums[m] += v
		counts[m]++
	}

	averages := make(map[time.Month]float64, len(sums))
	for m, sum := range sums {
		averages[m] = sum / float64(counts[m])
	}
	return averages
}

// confidenceLabel maps historical series length to a coarse reliability label
func confidenceLabel(n int) string {
	switch {
	case n >= 12:
		return ConfidenceMedium
	case n >= 6:
		return ConfidenceLowMedium
	default:
		return ConfidenceLow
	}
}

// forecastPoint builds one predicted month with billing derived through the
// tariff function
func forecastPoint(anchor time.Time, monthsAhead int, kwh float64, confidence string) ForecastPoint {
	return ForecastPoint{
		Month:                anchor.AddDate(0, monthsAhead, 0).Format("January 2006"),
		PredictedConsumption: kwh,
		PredictedBill:        round2(CalculateBill(kwh)),
		TariffBracket:        TariffBracket(kwh),
		Confidence:           confidence,
	}
}

// monthStart anchors month arithmetic to the first of the month so AddDate
// never rolls over short months
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
