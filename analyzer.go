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
	"fmt"
	"math"
	"time"
)

// Analyzer derives statistics, reduction advice and insights from a
// historical series and its forecast
type Analyzer struct {
	config *Config
	logger *Logger
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(config *Config, logger *Logger) *Analyzer {
	return &Analyzer{
		config: config,
		logger: logger,
	}
}

// Analyze assembles the dashboard analysis for one household
func (a *Analyzer) Analyze(historical []float64, forecast *ForecastResult, household HouseholdInfo) *AnalysisResult {
	mean := calculateMean(historical)
	stdDev := calculateStdDev(historical, mean)

	result := &AnalysisResult{
		GeneratedAt:      time.Now(),
		Household:        household,
		Forecast:         forecast,
		HistoricalMean:   round2(mean),
		HistoricalStdDev: round2(stdDev),
	}

	if len(historical) > 0 {
		latest := historical[len(historical)-1]
		result.LatestBill = round2(CalculateBill(latest))
		result.Reduction = BuildReductionAdvice(latest)
	}

	a.logger.Info("Analysis assembled",
		"history_len", len(historical),
		"mean", result.HistoricalMean,
		"trend", forecast.Trend,
	)

	return result
}

// BuildReductionAdvice computes what it would take to drop the household's
// latest monthly consumption into the next cheaper tariff bracket. Households
// already in the lowest bracket get no advice.
func BuildReductionAdvice(currentKWh float64) *ReductionAdvice {
	if currentKWh <= TariffTier1Limit {
		return nil
	}

	target := TariffTier1Limit
	if currentKWh > TariffTier2Limit {
		target = TariffTier2Limit
	}

	reduction := currentKWh - target
	saving := CalculateBill(currentKWh) - CalculateBill(target)

	return &ReductionAdvice{
		CurrentConsumption: round2(currentKWh),
		CurrentBracket:     TariffBracket(currentKWh),
		TargetConsumption:  target,
		TargetBracket:      TariffBracket(target),
		ReductionKWh:       round2(reduction),
		ReductionPercent:   round2(reduction / currentKWh * 100),
		EstimatedSaving:    round2(saving),
	}
}

// GenerateInsights creates actionable recommendations from an analysis
func (a *Analyzer) GenerateInsights(result *AnalysisResult) []Insight {
	var insights []Insight

	forecast := result.Forecast

	// Tariff bracket position
	if result.Reduction != nil {
		r := result.Reduction
		priority := "medium"
		if r.CurrentBracket == BracketHigh {
			priority = "high"
		}
		insights = append(insights, Insight{
			Category:    "tariff",
			Priority:    priority,
			Title:       fmt.Sprintf("Consumption in the %s bracket", r.CurrentBracket),
			Description: fmt.Sprintf("Your latest month used %.2f kWh, billed at RWF %.0f/kWh on the margin.", r.CurrentConsumption, MarginalRate(r.CurrentConsumption)),
			Action:      fmt.Sprintf("Reduce usage by %.2f kWh (%.1f%%) to reach the %s bracket and save about RWF %.0f per month", r.ReductionKWh, r.ReductionPercent, r.TargetBracket, r.EstimatedSaving),
		})
	}

	// Trend
	if forecast != nil {
		if forecast.Trend == TrendIncreasing && forecast.TrendPercentage >= 5 {
			insights = append(insights, Insight{
				Category:    "trend",
				Priority:    "high",
				Title:       "Consumption Trending Up",
				Description: fmt.Sprintf("Forecasted usage is %.1f%% above your recent months (avg %.2f kWh/month).", forecast.TrendPercentage, forecast.AverageMonthlyConsumption),
				Action:      "Review appliance usage and consider shifting heavy loads to identify what is driving the increase",
			})
		} else if forecast.Trend == TrendDecreasing && forecast.TrendPercentage >= 5 {
			insights = append(insights, Insight{
				Category:    "trend",
				Priority:    "low",
				Title:       "Consumption Trending Down",
				Description: fmt.Sprintf("Forecasted usage is %.1f%% below your recent months.", forecast.TrendPercentage),
				Action:      "No action needed - your recent habits are paying off",
			})
		}

		// Forecast reliability
		if len(forecast.Predictions) > 0 && forecast.Predictions[0].Confidence == ConfidenceLow {
			insights = append(insights, Insight{
				Category:    "data",
				Priority:    "medium",
				Title:       "Limited History",
				Description: fmt.Sprintf("Only %d months of history are available, so forecast confidence is low.", len(forecast.HistoricalData)),
				Action:      "Record monthly readings regularly - 12 months of history raises forecast confidence to medium",
			})
		}

		// Fallback transparency
		if forecast.ModelUsed == FallbackModelName {
			insights = append(insights, Insight{
				Category:    "data",
				Priority:    "low",
				Title:       "Locally Computed Forecast",
				Description: "The remote forecasting service was unavailable; this forecast was computed locally with a simpler model.",
				Action:      "Re-run the forecast later for a model-based result",
			})
		}
	}

	// Remote anomaly context
	if len(result.Anomalies) > 0 {
		insights = append(insights, Insight{
			Category:    "usage",
			Priority:    "medium",
			Title:       "Unusual Months Detected",
			Description: fmt.Sprintf("%d of your historical months were flagged as unusual consumption.", len(result.Anomalies)),
			Action:      "Check the flagged months for one-off events such as guests, new appliances or faulty equipment",
		})
	}

	// Cluster context
	if result.Cluster != nil && result.Cluster.Label != "" {
		insights = append(insights, Insight{
			Category:    "usage",
			Priority:    "low",
			Title:       fmt.Sprintf("Usage Pattern: %s", result.Cluster.Label),
			Description: fmt.Sprintf("Your household groups with %s households (cluster centroid %.1f kWh/month).", result.Cluster.Label, result.Cluster.Centroid),
			Action:      "Compare your habits against similar households to spot savings opportunities",
		})
	}

	return insights
}

// Statistical helper functions

// calculateMean calculates the mean of a slice of float64 values
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// calculateStdDev calculates the population standard deviation
func calculateStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	variance := sumSquaredDiff / float64(len(values))
	return math.Sqrt(variance)
}
