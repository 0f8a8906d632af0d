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
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

// Reporter generates markdown reports from analysis results
type Reporter struct {
	logger *Logger
	charts *ChartGenerator
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger) *Reporter {
	return &Reporter{
		logger: logger,
		charts: NewChartGenerator(),
	}
}

// GenerateReport creates a markdown report from analysis results
func (r *Reporter) GenerateReport(result *AnalysisResult, outputPath string) error {
	r.logger.Info("Generating report")

	// Render charts first so the report can embed them
	if result.Forecast != nil {
		if chart, err := r.charts.GenerateConsumptionChart(result.Forecast); err != nil {
			r.logger.Warn("Failed to render consumption chart", "error", err)
		} else {
			result.ConsumptionChart = chart
		}
		if chart, err := r.charts.GenerateBillChart(result.Forecast); err != nil {
			r.logger.Warn("Failed to render bill chart", "error", err)
		} else {
			result.BillChart = chart
		}
	}

	var writer io.Writer
	if outputPath == "" {
		writer = os.Stdout
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	r.writeHeader(writer, result)
	r.writeSummary(writer, result)
	r.writeForecastTable(writer, result)
	r.writeTrend(writer, result)
	r.writeReduction(writer, result)
	r.writeUsageContext(writer, result)
	r.writeInsights(writer, result)
	r.writeCharts(writer, result)
	r.writeFooter(writer)

	if outputPath != "" {
		r.logger.Info("Report saved", "path", outputPath)
	}

	return nil
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "# Household Energy Forecast Report\n\n")
	fmt.Fprintf(w, "**Generated:** %s\n\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))
	if result.Household.HouseholdID != "" {
		fmt.Fprintf(w, "**Household:** %s\n\n", result.Household.HouseholdID)
	}
	fmt.Fprintf(w, "**Version:** %s\n\n", GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeSummary writes the summary section
func (r *Reporter) writeSummary(w io.Writer, result *AnalysisResult) {
	fmt.Fprintf(w, "## Summary\n\n")

	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| Historical average | %.2f kWh/month |\n", result.HistoricalMean)
	fmt.Fprintf(w, "| Historical variability | ±%.2f kWh |\n", result.HistoricalStdDev)
	if result.LatestBill > 0 {
		fmt.Fprintf(w, "| Latest monthly bill | %s |\n", FormatCurrency(result.LatestBill))
	}

	if f := result.Forecast; f != nil {
		fmt.Fprintf(w, "| Forecast horizon | %d months |\n", len(f.Predictions))
		fmt.Fprintf(w, "| Forecasted consumption | %.2f kWh total, %.2f kWh/month |\n",
			f.TotalForecastedConsumption, f.AverageMonthlyConsumption)
		fmt.Fprintf(w, "| Forecasted billing | %s total, %s/month |\n",
			FormatCurrency(f.TotalForecastedBill), FormatCurrency(f.AverageMonthlyBill))
		fmt.Fprintf(w, "| Model | %s |\n", f.ModelUsed)
		fmt.Fprintf(w, "| Forecast ID | `%s` |\n", f.ForecastID)
	}
	fmt.Fprintf(w, "\n")
}

// writeForecastTable writes the per-month forecast table
func (r *Reporter) writeForecastTable(w io.Writer, result *AnalysisResult) {
	f := result.Forecast
	if f == nil || len(f.Predictions) == 0 {
		return
	}

	fmt.Fprintf(w, "## Monthly Forecast\n\n")
	fmt.Fprintf(w, "| Month | Consumption (kWh) | Bill | Tariff bracket | Confidence |\n")
	fmt.Fprintf(w, "|-------|------------------:|-----:|----------------|------------|\n")
	for _, p := range f.Predictions {
		fmt.Fprintf(w, "| %s | %.2f | %s | %s | %s |\n",
			p.Month,
			p.PredictedConsumption,
			FormatCurrency(p.PredictedBill),
			p.TariffBracket,
			p.Confidence,
		)
	}
	fmt.Fprintf(w, "\n")
}

// writeTrend writes the trend section
func (r *Reporter) writeTrend(w io.Writer, result *AnalysisResult) {
	f := result.Forecast
	if f == nil {
		return
	}

	fmt.Fprintf(w, "## Trend\n\n")
	direction := "down"
	if f.Trend == TrendIncreasing {
		direction = "up"
	}
	fmt.Fprintf(w, "Forecasted usage is trending **%s** by %s compared with your recent months.\n\n",
		direction, FormatPercentage(f.TrendPercentage))
}

// writeReduction writes the consumption-reduction advice
func (r *Reporter) writeReduction(w io.Writer, result *AnalysisResult) {
	adv := result.Reduction
	if adv == nil {
		return
	}

	fmt.Fprintf(w, "## Reduction Opportunity\n\n")
	fmt.Fprintf(w, "Your latest month used **%.2f kWh** (%s bracket). Reducing by **%.2f kWh** (%s) "+
		"would move you into the %s bracket and save about **%s** per month.\n\n",
		adv.CurrentConsumption,
		adv.CurrentBracket,
		adv.ReductionKWh,
		FormatPercentage(adv.ReductionPercent),
		adv.TargetBracket,
		FormatCurrency(adv.EstimatedSaving),
	)
}

// writeUsageContext writes remote cluster and anomaly context when available
func (r *Reporter) writeUsageContext(w io.Writer, result *AnalysisResult) {
	if result.Cluster == nil && len(result.Anomalies) == 0 {
		return
	}

	fmt.Fprintf(w, "## Usage Context\n\n")

	if c := result.Cluster; c != nil {
		fmt.Fprintf(w, "Your household matches the **%s** usage pattern (centroid %.1f kWh/month).\n\n",
			c.Label, c.Centroid)
	}

	if len(result.Anomalies) > 0 {
		fmt.Fprintf(w, "Months flagged as unusual:\n\n")
		for _, a := range result.Anomalies {
			month := a.Month
			if month == "" {
				month = fmt.Sprintf("month %d", a.Index+1)
			}
			fmt.Fprintf(w, "- %s: %.2f kWh (score %.2f)\n", month, a.Value, a.Score)
		}
		fmt.Fprintf(w, "\n")
	}
}

// writeInsights writes the recommendations section
func (r *Reporter) writeInsights(w io.Writer, result *AnalysisResult) {
	if len(result.Insights) == 0 {
		return
	}

	fmt.Fprintf(w, "## Recommendations\n\n")

	for _, insight := range result.Insights {
		marker := strings.ToUpper(insight.Priority)
		fmt.Fprintf(w, "### [%s] %s\n\n", marker, insight.Title)
		fmt.Fprintf(w, "%s\n\n", insight.Description)
		fmt.Fprintf(w, "**Action:** %s\n\n", insight.Action)
	}
}

// writeCharts embeds the rendered charts
func (r *Reporter) writeCharts(w io.Writer, result *AnalysisResult) {
	if result.ConsumptionChart == "" && result.BillChart == "" {
		return
	}

	fmt.Fprintf(w, "## Charts\n\n")
	if result.ConsumptionChart != "" {
		fmt.Fprintf(w, "![Consumption forecast](data:image/png;base64,%s)\n\n", result.ConsumptionChart)
	}
	if result.BillChart != "" {
		fmt.Fprintf(w, "![Bill forecast](data:image/png;base64,%s)\n\n", result.BillChart)
	}
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "*Bills are estimated with the fixed three-tier residential tariff "+
		"(RWF %.0f / %.0f / %.0f per kWh). Forecasts are estimates, not guarantees.*\n",
		TariffTier1Rate, TariffTier2Rate, TariffTier3Rate)
}

// FormatCurrency formats a value as RWF currency
func FormatCurrency(value float64) string {
	return fmt.Sprintf("RWF %s", humanize.CommafWithDigits(value, 2))
}

// FormatPercentage formats a value as a percentage
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
