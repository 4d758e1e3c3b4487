package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"equity_insight/pkg/core/snapshot"
)

// indicatorWindow bounds every trend computation to the most recent periods.
const indicatorWindow = 8

// sustainedWindow is how many of the newest growth observations must all be
// positive before growth counts as sustained.
const sustainedWindow = 4

// window returns up to indicatorWindow newest indicator records.
func window(records []snapshot.IndicatorRecord) []snapshot.IndicatorRecord {
	if len(records) > indicatorWindow {
		return records[:indicatorWindow]
	}
	return records
}

// putMetric inserts a metric only when the input was present.
func putMetric(d *Diagnostic, key string, n snapshot.Number) {
	if v, ok := n.Float(); ok {
		d.Metrics[key] = v
	}
}

// =============================================================================
// PROFITABILITY
// =============================================================================

// Profitability reads ROE/ROA/margins over the window, the ROE trend and a
// tiered verdict on the latest ROE. With no usable periods it returns the
// neutral diagnostic.
func Profitability(s *snapshot.Snapshot) Diagnostic {
	d := newDiagnostic("profitability")

	records := window(s.Indicators)
	if len(records) == 0 {
		return d
	}

	latest := records[0]
	putMetric(&d, "current_roe", latest.ROE)
	putMetric(&d, "current_roa", latest.ROA)
	putMetric(&d, "current_gross_margin", latest.GrossMargin)
	putMetric(&d, "current_net_margin", latest.NetMargin)

	var roeSeries []float64
	for _, r := range records {
		if v, ok := r.ROE.Float(); ok {
			roeSeries = append(roeSeries, v)
		}
	}
	if len(roeSeries) >= 2 {
		// Newest vs oldest available value in the window.
		if roeSeries[0] > roeSeries[len(roeSeries)-1] {
			d.Trends = append(d.Trends, "ROE trending up")
		} else {
			d.Trends = append(d.Trends, "ROE trending down")
		}
	}

	if roe, ok := latest.ROE.Float(); ok {
		d.Assessment = assessROE(roe)
	}
	return d
}

// roeTiers is scanned top-down; the first matching floor wins.
var roeTiers = []struct {
	floor float64
	label string
}{
	{20, AssessExcellent},
	{15, AssessGood},
	{10, AssessAverage},
}

func assessROE(roe float64) string {
	for _, t := range roeTiers {
		if roe > t.floor {
			return t.label
		}
	}
	return AssessWeak
}

// =============================================================================
// SOLVENCY
// =============================================================================

// Solvency checks the latest leverage and liquidity ratios against fixed
// thresholds and grades by the number of triggered flags.
func Solvency(s *snapshot.Snapshot) Diagnostic {
	d := newDiagnostic("solvency")

	if len(s.Indicators) == 0 {
		return d
	}
	latest := s.Indicators[0]

	putMetric(&d, "debt_to_assets", latest.DebtToAssets)
	putMetric(&d, "current_ratio", latest.CurrentRatio)
	putMetric(&d, "quick_ratio", latest.QuickRatio)

	if v, ok := latest.DebtToAssets.Float(); ok && v > 70 {
		d.Risks = append(d.Risks, fmt.Sprintf("debt-to-assets ratio elevated (%.1f%%)", v))
	}
	if v, ok := latest.CurrentRatio.Float(); ok && v < 1.0 {
		d.Risks = append(d.Risks, fmt.Sprintf("current ratio low (%.2f), weak short-term coverage", v))
	}
	if v, ok := latest.QuickRatio.Float(); ok && v < 0.8 {
		d.Risks = append(d.Risks, fmt.Sprintf("quick ratio low (%.2f), short-term liquidity risk", v))
	}

	if len(d.Metrics) == 0 {
		return d
	}
	switch len(d.Risks) {
	case 0:
		d.Assessment = AssessGood
	case 1:
		d.Assessment = AssessAverage
	default:
		d.Assessment = AssessWeak
	}
	return d
}

// =============================================================================
// OPERATION
// =============================================================================

// Operation checks turnover efficiency. The verdict is good only when no
// threshold triggers.
func Operation(s *snapshot.Snapshot) Diagnostic {
	d := newDiagnostic("operation")

	if len(s.Indicators) == 0 {
		return d
	}
	latest := s.Indicators[0]

	putMetric(&d, "ar_turnover_days", latest.ARTurnoverDays)
	putMetric(&d, "inventory_turnover_days", latest.InventoryTurnoverDays)
	putMetric(&d, "asset_turnover", latest.AssetTurnover)

	if v, ok := latest.ARTurnoverDays.Float(); ok && v > 90 {
		d.Observations = append(d.Observations, fmt.Sprintf("receivable turnover slow (%.0f days)", v))
	}
	if v, ok := latest.InventoryTurnoverDays.Float(); ok && v > 180 {
		d.Observations = append(d.Observations, fmt.Sprintf("inventory turnover slow (%.0f days)", v))
	}
	if v, ok := latest.AssetTurnover.Float(); ok && v < 0.5 {
		d.Observations = append(d.Observations, fmt.Sprintf("asset turnover low (%.2f)", v))
	}

	if len(d.Metrics) == 0 {
		return d
	}
	if len(d.Observations) == 0 {
		d.Assessment = AssessGood
	} else {
		d.Assessment = AssessAverage
	}
	return d
}

// =============================================================================
// GROWTH
// =============================================================================

// Growth averages revenue and net-profit growth over the window, flags
// sustained or deteriorating momentum and grades the average profit growth.
func Growth(s *snapshot.Snapshot) Diagnostic {
	d := newDiagnostic("growth")

	records := window(s.Indicators)
	if len(records) == 0 {
		return d
	}

	var revenueGrowth, profitGrowth []float64
	for _, r := range records {
		if v, ok := r.RevenueGrowth.Float(); ok {
			revenueGrowth = append(revenueGrowth, v)
		}
		if v, ok := r.NetProfitGrowth.Float(); ok {
			profitGrowth = append(profitGrowth, v)
		}
	}

	if len(revenueGrowth) > 0 {
		d.Metrics["latest_revenue_growth"] = revenueGrowth[0]
		d.Metrics["avg_revenue_growth"] = stat.Mean(revenueGrowth, nil)
	}
	if len(profitGrowth) > 0 {
		d.Metrics["latest_net_profit_growth"] = profitGrowth[0]
		d.Metrics["avg_net_profit_growth"] = stat.Mean(profitGrowth, nil)
	}

	if t := growthTrend(revenueGrowth, "revenue"); t != "" {
		d.Trends = append(d.Trends, t)
	}
	if t := growthTrend(profitGrowth, "net profit"); t != "" {
		d.Trends = append(d.Trends, t)
	}

	if avg, ok := d.Metrics["avg_net_profit_growth"]; ok {
		d.Assessment = assessGrowth(avg)
	}
	return d
}

func growthTrend(values []float64, name string) string {
	if len(values) == 0 {
		return ""
	}
	recent := values
	if len(recent) > sustainedWindow {
		recent = recent[:sustainedWindow]
	}
	sustained := true
	for _, g := range recent {
		if g <= 0 {
			sustained = false
			break
		}
	}
	if sustained {
		return name + " growth sustained across recent periods"
	}
	if values[0] < 0 {
		return name + " growth turned negative in the latest period"
	}
	return ""
}

var growthTiers = []struct {
	floor float64
	label string
}{
	{20, GrowthHigh},
	{10, GrowthStable},
	{0, GrowthSlow},
}

func assessGrowth(avg float64) string {
	for _, t := range growthTiers {
		if avg > t.floor {
			return t.label
		}
	}
	return GrowthNegative
}
