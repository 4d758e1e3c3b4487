package analysis

import "equity_insight/pkg/core/snapshot"

// =============================================================================
// COMPOSITE SCORE
// Baseline 50, fixed independent deltas, clamped to [0,100]. Deltas are
// ordered (floor, delta) tables scanned top-down so tie-breaks are explicit.
// A category with no usable inputs contributes exactly zero.
// =============================================================================

const scoreBaseline = 50

type scoreTier struct {
	floor float64
	delta int
}

// Latest ROE: >20 +15, >15 +10, >10 +5; <5 -5, otherwise 0.
var roeScoreTiers = []scoreTier{
	{20, 15},
	{15, 10},
	{10, 5},
}

// Average net-profit growth: >20 +15, >10 +10, >0 +5, otherwise -5.
var growthScoreTiers = []scoreTier{
	{20, 15},
	{10, 10},
	{0, 5},
}

var anomalyPenalty = map[RiskLevel]int{
	RiskHigh:   -15,
	RiskMedium: -8,
	RiskLow:    0,
}

// Score aggregates the diagnostics into one integer in [0,100]. Only the
// categories that produced data move the needle; the rest leave the baseline
// untouched.
func Score(prof, solv, growth Diagnostic, anomalies AnomalyReport, sentiment *snapshot.NewsSentiment, perf PerformanceReport) int {
	score := scoreBaseline

	if roe, ok := prof.Metrics["current_roe"]; ok {
		score += scanTiers(roeScoreTiers, roe)
		if roe < 5 {
			score -= 5
		}
	}

	if len(solv.Metrics) > 0 {
		if flags := len(solv.Risks); flags == 0 {
			score += 10
		} else {
			score -= flags * 3
		}
	}

	if avg, ok := growth.Metrics["avg_net_profit_growth"]; ok {
		if delta := scanTiers(growthScoreTiers, avg); delta != 0 {
			score += delta
		} else {
			score -= 5
		}
	}

	score += anomalyPenalty[anomalies.RiskLevel]

	if sentiment != nil {
		switch sentiment.RiskLevel {
		case string(RiskHigh):
			score -= 8
		case string(RiskMedium):
			score -= 4
		case string(RiskLow):
			if sentiment.OverallSentiment > 0.2 {
				score += 2
			}
		}
	}

	switch perf.Assessment {
	case PerfWeak:
		score -= 8
	case PerfPositive:
		score += 4
	}

	return clampScore(score)
}

// scanTiers returns the first matching tier's delta, 0 when none matches.
func scanTiers(tiers []scoreTier, value float64) int {
	for _, t := range tiers {
		if value > t.floor {
			return t.delta
		}
	}
	return 0
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Headline summarizes a score and anomaly risk into one label.
func Headline(score int, risk RiskLevel) string {
	switch {
	case score >= 80 && (risk == RiskLow || risk == RiskMedium):
		return "financially stable, valuation and risk well matched"
	case score >= 65:
		return "fundamentals moderately strong, keep tracking"
	default:
		return "weak fundamentals or risk signals, caution advised"
	}
}
