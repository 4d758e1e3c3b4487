package analysis

import (
	"fmt"
	"strings"

	"equity_insight/pkg/core/snapshot"
)

// =============================================================================
// PERFORMANCE-EVENT ANALYSIS
// Forecasts, express reports, audit opinions and revenue concentration are
// mapped onto a closed set of signal categories. The overall verdict counts
// category memberships, never matches free text.
// =============================================================================

// Signal categories.
const (
	SignalForecastStrong    = "forecast_strong"
	SignalForecastWeak      = "forecast_weak"
	SignalExpressSurge      = "express_surge"
	SignalExpressDecline    = "express_decline"
	SignalAuditQualified    = "audit_qualified"
	SignalAuditNoted        = "audit_noted"
	SignalConcentrationHigh = "concentration_high"
)

var negativeSignals = map[string]bool{
	SignalForecastWeak:      true,
	SignalExpressDecline:    true,
	SignalAuditQualified:    true,
	SignalConcentrationHigh: true,
}

var positiveSignals = map[string]bool{
	SignalForecastStrong: true,
	SignalExpressSurge:   true,
}

// auditQualifyingKeywords is the closed vocabulary for non-clean opinions.
var auditQualifyingKeywords = []string{"qualified", "adverse", "disclaimer", "non-standard"}

// forecastSignalThreshold is the absolute profit-change percentage beyond
// which a forecast or express report becomes a signal.
const forecastSignalThreshold = 20

// concentrationThreshold is the top-line share (percent of positive sales)
// beyond which revenue concentration is flagged.
const concentrationThreshold = 70

// PerformanceEvents interprets the disclosure sections. Each input is
// independently optional; only the most recent record of each kind counts.
func PerformanceEvents(s *snapshot.Snapshot) PerformanceReport {
	report := PerformanceReport{Category: "performance", Assessment: PerfNeutral}

	if sig := forecastSignal(s.PerformanceData.Forecast); sig != nil {
		report.Signals = append(report.Signals, *sig)
	}
	if sig := expressSignal(s.PerformanceData.Express); sig != nil {
		report.Signals = append(report.Signals, *sig)
	}
	if sig := auditSignal(s.PerformanceData.Audit); sig != nil {
		report.Signals = append(report.Signals, *sig)
	}
	if sig := concentrationSignal(s.PerformanceData.MainBusiness.ByProduct); sig != nil {
		report.Signals = append(report.Signals, *sig)
	}

	var negatives, positives int
	for _, sig := range report.Signals {
		if negativeSignals[sig.Category] {
			negatives++
		}
		if positiveSignals[sig.Category] {
			positives++
		}
	}
	switch {
	case negatives >= 2:
		report.Assessment = PerfWeak
	case positives >= 2 && negatives == 0:
		report.Assessment = PerfPositive
	}
	return report
}

// forecastSignal averages the min/max projected profit change of the latest
// forecast. A one-sided band uses the side that exists.
func forecastSignal(forecasts []snapshot.ForecastRecord) *PerformanceSignal {
	if len(forecasts) == 0 {
		return nil
	}
	latest := forecasts[0]

	min, okMin := latest.PChangeMin.Float()
	max, okMax := latest.PChangeMax.Float()
	var avg float64
	switch {
	case okMin && okMax:
		avg = (min + max) / 2
	case okMin:
		avg = min
	case okMax:
		avg = max
	default:
		return nil
	}

	if avg < -forecastSignalThreshold {
		return &PerformanceSignal{
			Category:    SignalForecastWeak,
			Description: fmt.Sprintf("latest forecast projects net profit down about %.1f%%", avg),
		}
	}
	if avg > forecastSignalThreshold {
		return &PerformanceSignal{
			Category:    SignalForecastStrong,
			Description: fmt.Sprintf("latest forecast projects net profit up about %.1f%%", avg),
		}
	}
	return nil
}

func expressSignal(express []snapshot.ExpressRecord) *PerformanceSignal {
	if len(express) == 0 {
		return nil
	}
	yoy, ok := express[0].YoYNetProfit.Float()
	if !ok {
		return nil
	}
	if yoy < -forecastSignalThreshold {
		return &PerformanceSignal{
			Category:    SignalExpressDecline,
			Description: fmt.Sprintf("express report shows net profit down %.1f%% year over year", yoy),
		}
	}
	if yoy > forecastSignalThreshold {
		return &PerformanceSignal{
			Category:    SignalExpressSurge,
			Description: fmt.Sprintf("express report shows net profit up %.1f%% year over year", yoy),
		}
	}
	return nil
}

// auditSignal classifies the most recent opinion text against the closed
// qualifying-keyword set. "unqualified" must be checked first: it contains
// "qualified" as a substring but is the clean opinion.
func auditSignal(audits []snapshot.AuditRecord) *PerformanceSignal {
	if len(audits) == 0 {
		return nil
	}
	latest := audits[0]
	opinion := latest.AuditResult
	if opinion == "" {
		opinion = latest.AuditAgency
	}
	if opinion == "" {
		return nil
	}

	lowered := strings.ToLower(opinion)
	if !strings.Contains(lowered, "unqualified") {
		for _, kw := range auditQualifyingKeywords {
			if strings.Contains(lowered, kw) {
				return &PerformanceSignal{
					Category:    SignalAuditQualified,
					Description: fmt.Sprintf("audit opinion needs attention: %s", opinion),
				}
			}
		}
	}
	return &PerformanceSignal{
		Category:    SignalAuditNoted,
		Description: fmt.Sprintf("latest audit opinion: %s", opinion),
	}
}

// concentrationSignal flags when the biggest product line carries more than
// the threshold share of positive sales.
func concentrationSignal(lines []snapshot.BusinessLine) *PerformanceSignal {
	if len(lines) == 0 {
		return nil
	}

	var total, top float64
	for _, line := range lines {
		v, ok := line.Sales.Float()
		if !ok || v < 0 {
			continue
		}
		total += v
		if v > top {
			top = v
		}
	}
	if total <= 0 {
		return nil
	}

	ratio := top / total * 100
	if ratio > concentrationThreshold {
		return &PerformanceSignal{
			Category:    SignalConcentrationHigh,
			Description: fmt.Sprintf("top product line carries about %.1f%% of revenue", ratio),
		}
	}
	return nil
}
