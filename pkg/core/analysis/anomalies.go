package analysis

import (
	"fmt"
	"math"

	"equity_insight/pkg/core/snapshot"
)

// =============================================================================
// ANOMALY DETECTION
// Period-over-period divergence rules on the two newest records. The loader
// guarantees descending order with duplicates removed, so positions 0 and 1
// really are the latest adjacent reporting periods.
// =============================================================================

// Anomaly rule identifiers.
const (
	AnomalyReceivables    = "receivables_growth_divergence"
	AnomalyInventory      = "inventory_growth_divergence"
	AnomalyGrossMargin    = "gross_margin_swing"
	AnomalyCashConversion = "cash_flow_profit_divergence"
)

// DetectAnomalies runs the four independent divergence rules and escalates
// them into one aggregate risk level. Fewer than two indicator periods means
// nothing can be compared and the neutral report comes back.
func DetectAnomalies(s *snapshot.Snapshot) AnomalyReport {
	report := AnomalyReport{Category: "anomalies", RiskLevel: RiskLow}

	if len(s.Indicators) < 2 {
		return report
	}
	current := s.Indicators[0]
	previous := s.Indicators[1]

	// 1. Receivables outrunning revenue.
	arGrowth, okAR := nonZero(current.ARGrowth)
	revGrowth, okRev := nonZero(current.RevenueGrowth)
	if okAR && okRev && arGrowth > revGrowth*1.5 {
		report.Signals = append(report.Signals, AnomalySignal{
			Type:        AnomalyReceivables,
			Description: fmt.Sprintf("receivables growth (%.1f%%) well above revenue growth (%.1f%%)", arGrowth, revGrowth),
			Severity:    RiskMedium,
		})
	}

	// 2. Inventory outrunning revenue.
	invGrowth, okInv := nonZero(current.InventoryGrowth)
	if okInv && okRev && invGrowth > revGrowth*2 {
		report.Signals = append(report.Signals, AnomalySignal{
			Type:        AnomalyInventory,
			Description: fmt.Sprintf("inventory growth (%.1f%%) far above revenue growth (%.1f%%)", invGrowth, revGrowth),
			Severity:    RiskMedium,
		})
	}

	// 3. Gross margin swing beyond 10 percentage points.
	currGM, okCurrGM := nonZero(current.GrossMargin)
	prevGM, okPrevGM := nonZero(previous.GrossMargin)
	if okCurrGM && okPrevGM {
		if swing := math.Abs(currGM - prevGM); swing > 10 {
			report.Signals = append(report.Signals, AnomalySignal{
				Type:        AnomalyGrossMargin,
				Description: fmt.Sprintf("gross margin moved %.1f percentage points between periods", swing),
				Severity:    RiskMedium,
			})
		}
	}

	// 4. Operating cash flow detached from reported profit.
	if len(s.FinancialData.CashFlow) > 0 && len(s.FinancialData.IncomeStatement) > 0 {
		ocf, okOCF := nonZero(s.FinancialData.CashFlow[0].OperatingCashFlow)
		netProfit, okNP := nonZero(s.FinancialData.IncomeStatement[0].NetProfit)
		if okOCF && okNP && netProfit > 0 {
			ratio := ocf / netProfit
			if ratio < 0.5 {
				report.Signals = append(report.Signals, AnomalySignal{
					Type:        AnomalyCashConversion,
					Description: fmt.Sprintf("operating cash flow covers only %.0f%% of net profit, earnings quality in doubt", ratio*100),
					Severity:    RiskHigh,
				})
			}
		}
	}

	report.RiskLevel = escalate(report.Signals)
	return report
}

// escalate applies the exact ordering: any high signal wins outright, then
// two or more mediums, then low.
func escalate(signals []AnomalySignal) RiskLevel {
	var mediums int
	for _, sig := range signals {
		switch sig.Severity {
		case RiskHigh:
			return RiskHigh
		case RiskMedium:
			mediums++
		}
	}
	if mediums >= 2 {
		return RiskMedium
	}
	return RiskLow
}

// nonZero treats zero like missing: a flat 0.0 growth rate from the provider
// is indistinguishable from an unfilled field, so no rule fires on it.
func nonZero(n snapshot.Number) (float64, bool) {
	v, ok := n.Float()
	if !ok || v == 0 {
		return 0, false
	}
	return v, true
}
