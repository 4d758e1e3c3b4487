package valuation

import (
	"math"

	"equity_insight/pkg/core/snapshot"
)

// =============================================================================
// DCF
// Trailing free cash flow, projected at a clamped historical growth rate,
// discounted back, plus a Gordon terminal value.
// =============================================================================

// fcfTrailingPeriods is how many of the newest cash-flow records feed the
// annualized trailing FCF.
const fcfTrailingPeriods = 4

// defaultGrowthPct is used when no usable historical growth exists.
const defaultGrowthPct = 10

// growth clamp bounds, percent.
const (
	growthFloorPct = 0
	growthCapPct   = 30
)

// DCF projects trailing free cash flow over the forecast horizon and
// discounts forecast plus terminal value. The result is an aggregate firm
// value; per-share only when total shares are known.
func DCF(s *snapshot.Snapshot, p Params) Estimate {
	est := newEstimate(MethodDCF)
	est.Parameters["discount_rate"] = p.DiscountRate
	est.Parameters["forecast_years"] = float64(p.ForecastYears)
	est.Parameters["terminal_growth"] = p.TerminalGrowth

	if p.DiscountRate <= p.TerminalGrowth {
		return est.fail("discount rate (%.2f%%) must exceed terminal growth (%.2f%%)", p.DiscountRate, p.TerminalGrowth)
	}

	cashFlows := s.FinancialData.CashFlow
	if len(cashFlows) == 0 {
		return est.fail("no cash flow data available")
	}
	if len(cashFlows) > fcfTrailingPeriods {
		cashFlows = cashFlows[:fcfTrailingPeriods]
	}

	// FCF = operating cash flow - |capex| per record; records without an
	// operating figure are skipped, a missing capex counts as zero.
	var annualFCF float64
	var usable int
	for _, cf := range cashFlows {
		ocf, ok := cf.OperatingCashFlow.Float()
		if !ok {
			continue
		}
		annualFCF += ocf - math.Abs(cf.Capex.Or(0))
		usable++
	}
	if usable == 0 {
		return est.fail("unable to derive free cash flow from the cash flow statement")
	}
	est.Calculation["annualized_fcf"] = annualFCF

	est.Calculation["growth_rate"] = growthRate(s)

	r := p.DiscountRate / 100
	g := est.Calculation["growth_rate"] / 100
	tg := p.TerminalGrowth / 100

	var pvForecast float64
	for year := 1; year <= p.ForecastYears; year++ {
		fcf := annualFCF * math.Pow(1+g, float64(year))
		pv := fcf / math.Pow(1+r, float64(year))
		pvForecast += pv
		est.Forecast = append(est.Forecast, ForecastYear{Year: year, FCF: fcf, PV: pv})
	}
	est.Calculation["pv_forecast"] = pvForecast

	// Perpetuity-growth terminal value, discounted back from the horizon.
	terminalFCF := annualFCF * math.Pow(1+g, float64(p.ForecastYears)) * (1 + tg)
	terminalValue := terminalFCF / (r - tg)
	pvTerminal := terminalValue / math.Pow(1+r, float64(p.ForecastYears))
	est.Calculation["terminal_value"] = terminalValue
	est.Calculation["pv_terminal"] = pvTerminal

	total := pvForecast + pvTerminal
	est.Aggregate = floatPtr(total)

	if shares, ok := s.BasicInfo.TotalShares.Count(); ok && shares > 0 {
		est.PerShare = floatPtr(total / shares)
	}
	return est
}

// growthRate picks the projection growth from the latest net-profit growth,
// ignoring implausible outliers, clamped to [0,30]%. Without a usable value
// it falls back to 10%. An exact zero counts as unfilled, the same
// convention the anomaly rules apply to provider growth fields.
func growthRate(s *snapshot.Snapshot) float64 {
	if len(s.Indicators) > 0 {
		if hist, ok := s.Indicators[0].NetProfitGrowth.Float(); ok && hist != 0 && hist > -50 && hist < 100 {
			return math.Min(math.Max(hist, growthFloorPct), growthCapPct)
		}
	}
	return defaultGrowthPct
}
