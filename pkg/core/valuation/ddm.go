package valuation

import (
	"math"

	"equity_insight/pkg/core/snapshot"
)

// =============================================================================
// DDM (Gordon growth)
// P = D1 / (r - g), with g from the dividend history's compound annual
// growth rate unless the caller supplied one.
// =============================================================================

// ddmHistoryYears bounds how far back the dividend history is read.
const ddmHistoryYears = 5

// DDM values the company from its dividend stream. It needs at least two
// positive per-share dividends and fails explicitly whenever r <= g.
func DDM(s *snapshot.Snapshot, p Params) Estimate {
	est := newEstimate(MethodDDM)
	est.Parameters["required_return"] = p.RequiredReturn

	history := s.Dividend.History
	if len(history) == 0 {
		return est.fail("no dividend history; company unsuitable for DDM")
	}
	if len(history) > ddmHistoryYears {
		history = history[:ddmHistoryYears]
	}

	var dividends []float64
	for _, d := range history {
		if v, ok := d.PerShare.Float(); ok && v > 0 {
			dividends = append(dividends, v)
		}
	}
	if len(dividends) < 2 {
		return est.fail("fewer than two positive dividend observations")
	}

	current := dividends[0]
	est.Calculation["current_dividend"] = current

	var growthPct float64
	if p.DividendGrowth != nil {
		// An explicit growth assumption is used as-is; the r > g check
		// below rejects it when it breaks the Gordon denominator.
		growthPct = *p.DividendGrowth
	} else {
		// Compound annual growth over the observed span, newest first.
		// Clamped: never negative, and at least one point below the
		// required return so the denominator stays meaningful.
		years := float64(len(dividends) - 1)
		growthPct = (math.Pow(dividends[0]/dividends[len(dividends)-1], 1/years) - 1) * 100
		growthPct = math.Min(math.Max(growthPct, 0), p.RequiredReturn-1)
	}
	est.Parameters["dividend_growth"] = growthPct
	est.Calculation["dividend_growth"] = growthPct

	r := p.RequiredReturn / 100
	g := growthPct / 100
	if r <= g {
		return est.fail("required return (%.2f%%) must exceed dividend growth (%.2f%%)", p.RequiredReturn, growthPct)
	}

	d1 := current * (1 + g)
	est.Calculation["next_dividend"] = d1

	perShare := d1 / (r - g)
	est.PerShare = floatPtr(perShare)

	if shares, ok := s.BasicInfo.TotalShares.Count(); ok && shares > 0 {
		est.Aggregate = floatPtr(perShare * shares)
	}
	return est
}
