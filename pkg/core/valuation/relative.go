package valuation

import "equity_insight/pkg/core/snapshot"

// =============================================================================
// RELATIVE VALUATION
// Places current PE/PB on their historical percentile and rescales the
// current price to the 50th-percentile multiple.
// =============================================================================

// Percentile band labels.
const (
	BandUndervalued = "undervalued"
	BandLow         = "low"
	BandMid         = "mid"
	BandHigh        = "high"
	BandOvervalued  = "overvalued"
)

// percentileBands is scanned top-down; the first ceiling above the value
// names the band.
var percentileBands = []struct {
	ceiling float64
	label   string
}{
	{20, BandUndervalued},
	{40, BandLow},
	{60, BandMid},
	{80, BandHigh},
}

func percentileBand(p float64) string {
	for _, b := range percentileBands {
		if p < b.ceiling {
			return b.label
		}
	}
	return BandOvervalued
}

// Relative reads current multiples (basic info first, stored valuation entry
// as fallback), grades their historical percentiles and, when the inputs
// allow it, derives a fair price by rescaling to the median PE.
func Relative(s *snapshot.Snapshot) Estimate {
	est := newEstimate(MethodRelative)
	est.Assessment = map[string]string{}

	currentPE, okPE := s.BasicInfo.PETTM.Float()
	currentPB, okPB := s.BasicInfo.PB.Float()
	if !okPE && s.Valuation.Latest != nil {
		if v, ok := s.Valuation.Latest.PETTM.Float(); ok {
			currentPE, okPE = v, true
		} else if v, ok := s.Valuation.Latest.PE.Float(); ok {
			currentPE, okPE = v, true
		}
	}
	if !okPB && s.Valuation.Latest != nil {
		if v, ok := s.Valuation.Latest.PB.Float(); ok {
			currentPB, okPB = v, true
		}
	}

	if okPE {
		est.Calculation["pe_ttm"] = currentPE
	}
	if okPB {
		est.Calculation["pb"] = currentPB
	}

	pePercentile, okPEPct := s.Valuation.PEPercentile.Float()
	pbPercentile, okPBPct := s.Valuation.PBPercentile.Float()
	if okPEPct {
		est.Calculation["pe_percentile"] = pePercentile
		est.Assessment["pe"] = percentileBand(pePercentile)
	}
	if okPBPct {
		est.Calculation["pb_percentile"] = pbPercentile
		est.Assessment["pb"] = percentileBand(pbPercentile)
	}

	price, okPrice := s.Price.LatestPrice.Float()
	if okPrice {
		est.Calculation["current_price"] = price
	}

	// Fair price only when every factor is usable; percentile 0 would put
	// the normalization denominator at zero.
	if okPE && okPEPct && okPrice && pePercentile > 0 && currentPE > 0 && price > 0 {
		fairPE := currentPE * (50 / pePercentile)
		fairPrice := price * (fairPE / currentPE)
		est.Calculation["fair_pe"] = fairPE
		est.PerShare = floatPtr(fairPrice)
	}
	return est
}
