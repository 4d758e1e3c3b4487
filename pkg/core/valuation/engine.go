package valuation

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"equity_insight/pkg/core/snapshot"
)

// =============================================================================
// COMPREHENSIVE VALUATION
// Run every method, average the producers, decide against the margin of
// safety. A failed method is excluded from the mean, never counted as zero.
// =============================================================================

// Decisions.
const (
	DecisionUndervalued = "undervalued - price below the safety price, attractive entry"
	DecisionFair        = "fair - price below intrinsic value but above the safety margin"
	DecisionOvervalued  = "overvalued - price above intrinsic value"
)

// Comprehensive runs DCF, DDM and relative valuation on the snapshot and
// aggregates per-share values from whichever methods produced one. The only
// error is an invalid parameter set; method failures stay inside their
// estimates.
func Comprehensive(s *snapshot.Snapshot, p Params) (*Summary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	summary := &Summary{
		Code:        s.Code,
		Name:        s.Name(),
		GeneratedAt: time.Now(),
		Methods:     map[string]Estimate{},
	}

	dcf := DCF(s, p)
	ddm := DDM(s, p)
	relative := Relative(s)
	summary.Methods[MethodDCF] = dcf
	summary.Methods[MethodDDM] = ddm
	summary.Methods[MethodRelative] = relative

	var values []float64
	summary.MethodValues = map[string]float64{}
	for name, est := range summary.Methods {
		if est.PerShare != nil {
			values = append(values, *est.PerShare)
			summary.MethodValues[name] = *est.PerShare
		}
	}
	if len(values) == 0 {
		return summary, nil
	}

	intrinsic := stat.Mean(values, nil)
	summary.IntrinsicValue = floatPtr(intrinsic)

	price, okPrice := s.Price.LatestPrice.Float()
	if okPrice && price > 0 {
		summary.CurrentPrice = floatPtr(price)
	}
	// The margin division needs a strictly positive intrinsic value; a
	// non-positive mean carries no safety verdict.
	if okPrice && price > 0 && intrinsic > 0 {
		margin := MarginOfSafety(intrinsic, price, p.MarginOfSafety)
		summary.Margin = &margin
	}
	return summary, nil
}

// MarginOfSafety derives the safety price and the buy/hold/avoid decision.
// The caller guarantees intrinsic > 0 and price > 0.
func MarginOfSafety(intrinsic, price, marginPct float64) MarginResult {
	res := MarginResult{
		IntrinsicValue:    intrinsic,
		CurrentPrice:      price,
		RequiredMarginPct: marginPct,
	}

	res.ActualMarginPct = (intrinsic - price) / intrinsic * 100
	res.SafetyPrice = intrinsic * (1 - marginPct/100)

	switch {
	case price < res.SafetyPrice:
		res.Decision = DecisionUndervalued
	case price < intrinsic:
		res.Decision = DecisionFair
	default:
		res.Decision = DecisionOvervalued
	}
	return res
}
