package analysis

import "equity_insight/pkg/core/snapshot"

// =============================================================================
// DUPONT DECOMPOSITION
// ROE = net margin x asset turnover x equity multiplier, taken from the
// latest indicator record's precomputed factors. Nothing is re-derived from
// raw statements here.
// =============================================================================

// Driver labels.
const (
	DriverMargin   = "margin-driven"
	DriverTurnover = "turnover-driven"
	DriverLeverage = "leverage-driven"
	DriverBalanced = "balanced"
)

// Dupont classifies what drives the latest-period ROE. Several drivers can
// co-trigger; when none does, the mix is balanced. If any factor is missing
// the decomposition stays empty and no driver is named.
func Dupont(s *snapshot.Snapshot) DupontResult {
	res := DupontResult{Category: "dupont", Decomposition: map[string]float64{}}

	if len(s.Indicators) == 0 {
		return res
	}
	latest := s.Indicators[0]

	netMargin, okMargin := latest.NetMargin.Float()
	turnover, okTurnover := latest.AssetTurnover.Float()
	multiplier, okMultiplier := latest.EquityMultiplier.Float()
	if !okMargin || !okTurnover || !okMultiplier {
		return res
	}

	res.Decomposition["net_margin"] = netMargin
	res.Decomposition["asset_turnover"] = turnover
	res.Decomposition["equity_multiplier"] = multiplier
	if roe, ok := latest.ROE.Float(); ok {
		res.Decomposition["roe"] = roe
	}

	if netMargin > 15 {
		res.Drivers = append(res.Drivers, DriverMargin)
	}
	if turnover > 1 {
		res.Drivers = append(res.Drivers, DriverTurnover)
	}
	if multiplier > 2.5 {
		res.Drivers = append(res.Drivers, DriverLeverage)
	}
	if len(res.Drivers) == 0 {
		res.Drivers = append(res.Drivers, DriverBalanced)
	}
	return res
}
