package valuation

import (
	"math"
	"testing"

	"equity_insight/pkg/core/snapshot"
)

func TestPercentileBands(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{5, BandUndervalued},
		{20, BandLow}, // 20 is not < 20
		{35, BandLow},
		{50, BandMid},
		{75, BandHigh},
		{80, BandOvervalued},
		{95, BandOvervalued},
	}
	for _, c := range cases {
		if got := percentileBand(c.pct); got != c.want {
			t.Errorf("percentile %.0f: band %s, want %s", c.pct, got, c.want)
		}
	}
}

func TestRelativeWorkedExample(t *testing.T) {
	// PE 30 at the 25th percentile, price 60.
	// fair PE = 30 * (50/25) = 60; fair price = 60 * (60/30) = 120.
	s := &snapshot.Snapshot{
		Code:      "600519",
		BasicInfo: snapshot.BasicInfo{PETTM: snapshot.N(30), PB: snapshot.N(5)},
		Valuation: snapshot.ValuationData{
			PEPercentile: snapshot.N(25),
			PBPercentile: snapshot.N(85),
		},
		Price: snapshot.PriceData{LatestPrice: snapshot.N(60)},
	}
	est := Relative(s)

	if est.Assessment["pe"] != BandLow {
		t.Errorf("pe band %s, want low", est.Assessment["pe"])
	}
	if est.Assessment["pb"] != BandOvervalued {
		t.Errorf("pb band %s, want overvalued", est.Assessment["pb"])
	}
	if got := est.Calculation["fair_pe"]; math.Abs(got-60) > 1e-9 {
		t.Errorf("fair_pe = %f, want 60", got)
	}
	if est.PerShare == nil || math.Abs(*est.PerShare-120) > 1e-9 {
		t.Errorf("fair price = %v, want 120", est.PerShare)
	}
}

func TestRelativeFallsBackToStoredMultiples(t *testing.T) {
	// basic_info carries nothing; the stored valuation entry supplies PE.
	s := &snapshot.Snapshot{
		Code: "600519",
		Valuation: snapshot.ValuationData{
			Latest:       &snapshot.LatestValuation{PE: snapshot.N(22)},
			PEPercentile: snapshot.N(50),
		},
		Price: snapshot.PriceData{LatestPrice: snapshot.N(44)},
	}
	est := Relative(s)
	if got := est.Calculation["pe_ttm"]; got != 22 {
		t.Errorf("pe_ttm = %f, want 22 from the stored entry", got)
	}
	// At the 50th percentile the fair price equals the current price.
	if est.PerShare == nil || math.Abs(*est.PerShare-44) > 1e-9 {
		t.Errorf("fair price = %v, want 44", est.PerShare)
	}
}

func TestRelativeFairPriceGates(t *testing.T) {
	// Each broken input must suppress the fair price but keep the bands.
	base := func() *snapshot.Snapshot {
		return &snapshot.Snapshot{
			Code:      "600519",
			BasicInfo: snapshot.BasicInfo{PETTM: snapshot.N(30)},
			Valuation: snapshot.ValuationData{PEPercentile: snapshot.N(25)},
			Price:     snapshot.PriceData{LatestPrice: snapshot.N(60)},
		}
	}

	s := base()
	s.Valuation.PEPercentile = snapshot.N(0) // zero denominator
	if est := Relative(s); est.PerShare != nil {
		t.Error("zero percentile must not yield a fair price")
	}

	s = base()
	s.Price.LatestPrice = snapshot.Number{}
	if est := Relative(s); est.PerShare != nil {
		t.Error("missing price must not yield a fair price")
	}

	s = base()
	s.BasicInfo.PETTM = snapshot.N(-12) // loss-making, negative PE
	if est := Relative(s); est.PerShare != nil {
		t.Error("negative PE must not yield a fair price")
	}

	// The band assessment survives regardless.
	if est := Relative(s); est.Assessment["pe"] != BandLow {
		t.Errorf("pe band lost: %v", est.Assessment)
	}
}

func TestRelativeNeverFails(t *testing.T) {
	est := Relative(&snapshot.Snapshot{Code: "600519"})
	if est.Error != "" {
		t.Errorf("relative valuation has no failure mode, got %q", est.Error)
	}
	if est.PerShare != nil {
		t.Error("no inputs, no fair price")
	}
}
