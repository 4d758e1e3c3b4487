package valuation

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"equity_insight/pkg/core/snapshot"
)

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Params)
		frag   string
	}{
		{"zero discount", func(p *Params) { p.DiscountRate = 0 }, "discount rate"},
		{"negative required return", func(p *Params) { p.RequiredReturn = -1 }, "required return"},
		{"zero horizon", func(p *Params) { p.ForecastYears = 0 }, "horizon"},
		{"31 year horizon", func(p *Params) { p.ForecastYears = 31 }, "horizon"},
		{"terminal above discount", func(p *Params) { p.TerminalGrowth = 12 }, "terminal growth"},
		{"margin above 100", func(p *Params) { p.MarginOfSafety = 120 }, "margin of safety"},
	}
	for _, c := range cases {
		p := DefaultParams()
		c.mutate(&p)
		err := p.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.frag) {
			t.Errorf("%s: error %q should mention %q", c.name, err, c.frag)
		}
	}
}

func TestMarginOfSafetyDecisions(t *testing.T) {
	// Intrinsic 100 at a 30% margin: safety price 70.
	res := MarginOfSafety(100, 60, 30)
	if res.SafetyPrice != 70 {
		t.Errorf("safety price = %f, want 70", res.SafetyPrice)
	}
	if res.Decision != DecisionUndervalued {
		t.Errorf("price 60: decision %q, want undervalued", res.Decision)
	}
	// Actual margin = (100-60)/100 = 40%.
	if math.Abs(res.ActualMarginPct-40) > 1e-9 {
		t.Errorf("actual margin = %f, want 40", res.ActualMarginPct)
	}

	if res := MarginOfSafety(100, 85, 30); res.Decision != DecisionFair {
		t.Errorf("price 85: decision %q, want fair", res.Decision)
	}
	if res := MarginOfSafety(100, 110, 30); res.Decision != DecisionOvervalued {
		t.Errorf("price 110: decision %q, want overvalued", res.Decision)
	}
	// Price exactly at intrinsic value is not below it.
	if res := MarginOfSafety(100, 100, 30); res.Decision != DecisionOvervalued {
		t.Errorf("price 100: decision %q, want overvalued", res.Decision)
	}
	// Price exactly at the safety price is not below it.
	if res := MarginOfSafety(100, 70, 30); res.Decision != DecisionFair {
		t.Errorf("price 70: decision %q, want fair", res.Decision)
	}
}

func TestComprehensiveAveragesProducersOnly(t *testing.T) {
	// Only DDM can produce here: no cash flow, no multiples.
	// Dividends 2.00, 1.80: CAGR = 11.1%, clamped to 9%.
	// P = 2.00*1.09 / 0.01 = 218.
	s := dividendSnapshot(2.0, 1.8)
	s.Price.LatestPrice = snapshot.N(150)

	summary, err := Comprehensive(s, DefaultParams())
	if err != nil {
		t.Fatalf("Comprehensive failed: %v", err)
	}

	if len(summary.Methods) != 3 {
		t.Fatalf("all three methods must be present, got %d", len(summary.Methods))
	}
	if summary.Methods[MethodDCF].Error == "" {
		t.Error("DCF should have failed without cash flow data")
	}
	if len(summary.MethodValues) != 1 {
		t.Fatalf("method values = %v, want only ddm", summary.MethodValues)
	}
	// The mean of one producer is that producer's value, not dragged down
	// by failed methods.
	if summary.IntrinsicValue == nil || math.Abs(*summary.IntrinsicValue-218) > 1e-6 {
		t.Errorf("intrinsic = %v, want 218", summary.IntrinsicValue)
	}

	if summary.Margin == nil {
		t.Fatal("expected a margin decision with a price present")
	}
	// Safety price = 218 * 0.7 = 152.6 > 150: undervalued.
	if summary.Margin.Decision != DecisionUndervalued {
		t.Errorf("decision %q, want undervalued", summary.Margin.Decision)
	}
}

func TestComprehensiveNoProducers(t *testing.T) {
	s := &snapshot.Snapshot{Code: "600519", Price: snapshot.PriceData{LatestPrice: snapshot.N(50)}}
	summary, err := Comprehensive(s, DefaultParams())
	if err != nil {
		t.Fatalf("Comprehensive failed: %v", err)
	}
	if summary.IntrinsicValue != nil || summary.Margin != nil {
		t.Error("no producing method: no intrinsic value, no margin verdict")
	}
	for name, est := range summary.Methods {
		if name != MethodRelative && est.Error == "" {
			t.Errorf("method %s should carry its failure reason", name)
		}
	}
}

func TestComprehensiveZeroIntrinsicSkipsMargin(t *testing.T) {
	// OCF equals capex: trailing FCF is 0, so DCF projects zeros and the
	// per-share value is exactly 0. The mean of producers is then 0 and
	// the margin division must not run.
	s := &snapshot.Snapshot{
		Code:      "600519",
		BasicInfo: snapshot.BasicInfo{TotalShares: snapshot.ShareCount(1000)},
		FinancialData: snapshot.FinancialData{
			CashFlow: []snapshot.CashFlowRecord{
				{Date: "2025-12-31", OperatingCashFlow: snapshot.N(100), Capex: snapshot.N(100)},
			},
		},
		Price: snapshot.PriceData{LatestPrice: snapshot.N(50)},
	}

	summary, err := Comprehensive(s, DefaultParams())
	if err != nil {
		t.Fatalf("Comprehensive failed: %v", err)
	}
	if summary.IntrinsicValue == nil || *summary.IntrinsicValue != 0 {
		t.Errorf("intrinsic = %v, want 0", summary.IntrinsicValue)
	}
	if summary.Margin != nil {
		t.Errorf("margin must be skipped at zero intrinsic value, got %+v", summary.Margin)
	}
	// The summary must survive JSON encoding for the API response.
	if _, err := json.Marshal(summary); err != nil {
		t.Errorf("summary does not encode: %v", err)
	}
}

func TestComprehensiveRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.ForecastYears = 0
	if _, err := Comprehensive(&snapshot.Snapshot{Code: "600519"}, p); err == nil {
		t.Error("invalid parameters must be the one hard error")
	}
}

func TestComprehensiveMeanOfTwoProducers(t *testing.T) {
	// DDM produces 218 (as above). Relative: PE 30 at percentile 50,
	// price 60 -> fair price 60. Mean = (218 + 60) / 2 = 139.
	s := dividendSnapshot(2.0, 1.8)
	s.BasicInfo.PETTM = snapshot.N(30)
	s.Valuation.PEPercentile = snapshot.N(50)
	s.Price.LatestPrice = snapshot.N(60)

	summary, err := Comprehensive(s, DefaultParams())
	if err != nil {
		t.Fatalf("Comprehensive failed: %v", err)
	}
	if len(summary.MethodValues) != 2 {
		t.Fatalf("method values = %v, want ddm and relative", summary.MethodValues)
	}
	if summary.IntrinsicValue == nil || math.Abs(*summary.IntrinsicValue-139) > 1e-6 {
		t.Errorf("intrinsic = %v, want 139", summary.IntrinsicValue)
	}
}
