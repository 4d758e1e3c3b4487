package valuation

import (
	"fmt"
	"math"
	"testing"

	"equity_insight/pkg/core/snapshot"
)

// dividendSnapshot lists per-share dividends newest first.
func dividendSnapshot(perShare ...float64) *snapshot.Snapshot {
	s := &snapshot.Snapshot{Code: "600519"}
	for i, v := range perShare {
		s.Dividend.History = append(s.Dividend.History, snapshot.DividendRecord{
			Year:     fmt.Sprintf("%d", 2025-i),
			PerShare: snapshot.N(v),
		})
	}
	return s
}

func TestDDMWorkedExample(t *testing.T) {
	// Dividends newest first: 2.00, 1.80, 1.60.
	// CAGR = (2.00/1.60)^(1/2) - 1 = 11.80%, clamped to r-1 = 9%.
	// D1 = 2.00 * 1.09 = 2.18; P = 2.18 / (0.10 - 0.09) = 218.
	s := dividendSnapshot(2.0, 1.8, 1.6)
	est := DDM(s, DefaultParams())
	if est.Error != "" {
		t.Fatalf("DDM failed: %s", est.Error)
	}

	if got := est.Calculation["dividend_growth"]; math.Abs(got-9) > 1e-9 {
		t.Errorf("dividend_growth = %f, want 9 (clamped to required return - 1)", got)
	}
	if est.PerShare == nil || math.Abs(*est.PerShare-218) > 1e-6 {
		t.Errorf("per-share = %v, want 218", est.PerShare)
	}
}

func TestDDMUnclampedCAGR(t *testing.T) {
	// 1.05, 1.00: CAGR = 5%, inside [0, 9], used as-is.
	// D1 = 1.05 * 1.05 = 1.1025; P = 1.1025 / 0.05 = 22.05.
	s := dividendSnapshot(1.05, 1.0)
	est := DDM(s, DefaultParams())
	if est.Error != "" {
		t.Fatalf("DDM failed: %s", est.Error)
	}
	if got := est.Calculation["dividend_growth"]; math.Abs(got-5) > 1e-6 {
		t.Errorf("dividend_growth = %f, want 5", got)
	}
	if est.PerShare == nil || math.Abs(*est.PerShare-22.05) > 1e-4 {
		t.Errorf("per-share = %v, want 22.05", est.PerShare)
	}
}

func TestDDMShrinkingDividendFloorsAtZero(t *testing.T) {
	// 1.00, 2.00 newest first: negative CAGR clamps to 0.
	s := dividendSnapshot(1.0, 2.0)
	est := DDM(s, DefaultParams())
	if est.Error != "" {
		t.Fatalf("DDM failed: %s", est.Error)
	}
	if got := est.Calculation["dividend_growth"]; got != 0 {
		t.Errorf("dividend_growth = %f, want 0", got)
	}
	// P = 1.00 / 0.10 = 10.
	if est.PerShare == nil || math.Abs(*est.PerShare-10) > 1e-9 {
		t.Errorf("per-share = %v, want 10", est.PerShare)
	}
}

func TestDDMGrowthOverride(t *testing.T) {
	s := dividendSnapshot(2.0, 1.8, 1.6)
	p := DefaultParams()
	override := 4.0
	p.DividendGrowth = &override

	est := DDM(s, p)
	if est.Error != "" {
		t.Fatalf("DDM failed: %s", est.Error)
	}
	if got := est.Calculation["dividend_growth"]; math.Abs(got-4) > 1e-9 {
		t.Errorf("dividend_growth = %f, want the 4%% override", got)
	}
	// D1 = 2.00 * 1.04 = 2.08; P = 2.08 / 0.06 = 34.667
	if est.PerShare == nil || math.Abs(*est.PerShare-2.08/0.06) > 1e-6 {
		t.Errorf("per-share = %v, want %f", est.PerShare, 2.08/0.06)
	}
}

func TestDDMExplicitGrowthAboveReturnFails(t *testing.T) {
	// An explicit growth of 12% against a 10% required return must fail
	// outright, never silently clamp.
	s := dividendSnapshot(2.0, 1.8)
	p := DefaultParams()
	override := 12.0
	p.DividendGrowth = &override

	est := DDM(s, p)
	if est.Error == "" || est.PerShare != nil {
		t.Errorf("expected explicit r <= g failure, got %+v", est)
	}
}

func TestDDMInsufficientHistory(t *testing.T) {
	// No history at all.
	est := DDM(&snapshot.Snapshot{Code: "600519"}, DefaultParams())
	if est.Error == "" {
		t.Error("expected failure without dividend history")
	}

	// One positive, one zero: fewer than two positive observations.
	est = DDM(dividendSnapshot(1.5, 0), DefaultParams())
	if est.Error == "" || est.PerShare != nil {
		t.Errorf("expected failure with a single positive dividend, got %+v", est)
	}
}

func TestDDMHistoryWindow(t *testing.T) {
	// Seven years of history; only the newest five count. With the sixth
	// value an extreme 0.01 the CAGR would explode past the clamp, so the
	// clamped growth proves the window held.
	s := dividendSnapshot(2.0, 2.0, 2.0, 2.0, 2.0, 0.01, 0.01)
	est := DDM(s, DefaultParams())
	if est.Error != "" {
		t.Fatalf("DDM failed: %s", est.Error)
	}
	// Flat newest five: CAGR 0.
	if got := est.Calculation["dividend_growth"]; got != 0 {
		t.Errorf("dividend_growth = %f, want 0 from the 5-year window", got)
	}
}

func TestDDMAggregateNeedsShares(t *testing.T) {
	s := dividendSnapshot(2.0, 1.8)
	est := DDM(s, DefaultParams())
	if est.Aggregate != nil {
		t.Errorf("aggregate should be nil without a share count, got %v", est.Aggregate)
	}

	s.BasicInfo.TotalShares = snapshot.ShareCount(100)
	est = DDM(s, DefaultParams())
	if est.Aggregate == nil || est.PerShare == nil {
		t.Fatal("expected aggregate with a share count")
	}
	if math.Abs(*est.Aggregate-*est.PerShare*100) > 1e-6 {
		t.Errorf("aggregate %f != per-share * shares %f", *est.Aggregate, *est.PerShare*100)
	}
}
