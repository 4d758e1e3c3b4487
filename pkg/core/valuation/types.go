// Package valuation estimates intrinsic value from a snapshot using DCF, DDM
// and relative multiples, and turns the aggregate into a margin-of-safety
// decision. Like the analysis package it is pure and deterministic.
package valuation

import (
	"fmt"
	"time"
)

// Method names.
const (
	MethodDCF      = "dcf"
	MethodDDM      = "ddm"
	MethodRelative = "relative"
)

// =============================================================================
// PARAMETERS
// =============================================================================

// Params are the externally supplied valuation inputs. Percentages are in
// percent units (10 means 10%), matching the provider convention.
type Params struct {
	DiscountRate   float64 `json:"discount_rate" yaml:"discount_rate"`
	ForecastYears  int     `json:"forecast_years" yaml:"forecast_years"`
	TerminalGrowth float64 `json:"terminal_growth" yaml:"terminal_growth"`
	RequiredReturn float64 `json:"required_return" yaml:"required_return"`
	MarginOfSafety float64 `json:"margin_of_safety" yaml:"margin_of_safety"`

	// DividendGrowth overrides the CAGR-derived dividend growth when set.
	DividendGrowth *float64 `json:"dividend_growth,omitempty" yaml:"-"`
}

// DefaultParams returns the documented defaults: 10% discount, 5 years, 3%
// terminal growth, 10% required return, 30% margin of safety.
func DefaultParams() Params {
	return Params{
		DiscountRate:   10,
		ForecastYears:  5,
		TerminalGrowth: 3,
		RequiredReturn: 10,
		MarginOfSafety: 30,
	}
}

// Validate rejects parameter sets no method could use sensibly. It runs once
// before any method; the per-method r>g guards still apply afterwards.
func (p Params) Validate() error {
	if p.DiscountRate <= 0 {
		return fmt.Errorf("discount rate must be positive, got %.2f", p.DiscountRate)
	}
	if p.RequiredReturn <= 0 {
		return fmt.Errorf("required return must be positive, got %.2f", p.RequiredReturn)
	}
	if p.ForecastYears < 1 || p.ForecastYears > 30 {
		return fmt.Errorf("forecast horizon must be between 1 and 30 years, got %d", p.ForecastYears)
	}
	if p.TerminalGrowth >= p.DiscountRate {
		return fmt.Errorf("terminal growth (%.2f%%) must stay below the discount rate (%.2f%%)", p.TerminalGrowth, p.DiscountRate)
	}
	if p.MarginOfSafety < 0 || p.MarginOfSafety > 100 {
		return fmt.Errorf("margin of safety must be within [0,100], got %.2f", p.MarginOfSafety)
	}
	return nil
}

// =============================================================================
// RESULTS
// =============================================================================

// ForecastYear is one projected cash flow and its present value.
type ForecastYear struct {
	Year int     `json:"year"`
	FCF  float64 `json:"fcf"`
	PV   float64 `json:"pv"`
}

// Estimate is one method's outcome. A method that cannot produce a value
// records why in Error and leaves the values nil; it never aborts siblings.
type Estimate struct {
	Method      string             `json:"method"`
	Parameters  map[string]float64 `json:"parameters,omitempty"`
	Calculation map[string]float64 `json:"calculation,omitempty"`
	Forecast    []ForecastYear     `json:"forecast,omitempty"`
	Assessment  map[string]string  `json:"assessment,omitempty"`
	PerShare    *float64           `json:"per_share_value"`
	Aggregate   *float64           `json:"intrinsic_value"`
	Error       string             `json:"error,omitempty"`
}

func newEstimate(method string) Estimate {
	return Estimate{
		Method:      method,
		Parameters:  map[string]float64{},
		Calculation: map[string]float64{},
	}
}

func (e *Estimate) fail(format string, args ...interface{}) Estimate {
	e.Error = fmt.Sprintf(format, args...)
	return *e
}

// MarginResult is the safety-margin verdict on an intrinsic value.
type MarginResult struct {
	IntrinsicValue    float64 `json:"intrinsic_value"`
	CurrentPrice      float64 `json:"current_price"`
	RequiredMarginPct float64 `json:"margin_of_safety_required"`
	ActualMarginPct   float64 `json:"actual_margin_of_safety"`
	SafetyPrice       float64 `json:"safety_price"`
	Decision          string  `json:"conclusion"`
}

// Summary is the comprehensive multi-method valuation of one company.
type Summary struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	GeneratedAt time.Time `json:"valuation_date"`

	Methods map[string]Estimate `json:"methods"`

	IntrinsicValue *float64           `json:"average_intrinsic_value,omitempty"`
	MethodValues   map[string]float64 `json:"method_values,omitempty"`
	CurrentPrice   *float64           `json:"current_price,omitempty"`
	Margin         *MarginResult      `json:"margin_of_safety,omitempty"`
}

func floatPtr(f float64) *float64 { return &f }
