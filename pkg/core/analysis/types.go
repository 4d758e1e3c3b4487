// Package analysis turns a validated snapshot into diagnostic scores, anomaly
// signals and a 0-100 composite. Every function here is pure: same snapshot
// in, same result out, no I/O.
package analysis

import (
	"time"

	"equity_insight/pkg/core/snapshot"
)

// =============================================================================
// VOCABULARIES
// Assessments come from closed ordinal sets so callers can switch on them.
// =============================================================================

// Category assessment labels.
const (
	AssessExcellent = "excellent"
	AssessGood      = "good"
	AssessAverage   = "average"
	AssessWeak      = "weak"
)

// Growth assessment labels.
const (
	GrowthHigh     = "high"
	GrowthStable   = "stable"
	GrowthSlow     = "slow"
	GrowthNegative = "negative"
)

// Performance-event assessment labels.
const (
	PerfPositive = "positive"
	PerfNeutral  = "neutral"
	PerfWeak     = "weak"
)

// RiskLevel is the severity scale shared by anomaly signals and the
// aggregate risk verdict.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Level selects how much detail a report carries.
type Level string

const (
	LevelSummary  Level = "summary"
	LevelStandard Level = "standard"
	LevelDeep     Level = "deep"
)

// ParseLevel maps a request string onto a Level, defaulting to standard.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelSummary, LevelStandard, LevelDeep:
		return Level(s)
	default:
		return LevelStandard
	}
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// Diagnostic is one category's read of the snapshot. Metrics holds only the
// values that were actually present; a missing input is excluded, never zero.
type Diagnostic struct {
	Category     string             `json:"category"`
	Metrics      map[string]float64 `json:"metrics"`
	Trends       []string           `json:"trends,omitempty"`
	Risks        []string           `json:"risks,omitempty"`
	Observations []string           `json:"observations,omitempty"`
	Assessment   string             `json:"assessment,omitempty"`
}

func newDiagnostic(category string) Diagnostic {
	return Diagnostic{Category: category, Metrics: map[string]float64{}}
}

// DupontResult factors ROE into margin x turnover x leverage.
// Decomposition stays empty when any factor is unavailable.
type DupontResult struct {
	Category      string             `json:"category"`
	Decomposition map[string]float64 `json:"decomposition"`
	Drivers       []string           `json:"drivers,omitempty"`
}

// AnomalySignal is one triggered accounting-quality rule.
type AnomalySignal struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    RiskLevel `json:"severity"`
}

// AnomalyReport aggregates the divergence rules for the latest period pair.
type AnomalyReport struct {
	Category  string          `json:"category"`
	Signals   []AnomalySignal `json:"signals"`
	RiskLevel RiskLevel       `json:"risk_level"`
}

// PerformanceSignal is a closed-category disclosure flag, never free text.
type PerformanceSignal struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// PerformanceReport interprets forecast/express/audit/concentration
// disclosures.
type PerformanceReport struct {
	Category   string              `json:"category"`
	Signals    []PerformanceSignal `json:"signals"`
	Assessment string              `json:"assessment"`
}

// =============================================================================
// REPORT
// =============================================================================

// Report is one company's full analysis at a chosen detail level. The label
// block is always present; diagnostic objects appear at standard and deep,
// the indicator history only at deep.
type Report struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	GeneratedAt time.Time `json:"analysis_date"`
	Level       Level     `json:"level"`

	Score     int       `json:"score"`
	Headline  string    `json:"summary_title"`
	RiskLevel RiskLevel `json:"risk_level"`

	ProfitabilityLabel string `json:"profitability_label"`
	SolvencyLabel      string `json:"solvency_label"`
	GrowthLabel        string `json:"growth_label"`
	PerformanceLabel   string `json:"performance_label"`

	Profitability *Diagnostic        `json:"profitability,omitempty"`
	Solvency      *Diagnostic        `json:"solvency,omitempty"`
	Operation     *Diagnostic        `json:"operation,omitempty"`
	Growth        *Diagnostic        `json:"growth,omitempty"`
	Dupont        *DupontResult      `json:"dupont,omitempty"`
	Anomalies     *AnomalyReport     `json:"anomalies,omitempty"`
	Performance   *PerformanceReport `json:"performance,omitempty"`

	NewsSentiment *snapshot.NewsSentiment `json:"news_sentiment,omitempty"`

	HistoricalIndicators []snapshot.IndicatorRecord `json:"historical_indicators,omitempty"`
}
