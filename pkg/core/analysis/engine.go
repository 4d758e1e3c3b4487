package analysis

import (
	"time"

	"equity_insight/pkg/core/snapshot"
)

// Engine orchestrates the analyzers over one snapshot. It is stateless;
// a single instance can serve arbitrary parallel invocations.
type Engine struct{}

// NewEngine creates a new instance of the engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze runs every analyzer, scores the result and assembles the report at
// the requested detail level. It never fails: sub-analyses without inputs
// come back neutral and contribute nothing to the score.
func (e *Engine) Analyze(s *snapshot.Snapshot, level Level) *Report {
	prof := Profitability(s)
	solv := Solvency(s)
	oper := Operation(s)
	growth := Growth(s)
	dupont := Dupont(s)
	anomalies := DetectAnomalies(s)
	perf := PerformanceEvents(s)

	score := Score(prof, solv, growth, anomalies, s.NewsSentiment, perf)

	report := &Report{
		Code:        s.Code,
		Name:        s.Name(),
		GeneratedAt: time.Now(),
		Level:       level,

		Score:     score,
		Headline:  Headline(score, anomalies.RiskLevel),
		RiskLevel: anomalies.RiskLevel,

		ProfitabilityLabel: prof.Assessment,
		SolvencyLabel:      solv.Assessment,
		GrowthLabel:        growth.Assessment,
		PerformanceLabel:   perf.Assessment,

		NewsSentiment: s.NewsSentiment,
	}

	if level == LevelSummary {
		return report
	}

	report.Profitability = &prof
	report.Solvency = &solv
	report.Operation = &oper
	report.Growth = &growth
	report.Dupont = &dupont
	report.Anomalies = &anomalies
	report.Performance = &perf

	if level == LevelDeep {
		report.HistoricalIndicators = s.Indicators
	}
	return report
}
