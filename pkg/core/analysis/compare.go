package analysis

import (
	"sort"
	"time"

	"equity_insight/pkg/core/snapshot"
)

// =============================================================================
// COMPARISON MODE
// Repeated independent single-snapshot analysis plus one ranking pass.
// =============================================================================

// ComparisonEntry is one company's summary inside a comparison.
type ComparisonEntry struct {
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Score         int       `json:"score"`
	Profitability string    `json:"profitability"`
	Solvency      string    `json:"solvency"`
	Growth        string    `json:"growth"`
	RiskLevel     RiskLevel `json:"risk_level"`
	Rank          int       `json:"rank"`
}

// Comparison ranks a set of snapshots by composite score.
type Comparison struct {
	GeneratedAt time.Time         `json:"comparison_date"`
	Stocks      []ComparisonEntry `json:"stocks"`
	Ranking     map[string]int    `json:"ranking"`
}

// Compare analyzes each snapshot independently and assigns 1-based ranks in
// descending score order. The sort is stable, so on equal scores the earlier
// input keeps the better rank.
func (e *Engine) Compare(snaps []*snapshot.Snapshot) *Comparison {
	cmp := &Comparison{
		GeneratedAt: time.Now(),
		Stocks:      make([]ComparisonEntry, 0, len(snaps)),
		Ranking:     make(map[string]int, len(snaps)),
	}

	for _, s := range snaps {
		report := e.Analyze(s, LevelSummary)
		cmp.Stocks = append(cmp.Stocks, ComparisonEntry{
			Code:          report.Code,
			Name:          report.Name,
			Score:         report.Score,
			Profitability: report.ProfitabilityLabel,
			Solvency:      report.SolvencyLabel,
			Growth:        report.GrowthLabel,
			RiskLevel:     report.RiskLevel,
		})
	}

	order := make([]int, len(cmp.Stocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cmp.Stocks[order[a]].Score > cmp.Stocks[order[b]].Score
	})
	for rank, idx := range order {
		cmp.Stocks[idx].Rank = rank + 1
		cmp.Ranking[cmp.Stocks[idx].Code] = rank + 1
	}
	return cmp
}
