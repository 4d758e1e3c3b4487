package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// =============================================================================
// LOADER
// Decode -> contract check -> typed snapshot -> period-order normalization.
// Snapshots are frequently hand-assembled or relayed through lossy channels,
// so decoding is lenient: strict JSON first, then Hjson, then repair.
// =============================================================================

// Load decodes, validates and normalizes one snapshot document.
// requiredSections is forwarded to the contract validator; a violation is
// fatal and returns a *ValidationError.
func Load(data []byte, requiredSections ...string) (*Snapshot, error) {
	raw, canonical, err := decodeLenient(data)
	if err != nil {
		return nil, err
	}

	if err := Ensure(raw, requiredSections); err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(canonical, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	snap.normalize()
	return &snap, nil
}

// decodeLenient returns the document as a raw map (for contract checks) and
// as canonical JSON bytes (for the typed decode). Hjson is tried before the
// repair pass: it parses the hand-edited class deterministically, while
// json-repair can "fix" such input into a structurally different document.
// Repair is the last resort for genuinely broken JSON.
func decodeLenient(data []byte) (map[string]interface{}, []byte, error) {
	var raw map[string]interface{}

	if err := json.Unmarshal(data, &raw); err == nil {
		return raw, data, nil
	}

	if err := hjson.Unmarshal(data, &raw); err == nil {
		canonical, err := json.Marshal(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("re-encode hjson document: %w", err)
		}
		return raw, canonical, nil
	}

	if repaired, err := jsonrepair.RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), &raw); err == nil {
			return raw, []byte(repaired), nil
		}
	}

	return nil, nil, fmt.Errorf("snapshot is not valid JSON and could not be repaired")
}

// normalize enforces the ordering invariant every analyzer assumes: period
// series sorted descending by date, duplicate dates dropped (first wins).
// Doing this once at ingestion keeps the "latest vs previous" comparisons
// honest without re-checking inside each rule.
func (s *Snapshot) normalize() {
	s.Indicators = sortRecords(s.Indicators, func(r IndicatorRecord) string { return r.Date })
	s.FinancialData.BalanceSheet = sortRecords(s.FinancialData.BalanceSheet, func(r BalanceRecord) string { return r.Date })
	s.FinancialData.IncomeStatement = sortRecords(s.FinancialData.IncomeStatement, func(r IncomeRecord) string { return r.Date })
	s.FinancialData.CashFlow = sortRecords(s.FinancialData.CashFlow, func(r CashFlowRecord) string { return r.Date })
	s.PerformanceData.Forecast = sortRecords(s.PerformanceData.Forecast, func(r ForecastRecord) string { return r.Date })
	s.PerformanceData.Express = sortRecords(s.PerformanceData.Express, func(r ExpressRecord) string { return r.Date })
	s.PerformanceData.Audit = sortRecords(s.PerformanceData.Audit, func(r AuditRecord) string { return r.Date })
	s.Dividend.History = sortRecords(s.Dividend.History, func(r DividendRecord) string { return r.Year })
}

// sortRecords sorts descending by the key (ISO dates sort lexicographically)
// and removes duplicate keys, keeping the first occurrence. Records with an
// empty key sort last and are kept as-is relative to each other.
func sortRecords[T any](records []T, key func(T) string) []T {
	if len(records) < 2 {
		return records
	}

	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := key(records[i]), key(records[j])
		if ki == "" || kj == "" {
			return kj == "" && ki != ""
		}
		return ki > kj
	})

	out := records[:0]
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		k := key(r)
		if k != "" && seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}
