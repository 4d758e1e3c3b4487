package snapshot

import (
	"fmt"
	"strings"
)

// =============================================================================
// DATA CONTRACT VALIDATION
// Structural checks run against the raw decoded document, before the typed
// snapshot exists. Failure here is fatal: analysis must not run on a document
// that does not meet the contract.
// =============================================================================

// RequiredTopLevelKeys must be present in every snapshot document.
var RequiredTopLevelKeys = []string{"code", "fetch_time", "data_type", "basic_info"}

// OptionalSections are recognized top-level sections. Analyses that need one
// of them declare it via the requiredSections argument of Validate.
var OptionalSections = []string{
	"financial_data",
	"performance_data",
	"financial_indicators",
	"valuation",
	"price",
	"dividend",
	"news_sentiment",
}

// sections that must decode as JSON arrays; everything else in the contract
// is an object.
var arraySections = map[string]bool{
	"financial_indicators": true,
}

var statementArrays = []string{"balance_sheet", "income_statement", "cash_flow"}
var performanceArrays = []string{"forecast", "express", "audit"}

// ValidationError aggregates every contract violation found in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "snapshot contract violation: " + strings.Join(e.Problems, "; ")
}

// Validate schema-checks a raw snapshot document. requiredSections lists the
// top-level sections the caller's analysis cannot run without; their absence
// is reported as a distinct problem each.
func Validate(raw map[string]interface{}, requiredSections []string) (bool, []string) {
	var problems []string

	if raw == nil {
		return false, []string{"document is not a JSON object"}
	}

	for _, key := range RequiredTopLevelKeys {
		if _, ok := raw[key]; !ok {
			problems = append(problems, fmt.Sprintf("missing top-level field: %s", key))
		}
	}

	if v, ok := raw["basic_info"]; ok {
		if _, isObj := v.(map[string]interface{}); !isObj {
			problems = append(problems, "field basic_info must be an object")
		}
	}

	if v, ok := raw["financial_data"]; ok && v != nil {
		fd, isObj := v.(map[string]interface{})
		if !isObj {
			problems = append(problems, "field financial_data must be an object")
		} else {
			for _, key := range statementArrays {
				if sv, present := fd[key]; present && sv != nil {
					if _, isArr := sv.([]interface{}); !isArr {
						problems = append(problems, fmt.Sprintf("field financial_data.%s must be an array", key))
					}
				}
			}
		}
	}

	for _, key := range OptionalSections {
		if key == "financial_data" {
			continue
		}
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if arraySections[key] {
			if _, isArr := v.([]interface{}); !isArr {
				problems = append(problems, fmt.Sprintf("field %s must be an array", key))
			}
		} else {
			if _, isObj := v.(map[string]interface{}); !isObj {
				problems = append(problems, fmt.Sprintf("field %s must be an object", key))
			}
		}
	}

	if v, ok := raw["performance_data"]; ok {
		if perf, isObj := v.(map[string]interface{}); isObj {
			for _, key := range performanceArrays {
				if sv, present := perf[key]; present && sv != nil {
					if _, isArr := sv.([]interface{}); !isArr {
						problems = append(problems, fmt.Sprintf("field performance_data.%s must be an array", key))
					}
				}
			}
		}
	}

	for _, section := range requiredSections {
		if _, ok := raw[section]; !ok {
			problems = append(problems, fmt.Sprintf("missing section required for analysis: %s", section))
		}
	}

	return len(problems) == 0, problems
}

// Ensure wraps Validate into a fatal error.
func Ensure(raw map[string]interface{}, requiredSections []string) error {
	ok, problems := Validate(raw, requiredSections)
	if !ok {
		return &ValidationError{Problems: problems}
	}
	return nil
}
