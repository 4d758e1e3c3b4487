package snapshot

import (
	"encoding/json"
	"strconv"
	"strings"
)

// =============================================================================
// TOLERANT NUMERIC PARSING
// Provider exports mix plain numbers, stringified numbers, percent suffixes,
// thousands separators and "--" placeholders. All of that is absorbed here so
// the scoring and valuation code never sees a raw encoding.
// =============================================================================

// Number is a nullable numeric field. The zero value is "missing".
type Number struct {
	value float64
	valid bool
}

// N builds a present Number. Mostly useful in tests and fixtures.
func N(v float64) Number {
	return Number{value: v, valid: true}
}

// Float returns the value and whether it is present.
func (n Number) Float() (float64, bool) {
	return n.value, n.valid
}

// Valid reports whether a value is present.
func (n Number) Valid() bool {
	return n.valid
}

// Or returns the value, or def when missing.
func (n Number) Or(def float64) float64 {
	if !n.valid {
		return def
	}
	return n.value
}

// UnmarshalJSON never fails: unparseable input is recorded as missing so a
// single bad field cannot poison a whole snapshot.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}

	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		n.value, n.valid = v, true
	case string:
		if f, ok := parseNumericString(v); ok {
			n.value, n.valid = f, true
		}
	case bool, nil:
		// missing
	}
	return nil
}

// MarshalJSON emits null for missing values.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "--" || s == "-" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// =============================================================================
// SHARE COUNTS
// Total shares arrive either as a plain count or as a CJK-suffixed string
// ("12.5亿" = 1.25e9, "8600万" = 8.6e7), depending on the provider endpoint.
// =============================================================================

// Shares is a nullable share count.
type Shares struct {
	count float64
	valid bool
}

// ShareCount builds a present Shares value.
func ShareCount(c float64) Shares {
	return Shares{count: c, valid: true}
}

// Count returns the share count and whether it is present.
func (s Shares) Count() (float64, bool) {
	return s.count, s.valid
}

func (s *Shares) UnmarshalJSON(b []byte) error {
	*s = Shares{}

	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		s.count, s.valid = v, true
	case string:
		if c, ok := parseShareString(v); ok {
			s.count, s.valid = c, true
		}
	}
	return nil
}

func (s Shares) MarshalJSON() ([]byte, error) {
	if !s.valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.count)
}

func parseShareString(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	scale := 1.0
	switch {
	case strings.HasSuffix(raw, "亿"):
		scale = 1e8
		raw = strings.TrimSuffix(raw, "亿")
	case strings.HasSuffix(raw, "万"):
		scale = 1e4
		raw = strings.TrimSuffix(raw, "万")
	}

	f, ok := parseNumericString(raw)
	if !ok {
		return 0, false
	}
	return f * scale, true
}
