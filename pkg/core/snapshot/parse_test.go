package snapshot

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNumberUnmarshal(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		valid bool
	}{
		{`12.5`, 12.5, true},
		{`"12.5"`, 12.5, true},
		// Percent suffix stripped, value stays in percent units; thousands
		// separators removed.
		{`"12.5%"`, 12.5, true},
		{`"1,234.56"`, 1234.56, true},
		{`"-3.2"`, -3.2, true},
		{`""`, 0, false},
		{`"--"`, 0, false},
		{`"-"`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, false},
		{`true`, 0, false},
	}

	for _, c := range cases {
		var n Number
		if err := json.Unmarshal([]byte(c.in), &n); err != nil {
			t.Fatalf("Number unmarshal of %s returned error: %v", c.in, err)
		}
		got, ok := n.Float()
		if ok != c.valid {
			t.Errorf("Number %s: valid=%v, want %v", c.in, ok, c.valid)
			continue
		}
		if c.valid && math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Number %s: got %f, want %f", c.in, got, c.want)
		}
	}
}

func TestNumberNeverFailsOnGarbage(t *testing.T) {
	// A malformed field must become "missing", not break the decode.
	var n Number
	if err := json.Unmarshal([]byte(`{"nested": true}`), &n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Valid() {
		t.Error("object input should decode as missing")
	}
}

func TestNumberOr(t *testing.T) {
	if got := N(7).Or(3); got != 7 {
		t.Errorf("present Number.Or = %f, want 7", got)
	}
	var missing Number
	if got := missing.Or(3); got != 3 {
		t.Errorf("missing Number.Or = %f, want 3", got)
	}
}

func TestNumberMarshalRoundTrip(t *testing.T) {
	b, err := json.Marshal(N(2.5))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "2.5" {
		t.Errorf("present Number marshals to %s, want 2.5", b)
	}

	b, err = json.Marshal(Number{})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "null" {
		t.Errorf("missing Number marshals to %s, want null", b)
	}
}

func TestSharesUnmarshal(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		valid bool
	}{
		{`1200000000`, 1.2e9, true},
		// 12.5亿 = 12.5 * 1e8 = 1.25e9
		{`"12.5亿"`, 1.25e9, true},
		// 8600万 = 8600 * 1e4 = 8.6e7
		{`"8600万"`, 8.6e7, true},
		{`"123456"`, 123456, true},
		{`""`, 0, false},
		{`null`, 0, false},
	}

	for _, c := range cases {
		var s Shares
		if err := json.Unmarshal([]byte(c.in), &s); err != nil {
			t.Fatalf("Shares unmarshal of %s returned error: %v", c.in, err)
		}
		got, ok := s.Count()
		if ok != c.valid {
			t.Errorf("Shares %s: valid=%v, want %v", c.in, ok, c.valid)
			continue
		}
		if c.valid && math.Abs(got-c.want) > 1 {
			t.Errorf("Shares %s: got %f, want %f", c.in, got, c.want)
		}
	}
}
