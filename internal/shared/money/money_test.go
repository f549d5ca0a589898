package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Cents
		wantErr error
	}{
		{"integer number", `100`, 10000, nil},
		{"fractional number", `12.5`, 1250, nil},
		{"two decimals", `0.01`, 1, nil},
		{"trailing zero beyond cents", `12.340`, 1234, nil},
		{"numeric string", `"30"`, 3000, nil},
		{"numeric string with decimals", `"19.99"`, 1999, nil},
		{"negative", `-5`, -500, nil},
		{"zero", `0`, 0, nil},
		{"exponent", `1e2`, 10000, nil},
		{"three decimals", `1.005`, 0, ErrTooPrecise},
		{"word", `"abc"`, 0, ErrNotANumber},
		{"bool", `true`, 0, ErrNotANumber},
		{"object", `{}`, 0, ErrNotANumber},
		{"empty string", `""`, 0, ErrNotANumber},
		{"null", `null`, 0, ErrMissing},
		{"missing", ``, 0, ErrMissing},
		{"huge", `100000000000000`, 0, ErrAmountTooLarge},
		{"tiny exponent", `1e-20000000`, 0, ErrTooPrecise},
		{"huge exponent string", `"1e20000000"`, 0, ErrAmountTooLarge},
		{"huge exponent", `9e999999999`, 0, ErrAmountTooLarge},
		{"zero with huge exponent", `0e-20000000`, 0, nil},
		{"trailing zeros within window", `5.000000000000000000`, 500, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(json.RawMessage(tt.raw))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%s) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%s) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%s) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCents_MarshalJSON(t *testing.T) {
	body, err := json.Marshal(map[string]Cents{"balance": 7050})
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	if string(body) != `{"balance":70.50}` {
		t.Errorf("Marshal() = %s", body)
	}

	var decoded map[string]float64
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("rendered amount is not a JSON number: %v", err)
	}
}

func TestParseString_LargeExponentIsFast(t *testing.T) {
	for _, in := range []string{"1e-999999999", "1e999999999", "-7e-2000000000"} {
		start := time.Now()
		if _, err := ParseString(in); err == nil {
			t.Errorf("ParseString(%q) expected error", in)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("ParseString(%q) took %v", in, elapsed)
		}
	}
}

func TestAdd(t *testing.T) {
	if got, ok := Add(100, 250); !ok || got != 350 {
		t.Errorf("Add(100, 250) = %d, %v", got, ok)
	}
	if _, ok := Add(math.MaxInt64, 1); ok {
		t.Error("Add() should report overflow")
	}
	if got, ok := Add(500, -200); !ok || got != 300 {
		t.Errorf("Add(500, -200) = %d, %v", got, ok)
	}
}
