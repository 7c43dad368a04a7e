package pricing

import (
	"math"
	"testing"
)

func TestRoundUp_Boundaries(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		step  float64
		want  float64
	}{
		{name: "exact multiple stays", value: 1.00, step: 0.05, want: 1.00},
		{name: "just above rounds up", value: 1.001, step: 0.05, want: 1.05},
		{name: "boundary is exact", value: 1.05, step: 0.05, want: 1.05},
		{name: "past boundary climbs", value: 1.051, step: 0.05, want: 1.10},
		{name: "zero value", value: 0, step: 0.05, want: 0},
		{name: "whole step", value: 27.3, step: 0.5, want: 27.5},
		{name: "already on whole step", value: 27.5, step: 0.5, want: 27.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RoundUp(tc.value, tc.step)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("RoundUp(%v, %v) = %v, want %v", tc.value, tc.step, got, tc.want)
			}
		})
	}
}

func TestRoundUp_NonPositiveStepPassesThrough(t *testing.T) {
	if got := RoundUp(3.14, 0); got != 3.14 {
		t.Fatalf("expected passthrough on zero step, got %v", got)
	}
	if got := RoundUp(3.14, -1); got != 3.14 {
		t.Fatalf("expected passthrough on negative step, got %v", got)
	}
}

func TestRoundUp_Idempotent(t *testing.T) {
	values := []float64{0, 0.01, 1.049, 1.05, 27.3, 999.999}
	steps := []float64{0.01, 0.05, 0.5, 1, 2.5}

	for _, v := range values {
		for _, s := range steps {
			once := RoundUp(v, s)
			twice := RoundUp(once, s)
			if math.Abs(once-twice) > 1e-9 {
				t.Fatalf("RoundUp not idempotent for value %v step %v: %v then %v", v, s, once, twice)
			}
			if once+1e-9 < v {
				t.Fatalf("RoundUp(%v, %v) = %v went below the input", v, s, once)
			}
		}
	}
}
