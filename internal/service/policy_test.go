package service

import (
	"testing"

	"roombridge/internal/config"
)

func TestFixedStep_FullStepInDeltaDirection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		delta float64
		step  float64
		want  float64
	}{
		{name: "warming", delta: 3, step: 1, want: 1},
		{name: "cooling", delta: -3, step: 1, want: -1},
		{name: "small gap still full step", delta: 0.2, step: 1, want: 1},
		{name: "half degree step", delta: -4, step: 0.5, want: -0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (FixedStep{}).Step(tc.delta, tc.step); got != tc.want {
				t.Fatalf("Step(%v, %v) = %v, want %v", tc.delta, tc.step, got, tc.want)
			}
		})
	}
}

func TestProportionalStep_CappedAtStepSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		delta float64
		step  float64
		want  float64
	}{
		{name: "large gap capped", delta: 5, step: 2, want: 2},
		{name: "small gap lands exactly", delta: 0.7, step: 2, want: 0.7},
		{name: "negative gap capped", delta: -5, step: 2, want: -2},
		{name: "negative small gap", delta: -0.3, step: 2, want: -0.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := (ProportionalStep{}).Step(tc.delta, tc.step); got != tc.want {
				t.Fatalf("Step(%v, %v) = %v, want %v", tc.delta, tc.step, got, tc.want)
			}
		})
	}
}

func TestPolicyFor_MapsConfigNames(t *testing.T) {
	t.Parallel()

	if _, ok := policyFor(config.PolicyFixed).(FixedStep); !ok {
		t.Fatalf("expected FixedStep for %q", config.PolicyFixed)
	}
	if _, ok := policyFor(config.PolicyProportional).(ProportionalStep); !ok {
		t.Fatalf("expected ProportionalStep for %q", config.PolicyProportional)
	}
	if _, ok := policyFor("").(FixedStep); !ok {
		t.Fatalf("expected FixedStep fallback for empty name")
	}
}
