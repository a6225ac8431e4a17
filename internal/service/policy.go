package service

import (
	"math"

	"roombridge/internal/config"
)

// SetpointPolicy decides how far one tick moves the setpoint toward the
// desired temperature. delta is desired minus sensor reading; the returned
// value carries delta's sign and is bounded by stepSize.
type SetpointPolicy interface {
	Step(delta, stepSize float64) float64
}

// FixedStep always moves a full step in the direction of the delta.
type FixedStep struct{}

func (FixedStep) Step(delta, stepSize float64) float64 {
	return math.Copysign(stepSize, delta)
}

// ProportionalStep moves by the delta itself, capped at stepSize, so the
// setpoint lands on target instead of oscillating around it when the gap is
// smaller than a full step.
type ProportionalStep struct{}

func (ProportionalStep) Step(delta, stepSize float64) float64 {
	return math.Copysign(math.Min(math.Abs(delta), stepSize), delta)
}

// policyFor maps the configured policy name onto an implementation. Unknown
// names fall back to FixedStep; config validation rejects them earlier.
func policyFor(name string) SetpointPolicy {
	if name == config.PolicyProportional {
		return ProportionalStep{}
	}
	return FixedStep{}
}
