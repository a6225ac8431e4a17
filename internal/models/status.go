package models

import "time"

// BridgeStatus is the last-tick snapshot the monitoring API serves. It is an
// observational mirror of the control loop; the engine never reads it back
// when deciding.
type BridgeStatus struct {
	ID          int       `json:"id"`
	Outcome     string    `json:"outcome"`               // APPLIED | NOOP | SKIPPED | ERROR
	Reason      string    `json:"reason,omitempty"`      // skip reason or error summary
	SensorTemp  float64   `json:"sensor_temp,omitempty"` // last sensor reading
	Mode        string    `json:"mode,omitempty"`
	Setpoint    float64   `json:"setpoint,omitempty"`     // setpoint before the tick
	NewSetpoint float64   `json:"new_setpoint,omitempty"` // setpoint after the tick
	Paused      bool      `json:"paused"`
	UpdatedAt   time.Time `json:"updated_at"`
}
