package models

import "time"

// Reading is a single sensor temperature observation. It lives for one tick
// of the control loop and is never persisted.
type Reading struct {
	DeviceID    string    `json:"device_id"`
	Temperature float64   `json:"temperature"` // degrees, vendor units
	ObservedAt  time.Time `json:"observed_at"`
}
