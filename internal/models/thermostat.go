package models

import (
	"math"
	"time"
)

// Thermostat operating modes as reported by the vendor.
const (
	ModeOff  = "OFF"
	ModeHeat = "HEAT"
	ModeCool = "COOL"
	ModeAuto = "AUTO"
)

// ThermostatState is a snapshot of the thermostat as the vendor reports it.
// Daikin keeps separate heat and cool setpoints; the one the engine adjusts
// depends on the active mode.
type ThermostatState struct {
	DeviceID     string    `json:"device_id"`
	Mode         string    `json:"mode"` // OFF | HEAT | COOL | AUTO
	HeatSetpoint float64   `json:"heat_setpoint"`
	CoolSetpoint float64   `json:"cool_setpoint"`
	IndoorTemp   float64   `json:"indoor_temp"`
	RetrievedAt  time.Time `json:"retrieved_at"`
}

// ActiveSetpoint returns the setpoint the current mode acts on, which
// register it is (ModeHeat or ModeCool), and whether the mode supports
// adjustment at all. In AUTO the unit follows whichever setpoint sits closer
// to its own indoor reading.
func (s ThermostatState) ActiveSetpoint() (float64, string, bool) {
	switch s.Mode {
	case ModeHeat:
		return s.HeatSetpoint, ModeHeat, true
	case ModeCool:
		return s.CoolSetpoint, ModeCool, true
	case ModeAuto:
		if math.Abs(s.HeatSetpoint-s.IndoorTemp) <= math.Abs(s.CoolSetpoint-s.IndoorTemp) {
			return s.HeatSetpoint, ModeHeat, true
		}
		return s.CoolSetpoint, ModeCool, true
	default:
		return 0, "", false
	}
}
