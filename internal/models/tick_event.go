package models

import "time"

// Tick outcomes recorded in the journal and reported over the API.
const (
	OutcomeIdle    = "IDLE" // no tick has run yet
	OutcomeApplied = "APPLIED"
	OutcomeNoop    = "NOOP"
	OutcomeSkipped = "SKIPPED"
	OutcomeError   = "ERROR"
	OutcomePaused  = "PAUSED"  // operator override markers, not tick results
	OutcomeResumed = "RESUMED"
)

// Skip reasons attached to SKIPPED ticks.
const (
	SkipModeOff          = "mode_off"
	SkipModeIncompatible = "mode_incompatible"
	SkipSensorFailure    = "sensor_failure"
	SkipThermostatError  = "thermostat_error"
	SkipOutsideWindow    = "outside_window"
	SkipPaused           = "paused"
)

// TickEvent is one journal entry describing what a control tick did.
type TickEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Outcome     string    `json:"outcome"` // APPLIED | NOOP | SKIPPED | ERROR
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
