package service

import (
	"context"
	"time"

	"roombridge/internal/config"
	"roombridge/internal/logger"
	"roombridge/internal/models"
	"roombridge/internal/repository"
)

// SensorClient reads the ambient temperature the control loop steers by.
type SensorClient interface {
	GetTemperature(ctx context.Context, deviceID string) (models.Reading, error)
}

// ThermostatClient reads and writes the thermostat the loop compensates.
type ThermostatClient interface {
	GetState(ctx context.Context, deviceID string) (models.ThermostatState, error)
	SetSetpoints(ctx context.Context, deviceID string, heat, cool float64, overrideMinutes int) error
}

// Control runs the periodic adjustment loop and accepts operator overrides.
// Run blocks until ctx is canceled or an unrecoverable auth failure occurs.
type Control interface {
	Run(ctx context.Context, tick time.Duration) error
	RunOnce(ctx context.Context) error
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	Paused() bool
}

// Monitoring exposes the last-tick snapshot for the status endpoint.
type Monitoring interface {
	GetStatus(ctx context.Context) (models.BridgeStatus, error)
}

// EventLog exposes the append-only tick journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.TickEvent, error)
}

// Authorization issues and verifies operator tokens for the ops API.
type Authorization interface {
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (string, error)
	Enabled() bool
}

// LogFilter supports journal filtering by time range and outcome.
type LogFilter struct {
	From    time.Time
	To      time.Time
	Outcome string
}

type Service struct {
	Control
	Monitoring
	EventLog
	Authorization
}

// NewService wires the repositories and vendor clients into concrete
// services. cfg.ThermostatDeviceID must already be resolved by the caller.
func NewService(cfg config.Config, repos *repository.Repository, sensor SensorClient, thermostat ThermostatClient, log *logger.Logger) *Service {
	ctrl := NewControlService(cfg, repos.StatusRepo, repos.EventRepo, sensor, thermostat, log.Named("control"))
	return &Service{
		Control:       ctrl,
		Monitoring:    NewMonitoringService(repos.StatusRepo, ctrl),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(cfg.Operator),
	}
}
