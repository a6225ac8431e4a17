package service

import (
	"context"
	"time"

	"roombridge/internal/models"
	"roombridge/internal/repository"
)

// pauseStater reports the live pause flag; the persisted snapshot only
// reflects it as of the last tick.
type pauseStater interface {
	Paused() bool
}

type MonitoringService struct {
	statusRepo repository.StatusRepo
	control    pauseStater
}

func NewMonitoringService(statusRepo repository.StatusRepo, control pauseStater) *MonitoringService {
	return &MonitoringService{statusRepo: statusRepo, control: control}
}

// GetStatus returns the latest persisted tick snapshot. Before the first
// tick completes it returns a baseline IDLE snapshot.
func (s *MonitoringService) GetStatus(ctx context.Context) (models.BridgeStatus, error) {
	st, err := s.statusRepo.Load(ctx)
	if err != nil {
		return models.BridgeStatus{}, err
	}
	if st.ID == 0 {
		st = s.baselineStatus()
	}
	st.Paused = s.control.Paused()
	st.UpdatedAt = toUTC(st.UpdatedAt)
	return st, nil
}

// baselineStatus is the pre-first-tick snapshot. The schema enforces a
// single status row with id=1.
func (s *MonitoringService) baselineStatus() models.BridgeStatus {
	return models.BridgeStatus{
		ID:        1,
		Outcome:   models.OutcomeIdle,
		UpdatedAt: time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
