package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombridge/internal/models"
)

type stubPauser struct{ paused bool }

func (s stubPauser) Paused() bool { return s.paused }

func TestMonitoringService_GetStatus_ReturnsPersistedSnapshot(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*3600)
	repo := &fakeStatusRepo{loadResp: models.BridgeStatus{
		ID:          1,
		Outcome:     models.OutcomeApplied,
		SensorTemp:  69,
		Mode:        models.ModeHeat,
		Setpoint:    70,
		NewSetpoint: 71,
		UpdatedAt:   time.Date(2026, 1, 10, 12, 0, 0, 0, loc),
	}}
	svc := NewMonitoringService(repo, stubPauser{})

	st, err := svc.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Outcome != models.OutcomeApplied || st.NewSetpoint != 71 {
		t.Fatalf("unexpected snapshot: %+v", st)
	}
	if st.UpdatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", st.UpdatedAt.Location())
	}
}

func TestMonitoringService_GetStatus_BaselineBeforeFirstTick(t *testing.T) {
	t.Parallel()

	svc := NewMonitoringService(&fakeStatusRepo{}, stubPauser{})

	st, err := svc.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.ID != 1 || st.Outcome != models.OutcomeIdle {
		t.Fatalf("expected baseline IDLE snapshot, got %+v", st)
	}
}

func TestMonitoringService_GetStatus_LivePauseFlagWins(t *testing.T) {
	t.Parallel()

	// Pause happened after the last tick; the persisted row still says
	// running.
	repo := &fakeStatusRepo{loadResp: models.BridgeStatus{ID: 1, Outcome: models.OutcomeNoop, Paused: false}}
	svc := NewMonitoringService(repo, stubPauser{paused: true})

	st, err := svc.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Paused {
		t.Fatalf("expected live pause flag to override the snapshot")
	}
}

func TestMonitoringService_GetStatus_RepoError(t *testing.T) {
	t.Parallel()

	svc := NewMonitoringService(&fakeStatusRepo{loadErr: errors.New("db down")}, stubPauser{})
	if _, err := svc.GetStatus(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
