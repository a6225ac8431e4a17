package repository

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"roombridge/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStatusSave_Upserts(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewStatusSQLite(db)

	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO bridge_status").
		WithArgs(
			bridgeStatusRowID,
			models.OutcomeApplied,
			"",
			69.0,
			models.ModeHeat,
			70.0,
			71.0,
			false,
			updated,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Save(testCtx(t), models.BridgeStatus{
		Outcome:     models.OutcomeApplied,
		SensorTemp:  69.0,
		Mode:        models.ModeHeat,
		Setpoint:    70.0,
		NewSetpoint: 71.0,
		UpdatedAt:   updated,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStatusSave_SetsZeroTimestamp(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewStatusSQLite(db)

	mock.ExpectExec("INSERT INTO bridge_status").
		WithArgs(
			bridgeStatusRowID,
			models.OutcomeSkipped,
			models.SkipSensorFailure,
			0.0, "", 0.0, 0.0, false,
			sqlmock.AnyArg(), // repo fills UTC now
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Save(testCtx(t), models.BridgeStatus{
		Outcome: models.OutcomeSkipped,
		Reason:  models.SkipSensorFailure,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestStatusLoad(t *testing.T) {
	t.Parallel()

	t.Run("existing row", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer func() { _ = db.Close() }()

		repo := NewStatusSQLite(db)

		updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("X", -3*3600))
		rows := sqlmock.NewRows([]string{
			"id", "outcome", "reason", "sensor_temp", "mode", "setpoint", "new_setpoint", "paused", "updated_at",
		}).AddRow(1, models.OutcomeNoop, "", 72.4, models.ModeCool, 76.0, 76.0, false, updated)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, outcome, reason, sensor_temp, mode, setpoint, new_setpoint, paused, updated_at")).
			WithArgs(bridgeStatusRowID).
			WillReturnRows(rows)

		got, err := repo.Load(testCtx(t))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.ID != 1 || got.Outcome != models.OutcomeNoop || got.SensorTemp != 72.4 {
			t.Errorf("unexpected status: %+v", got)
		}
		if got.UpdatedAt.Location() != time.UTC {
			t.Errorf("UpdatedAt must be normalized to UTC, got %v", got.UpdatedAt.Location())
		}
	})

	t.Run("no row yet", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer func() { _ = db.Close() }()

		repo := NewStatusSQLite(db)

		mock.ExpectQuery("SELECT id, outcome").
			WithArgs(bridgeStatusRowID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "outcome", "reason", "sensor_temp", "mode", "setpoint", "new_setpoint", "paused", "updated_at",
			}))

		got, err := repo.Load(testCtx(t))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.ID != 0 {
			t.Errorf("expected zero status for empty table, got %+v", got)
		}
	})

	t.Run("db error", func(t *testing.T) {
		t.Parallel()

		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		defer func() { _ = db.Close() }()

		repo := NewStatusSQLite(db)

		mock.ExpectQuery("SELECT id, outcome").
			WillReturnError(errors.New("locked"))

		if _, err := repo.Load(testCtx(t)); err == nil || !strings.Contains(err.Error(), "locked") {
			t.Fatalf("expected db error, got %v", err)
		}
	})
}
