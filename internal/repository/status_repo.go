package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"roombridge/internal/models"
)

type StatusSQLite struct {
	db *sql.DB
}

func NewStatusSQLite(db *sql.DB) *StatusSQLite {
	return &StatusSQLite{db: db}
}

const (
	bridgeStatusRowID = 1

	upsertStatusSQL = `
		INSERT INTO bridge_status (id, outcome, reason, sensor_temp, mode, setpoint, new_setpoint, paused, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			outcome=excluded.outcome,
			reason=excluded.reason,
			sensor_temp=excluded.sensor_temp,
			mode=excluded.mode,
			setpoint=excluded.setpoint,
			new_setpoint=excluded.new_setpoint,
			paused=excluded.paused,
			updated_at=excluded.updated_at
	`

	selectStatusSQL = `
		SELECT id, outcome, reason, sensor_temp, mode, setpoint, new_setpoint, paused, updated_at
		FROM bridge_status WHERE id=?
	`
)

// Save upserts the bridge_status row (id always 1).
func (r *StatusSQLite) Save(ctx context.Context, s models.BridgeStatus) error {
	tsUTC := s.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertStatusSQL,
		bridgeStatusRowID,
		s.Outcome,
		s.Reason,
		s.SensorTemp,
		s.Mode,
		s.Setpoint,
		s.NewSetpoint,
		s.Paused,
		tsUTC,
	)
	return err
}

// Load fetches the single bridge_status row (id=1). A missing row yields a
// zero-value status, not an error.
func (r *StatusSQLite) Load(ctx context.Context) (models.BridgeStatus, error) {
	row := r.db.QueryRowContext(ctx, selectStatusSQL, bridgeStatusRowID)

	var s models.BridgeStatus
	if err := row.Scan(
		&s.ID,
		&s.Outcome,
		&s.Reason,
		&s.SensorTemp,
		&s.Mode,
		&s.Setpoint,
		&s.NewSetpoint,
		&s.Paused,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BridgeStatus{}, nil // no tick recorded yet
		}
		return models.BridgeStatus{}, err
	}

	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
