package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"roombridge/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const sqliteTimestampLayout = "2006-01-02 15:04:05"

// Append inserts a journal entry. Missing EventID or OccurredAt are filled.
func (r *EventSQLite) Append(ctx context.Context, e models.TickEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tick_events (id, occurred_at, outcome, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.Format(sqliteTimestampLayout),
		strings.ToUpper(strings.TrimSpace(e.Outcome)),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns events inside [from, to] (inclusive), optionally filtered by
// outcome, ordered oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, outcome string) ([]models.TickEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if outcome = strings.ToUpper(strings.TrimSpace(outcome)); outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, outcome)
	}

	q := `SELECT id, occurred_at, outcome, message, meta FROM tick_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []models.TickEvent
	for rows.Next() {
		var (
			e       models.TickEvent
			metaStr sql.NullString
		)
		if err := rows.Scan(&e.EventID, &e.OccurredAt, &e.Outcome, &e.Description, &metaStr); err != nil {
			return nil, err
		}
		e.OccurredAt = e.OccurredAt.UTC()
		if metaStr.Valid && metaStr.String != "" {
			var meta any
			if err := json.Unmarshal([]byte(metaStr.String), &meta); err == nil {
				e.Metadata = meta
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
