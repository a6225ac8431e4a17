package repository

import (
	"context"
	"database/sql"
	"time"

	"roombridge/internal/models"
)

// StatusRepo persists the single last-tick snapshot the ops API serves.
type StatusRepo interface {
	Save(ctx context.Context, s models.BridgeStatus) error
	Load(ctx context.Context) (models.BridgeStatus, error)
}

// EventRepo is the append-only journal of tick outcomes.
type EventRepo interface {
	Append(ctx context.Context, e models.TickEvent) error
	List(ctx context.Context, from, to time.Time, outcome string) ([]models.TickEvent, error)
}

type Repository struct {
	StatusRepo StatusRepo
	EventRepo  EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StatusRepo: NewStatusSQLite(db),
		EventRepo:  NewEventSQLite(db),
	}
}
