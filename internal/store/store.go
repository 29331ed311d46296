package store

import (
	"context"
	"errors"
	"time"

	"burza/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// statusChangeTime returns the updatedAt stamp for a status change, kept
// strictly after createdAt even when both land in the same millisecond.
func statusChangeTime(createdAt time.Time) time.Time {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if !now.After(createdAt) {
		now = createdAt.Add(time.Millisecond)
	}
	return now
}

// TableStore holds one document per grid cell. UpdateTables applies the same
// patch to every id as a single atomic unit; the remaining writes carry no
// cross-document guarantees.
type TableStore interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	GetTable(ctx context.Context, id string) (*models.Table, error)
	PutTable(ctx context.Context, table models.Table) error
	InsertTables(ctx context.Context, tables []models.Table) error
	UpdateTable(ctx context.Context, id string, patch models.TablePatch) error
	UpdateTables(ctx context.Context, ids []string, patch models.TablePatch) error
	ResetTables(ctx context.Context) error
	DeleteAllTables(ctx context.Context) (int64, error)
}

// ReservationStore holds one document per booking request.
type ReservationStore interface {
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, id string, status string) error
	DeleteReservation(ctx context.Context, id string) error
	DeleteAllReservations(ctx context.Context) (int64, error)
}

// Store combines both collections behind one handle so the persistent and
// the in-process implementation can be swapped at startup.
type Store interface {
	TableStore
	ReservationStore
	Close(ctx context.Context) error
}
