package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"burza/internal/models"
)

// Memory is the ephemeral in-process store used when no Mongo URI is
// configured. It mirrors the document-store semantics, including the
// distinction between a cleared and an empty reservationId.
type Memory struct {
	mu           sync.RWMutex
	tables       map[string]models.Table
	reservations map[string]models.Reservation
}

func NewMemory() *Memory {
	return &Memory{
		tables:       make(map[string]models.Table),
		reservations: make(map[string]models.Reservation),
	}
}

func (s *Memory) Close(ctx context.Context) error { return nil }

func applyPatch(table *models.Table, patch models.TablePatch) {
	if patch.Status != "" {
		table.Status = patch.Status
	}
	if patch.ReservationID != "" {
		table.ReservationID = patch.ReservationID
	}
	if patch.ClearReservationID {
		table.ReservationID = ""
	}
}

func (s *Memory) ListTables(ctx context.Context) ([]models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]models.Table, 0, len(s.tables))
	for _, t := range s.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Y == tables[j].Y {
			return tables[i].X < tables[j].X
		}
		return tables[i].Y < tables[j].Y
	})
	return tables, nil
}

func (s *Memory) GetTable(ctx context.Context, id string) (*models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[id]
	if !ok {
		return nil, fmt.Errorf("table %s: %w", id, ErrNotFound)
	}
	return &table, nil
}

func (s *Memory) PutTable(ctx context.Context, table models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[table.ID] = table
	return nil
}

func (s *Memory) InsertTables(ctx context.Context, tables []models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tables {
		s.tables[t.ID] = t
	}
	return nil
}

func (s *Memory) UpdateTable(ctx context.Context, id string, patch models.TablePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[id]
	if !ok {
		return fmt.Errorf("table %s: %w", id, ErrNotFound)
	}
	applyPatch(&table, patch)
	s.tables[id] = table
	return nil
}

// UpdateTables is all-or-nothing: every id is checked before any table is
// written.
func (s *Memory) UpdateTables(ctx context.Context, ids []string, patch models.TablePatch) error {
	if len(ids) == 0 || patch.IsZero() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.tables[id]; !ok {
			return fmt.Errorf("table %s: %w", id, ErrNotFound)
		}
	}
	for _, id := range ids {
		table := s.tables[id]
		applyPatch(&table, patch)
		s.tables[id] = table
	}
	return nil
}

func (s *Memory) ResetTables(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, table := range s.tables {
		table.Status = models.TableBlocked
		table.ReservationID = ""
		s.tables[id] = table
	}
	return nil
}

func (s *Memory) DeleteAllTables(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := int64(len(s.tables))
	s.tables = make(map[string]models.Table)
	return count, nil
}

func (s *Memory) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservations := make([]models.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		reservations = append(reservations, r)
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (s *Memory) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	return &reservation, nil
}

func (s *Memory) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	if reservation.UpdatedAt.IsZero() {
		reservation.UpdatedAt = now
	}

	s.reservations[reservation.ID] = *reservation
	return nil
}

func (s *Memory) UpdateReservationStatus(ctx context.Context, id string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	reservation.Status = status
	reservation.UpdatedAt = statusChangeTime(reservation.CreatedAt)
	s.reservations[id] = reservation
	return nil
}

func (s *Memory) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	delete(s.reservations, id)
	return nil
}

func (s *Memory) DeleteAllReservations(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := int64(len(s.reservations))
	s.reservations = make(map[string]models.Reservation)
	return count, nil
}
