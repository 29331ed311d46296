package store

import (
	"context"
	"testing"
	"time"

	"burza/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTables(t *testing.T, s *Memory, tables ...models.Table) {
	t.Helper()
	require.NoError(t, s.InsertTables(context.Background(), tables))
}

func TestPutAndGetTableRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	table := models.Table{ID: "3-4", X: 3, Y: 4, Status: models.TableAvailable}
	require.NoError(t, s.PutTable(ctx, table))

	got, err := s.GetTable(ctx, "3-4")
	require.NoError(t, err)
	assert.Equal(t, table, *got)

	_, err = s.GetTable(ctx, "9-9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTablesSorted(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	seedTables(t, s,
		models.Table{ID: "5-1", X: 5, Y: 1, Status: models.TableAvailable},
		models.Table{ID: "0-0", X: 0, Y: 0, Status: models.TableAvailable},
		models.Table{ID: "2-0", X: 2, Y: 0, Status: models.TableBlocked},
	)

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "0-0", tables[0].ID)
	assert.Equal(t, "2-0", tables[1].ID)
	assert.Equal(t, "5-1", tables[2].ID)
}

func TestUpdateTableClearsReservationID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	seedTables(t, s, models.Table{ID: "1-1", X: 1, Y: 1, Status: models.TableReserved, ReservationID: "r1"})

	err := s.UpdateTable(ctx, "1-1", models.TablePatch{Status: models.TableAvailable, ClearReservationID: true})
	require.NoError(t, err)

	got, err := s.GetTable(ctx, "1-1")
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)
	assert.Empty(t, got.ReservationID)
}

func TestUpdateTablesAllOrNothing(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	seedTables(t, s,
		models.Table{ID: "1-1", X: 1, Y: 1, Status: models.TableAvailable},
		models.Table{ID: "2-1", X: 2, Y: 1, Status: models.TableAvailable},
	)

	err := s.UpdateTables(ctx, []string{"1-1", "2-1", "3-1"}, models.TablePatch{Status: models.TableReserved})
	assert.ErrorIs(t, err, ErrNotFound)

	// Nothing may have been written.
	got, err := s.GetTable(ctx, "1-1")
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)

	err = s.UpdateTables(ctx, []string{"1-1", "2-1"}, models.TablePatch{Status: models.TableReserved, ReservationID: "r1"})
	require.NoError(t, err)

	for _, id := range []string{"1-1", "2-1"} {
		got, err := s.GetTable(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.TableReserved, got.Status)
		assert.Equal(t, "r1", got.ReservationID)
	}
}

func TestResetTables(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	seedTables(t, s,
		models.Table{ID: "1-1", X: 1, Y: 1, Status: models.TableReserved, ReservationID: "r1"},
		models.Table{ID: "2-1", X: 2, Y: 1, Status: models.TableEntrance},
	)

	require.NoError(t, s.ResetTables(ctx))

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	for _, table := range tables {
		assert.Equal(t, models.TableBlocked, table.Status)
		assert.Empty(t, table.ReservationID)
	}
}

func TestReservationLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	reservation := &models.Reservation{
		ID:        "100",
		TableIDs:  []string{"1-1"},
		FirstName: "Test",
		LastName:  "User",
		Phone:     "+420 123 456 789",
		Email:     "test@example.com",
		Status:    models.ReservationPending,
	}
	require.NoError(t, s.CreateReservation(ctx, reservation))
	assert.False(t, reservation.CreatedAt.IsZero())

	require.NoError(t, s.UpdateReservationStatus(ctx, "100", models.ReservationApproved))

	got, err := s.GetReservation(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationApproved, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.NoError(t, s.DeleteReservation(ctx, "100"))
	_, err = s.GetReservation(ctx, "100")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusChangeTimeStaysAfterCreation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	assert.True(t, statusChangeTime(now).After(now),
		"same-millisecond status change still moves updatedAt forward")
	assert.True(t, statusChangeTime(now.Add(-time.Hour)).After(now.Add(-time.Hour)))
}

func TestDeleteAllReservations(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.CreateReservation(ctx, &models.Reservation{ID: id, Status: models.ReservationPending}))
	}

	count, err := s.DeleteAllReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	reservations, err := s.ListReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, reservations)
}
