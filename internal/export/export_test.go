package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"burza/internal/models"
	"burza/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExporter(t *testing.T) (*Exporter, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	logger := zerolog.Nop()
	return NewExporter(mem, t.TempDir(), &logger), mem
}

func seedReservation(t *testing.T, mem *store.Memory, id string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, mem.CreateReservation(context.Background(), &models.Reservation{
		ID:        id,
		TableIDs:  []string{"1-1", "2-1"},
		FirstName: "Test",
		LastName:  "User",
		Phone:     "+420 123 456 789",
		Email:     "test@example.com",
		Status:    models.ReservationPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}))
}

func TestWorkbookRowsNewestFirst(t *testing.T) {
	exporter, mem := newExporter(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	seedReservation(t, mem, "old", base)
	seedReservation(t, mem, "new", base.Add(time.Hour))

	f, err := exporter.Workbook(context.Background())
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Rezervace", "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	first, err := f.GetCellValue("Rezervace", "A2")
	require.NoError(t, err)
	assert.Equal(t, "new", first)

	tables, err := f.GetCellValue("Rezervace", "H2")
	require.NoError(t, err)
	assert.Equal(t, "1-1, 2-1", tables)

	count, err := f.GetCellValue("Rezervace", "G2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestSaveWritesFile(t *testing.T) {
	exporter, mem := newExporter(t)
	seedReservation(t, mem, "only", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	path, err := exporter.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))
	assert.FileExists(t, path)
}
