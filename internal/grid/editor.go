package grid

import (
	"context"
	"errors"
	"fmt"

	"burza/internal/models"
	"burza/internal/store"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidStatus  = errors.New("status not allowed in editor")
	ErrEmptySelection = errors.New("selection is empty")
	ErrWrongSelection = errors.New("selection kind does not match operation")
	ErrOutOfBounds    = errors.New("coordinate outside the grid")
)

// Editor applies grid-editing operations against the table store.
type Editor struct {
	tables store.TableStore
	width  int
	height int
	logger *zerolog.Logger
}

func NewEditor(tables store.TableStore, width, height int, logger *zerolog.Logger) *Editor {
	return &Editor{tables: tables, width: width, height: height, logger: logger}
}

// SetStatus rewrites one table's status and nothing else; the table's
// reservationId is left untouched.
func (e *Editor) SetStatus(ctx context.Context, id string, status string) error {
	if !models.IsEditorStatus(status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return e.tables.UpdateTable(ctx, id, models.TablePatch{Status: status})
}

// CreateTable adds a new table at an empty coordinate.
func (e *Editor) CreateTable(ctx context.Context, c Coord, status string) (*models.Table, error) {
	if !models.IsEditorStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	if c.X < 0 || c.X >= e.width || c.Y < 0 || c.Y >= e.height {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, CellLabel(c))
	}

	table := models.Table{ID: c.ID(), X: c.X, Y: c.Y, Status: status}
	if err := e.tables.PutTable(ctx, table); err != nil {
		return nil, err
	}
	return &table, nil
}

// ApplyBulkStatus atomically sets the status of every selected table and
// clears the selection afterward.
func (e *Editor) ApplyBulkStatus(ctx context.Context, sel *Selection, status string) error {
	if !models.IsEditorStatus(status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	if sel.Kind != SelectTables {
		return ErrWrongSelection
	}
	if len(sel.TableIDs) == 0 {
		return ErrEmptySelection
	}

	if err := e.tables.UpdateTables(ctx, sel.TableIDs, models.TablePatch{Status: status}); err != nil {
		return err
	}

	e.logger.Info().Int("count", len(sel.TableIDs)).Str("status", status).Msg("bulk status applied")
	sel.Clear()
	return nil
}

// ApplyBulkCreate creates one table per selected empty coordinate. The writes
// are independent; a failure aborts the remainder but keeps what was created.
func (e *Editor) ApplyBulkCreate(ctx context.Context, sel *Selection, status string) ([]models.Table, error) {
	if !models.IsEditorStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	if sel.Kind != SelectEmptyCells {
		return nil, ErrWrongSelection
	}
	if len(sel.Coords) == 0 {
		return nil, ErrEmptySelection
	}

	created := make([]models.Table, 0, len(sel.Coords))
	for _, c := range sel.Coords {
		table, err := e.CreateTable(ctx, c, status)
		if err != nil {
			return created, fmt.Errorf("create table at %s: %w", CellLabel(c), err)
		}
		created = append(created, *table)
	}

	e.logger.Info().Int("count", len(created)).Str("status", status).Msg("bulk create applied")
	sel.Clear()
	return created, nil
}

// InitializeGrid fills the whole board with available tables.
func (e *Editor) InitializeGrid(ctx context.Context) (int, error) {
	tables := make([]models.Table, 0, e.width*e.height)
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			tables = append(tables, models.Table{
				ID:     models.TableID(x, y),
				X:      x,
				Y:      y,
				Status: models.TableAvailable,
			})
		}
	}
	if err := e.tables.InsertTables(ctx, tables); err != nil {
		return 0, err
	}
	e.logger.Info().Int("count", len(tables)).Msg("grid initialized")
	return len(tables), nil
}
