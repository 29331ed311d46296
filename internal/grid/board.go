package grid

import (
	"fmt"

	"burza/internal/models"
)

// Coord addresses one cell of the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ID returns the deterministic table id for the coordinate.
func (c Coord) ID() string {
	return models.TableID(c.X, c.Y)
}

// CellLabel renders the human-readable dialog label: letter column starting
// at 'A' plus 1-based row, e.g. (0,0) -> "A1".
func CellLabel(c Coord) string {
	return fmt.Sprintf("%c%d", rune('A'+c.X), c.Y+1)
}

// Board is a read-only snapshot of the grid used to classify cells as
// occupied or empty during selection gestures.
type Board struct {
	width  int
	height int
	cells  map[Coord]models.Table
}

// NewBoard indexes the given tables on a width x height grid.
func NewBoard(width, height int, tables []models.Table) *Board {
	cells := make(map[Coord]models.Table, len(tables))
	for _, t := range tables {
		cells[Coord{X: t.X, Y: t.Y}] = t
	}
	return &Board{width: width, height: height, cells: cells}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// At returns the table occupying the coordinate, if any.
func (b *Board) At(c Coord) (models.Table, bool) {
	t, ok := b.cells[c]
	return t, ok
}

// InBounds reports whether the coordinate lies on the board.
func (b *Board) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < b.width && c.Y >= 0 && c.Y < b.height
}
