package grid

// Gesture tracks one drag-rectangle selection from press to release. The
// anchor cell's kind decides whether the rectangle collects occupied tables
// or empty coordinates; the selection is recomputed from scratch on every
// move so no cell toggling survives past the final rectangle.
type Gesture struct {
	board    *Board
	anchor   Coord
	occupied bool
	active   bool
}

// NewGesture prepares a gesture over the given board snapshot.
func NewGesture(board *Board) *Gesture {
	return &Gesture{board: board}
}

// Begin records the anchor cell and its kind. An empty anchor immediately
// selects itself; an occupied anchor clears the selection until the first
// move, which matches click-toggle still being possible on occupied cells.
func (g *Gesture) Begin(anchor Coord) Selection {
	g.anchor = anchor
	_, g.occupied = g.board.At(anchor)
	g.active = true
	if g.occupied {
		return Selection{}
	}
	return g.rectangle(anchor)
}

// Extend recomputes the inclusive rectangle between the anchor and the
// current cell. A no-op when the gesture was never started.
func (g *Gesture) Extend(current Coord) Selection {
	if !g.active {
		return Selection{}
	}
	return g.rectangle(current)
}

// End finishes the gesture; the last rectangle stays selected.
func (g *Gesture) End() {
	g.active = false
}

// Active reports whether a drag is in progress.
func (g *Gesture) Active() bool { return g.active }

func (g *Gesture) rectangle(current Coord) Selection {
	x1, x2 := g.anchor.X, current.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	y1, y2 := g.anchor.Y, current.Y
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	var sel Selection
	if g.occupied {
		sel.Kind = SelectTables
	} else {
		sel.Kind = SelectEmptyCells
	}

	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			c := Coord{X: x, Y: y}
			table, ok := g.board.At(c)
			if g.occupied && ok {
				sel.TableIDs = append(sel.TableIDs, table.ID)
			}
			if !g.occupied && !ok {
				sel.Coords = append(sel.Coords, c)
			}
		}
	}
	if sel.Len() == 0 {
		sel.Clear()
	}
	return sel
}
