package grid

// SelectionKind tags what a selection currently holds. Making the kind
// explicit keeps the occupied/empty sets mutually exclusive by construction
// instead of by convention.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectTables
	SelectEmptyCells
)

// Selection is the editor's current multi-select: either a set of existing
// table ids or a set of empty coordinates, never both.
type Selection struct {
	Kind     SelectionKind `json:"kind"`
	TableIDs []string      `json:"tableIds,omitempty"`
	Coords   []Coord       `json:"coords,omitempty"`
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.Kind = SelectNone
	s.TableIDs = nil
	s.Coords = nil
}

// Len returns the number of selected cells.
func (s *Selection) Len() int {
	if s.Kind == SelectEmptyCells {
		return len(s.Coords)
	}
	return len(s.TableIDs)
}

// ToggleTable flips membership of an existing table. Toggling while an
// empty-cell selection is active replaces that selection.
func (s *Selection) ToggleTable(id string) {
	if s.Kind != SelectTables {
		s.Clear()
		s.Kind = SelectTables
	}
	for i, existing := range s.TableIDs {
		if existing == id {
			s.TableIDs = append(s.TableIDs[:i], s.TableIDs[i+1:]...)
			if len(s.TableIDs) == 0 {
				s.Clear()
			}
			return
		}
	}
	s.TableIDs = append(s.TableIDs, id)
}

// ToggleEmpty flips membership of an empty coordinate, replacing a table
// selection if one is active.
func (s *Selection) ToggleEmpty(c Coord) {
	if s.Kind != SelectEmptyCells {
		s.Clear()
		s.Kind = SelectEmptyCells
	}
	for i, existing := range s.Coords {
		if existing == c {
			s.Coords = append(s.Coords[:i], s.Coords[i+1:]...)
			if len(s.Coords) == 0 {
				s.Clear()
			}
			return
		}
	}
	s.Coords = append(s.Coords, c)
}
