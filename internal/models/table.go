package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Table statuses. "reserved" and "pending" are driven by the reservation
// lifecycle; the remaining four are the editor choices.
const (
	TableAvailable = "available"
	TableReserved  = "reserved"
	TablePermanent = "permanent"
	TableEntrance  = "entrance"
	TablePending   = "pending"
	TableBlocked   = "blocked"
)

// Table is one cell of the market grid. ReservationID is set only while a
// pending or approved reservation references the table; it is stored as an
// absent field otherwise, never as an empty string.
type Table struct {
	ID            string `json:"id" bson:"_id"`
	X             int    `json:"x" bson:"x"`
	Y             int    `json:"y" bson:"y"`
	Status        string `json:"status" bson:"status"`
	ReservationID string `json:"reservationId,omitempty" bson:"reservationId,omitempty"`
}

// TableID builds the deterministic document id for a coordinate.
func TableID(x, y int) string {
	return fmt.Sprintf("%d-%d", x, y)
}

// ParseTableID splits an "x-y" id back into coordinates.
func ParseTableID(id string) (x, y int, err error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid table id %q", id)
	}
	x, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid table id %q", id)
	}
	y, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid table id %q", id)
	}
	return x, y, nil
}

// IsEditorStatus reports whether a status may be assigned from the editor.
func IsEditorStatus(status string) bool {
	switch status {
	case TableAvailable, TableBlocked, TablePermanent, TableEntrance:
		return true
	}
	return false
}

// TablePatch is a partial update applied to one or more tables. An empty
// Status leaves the status untouched. ClearReservationID removes the
// reservationId field entirely so that absent and empty stay distinguishable.
type TablePatch struct {
	Status             string
	ReservationID      string
	ClearReservationID bool
}

// IsZero reports whether the patch would change nothing.
func (p TablePatch) IsZero() bool {
	return p.Status == "" && p.ReservationID == "" && !p.ClearReservationID
}
