package reservation

import "errors"

var (
	// ErrNoTablesSelected means a submit arrived without any table ids.
	ErrNoTablesSelected = errors.New("no tables selected")

	// ErrInvalidReservation wraps contact-detail validation failures.
	ErrInvalidReservation = errors.New("invalid reservation")

	// ErrAlreadyDecided means the reservation left the pending state and the
	// caller did not ask to override the earlier decision.
	ErrAlreadyDecided = errors.New("reservation already decided")

	// ErrPartiallyApplied means the reservation document was written but the
	// matching table update failed, leaving the two collections out of sync.
	ErrPartiallyApplied = errors.New("reservation updated but tables were not")
)
