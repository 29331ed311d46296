package models

import (
	"strconv"
	"time"
)

const (
	ReservationPending  = "pending"
	ReservationApproved = "approved"
	ReservationRejected = "rejected"
)

// Reservation is a contact's request to occupy one or more tables. It owns
// its TableIDs for its whole lifetime; every status change must be mirrored
// onto the referenced tables by the caller.
type Reservation struct {
	ID        string    `json:"id" bson:"_id"`
	TableIDs  []string  `json:"tableIds" bson:"tableIds" validate:"required,min=1"`
	FirstName string    `json:"firstName" bson:"firstName" validate:"required"`
	LastName  string    `json:"lastName" bson:"lastName" validate:"required"`
	Phone     string    `json:"phone" bson:"phone" validate:"required"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewReservationID returns the creation-time id, a millisecond timestamp
// string, unique by construction at this traffic level.
func NewReservationID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}
