// Package reservations links users to menus they have booked.
package reservations

import (
	"time"

	"github.com/mensahub/mensahub/internal/catalog"
)

// Status is the reservation lifecycle state. Only Create and Read are wired;
// the remaining states exist for persistence fidelity until check-in and
// cancellation flows are specified.
type Status string

const (
	StatusConfirmed Status = "Confirmed"
	StatusUsed      Status = "Used"
	StatusNoShow    Status = "No-show"
	StatusCancelled Status = "Cancelled"
)

// String returns the stable external representation.
func (s Status) String() string {
	return string(s)
}

// Reservation is a user's booking against a menu. CreatedAt is set once at
// creation and never changes.
type Reservation struct {
	ID        int64
	UserID    int64
	MenuID    int64
	Status    Status
	CreatedAt time.Time
}

// Detail is a reservation joined with the menu it was made for.
type Detail struct {
	Reservation
	MenuDate time.Time
	MealType catalog.MealType
}
