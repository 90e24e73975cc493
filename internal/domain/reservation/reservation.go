package reservation

import (
	"context"
	"time"

	"bookstay/internal/domain/shared/dates"
	"bookstay/internal/domain/shared/fault"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusRejected  Status = "Rejected"
)

// Reservation is a guest's booking of a sub-range of an accommodation's
// availability. Price is the total charged and is informational; UnitPrice
// is the nightly rate snapshot used to restore availability on
// cancellation.
type Reservation struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodationId"`
	Username        string    `json:"username"`
	Start           time.Time `json:"startDate"`
	End             time.Time `json:"endDate"`
	Price           int       `json:"price"`
	UnitPrice       int       `json:"unitPrice"`
	Guests          int       `json:"guests"`
	Status          Status    `json:"status"`
}

func (r Reservation) Range() dates.Range {
	return dates.Range{Start: r.Start, End: r.End}
}

// EnsureConfirmable rejects reservations that already reached Confirmed or
// a terminal state.
func (r Reservation) EnsureConfirmable() error {
	switch r.Status {
	case StatusConfirmed:
		return fault.BadRequest("reservation with id: %s is already confirmed", r.ID)
	case StatusCancelled, StatusRejected:
		return fault.BadRequest("reservation with id: %s is cancelled and cannot be confirmed", r.ID)
	}
	return nil
}

// EnsureCancellable rejects reservations already in a terminal state.
// Confirmed reservations can still be cancelled; the cutoff rule is
// enforced by the service, not here.
func (r Reservation) EnsureCancellable() error {
	if r.Status == StatusCancelled || r.Status == StatusRejected {
		return fault.BadRequest("reservation with id: %s is already cancelled or rejected", r.ID)
	}
	return nil
}

type Repository interface {
	Insert(ctx context.Context, res *Reservation) error
	ByID(ctx context.Context, id string) (*Reservation, error)
	ByUsername(ctx context.Context, username string) ([]Reservation, error)
	ByAccommodation(ctx context.Context, accommodationID string) ([]Reservation, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// CancelPendingOverlapping flips every Pending reservation of the
	// accommodation whose range overlaps r to Cancelled.
	CancelPendingOverlapping(ctx context.Context, accommodationID string, r dates.Range) error
	CountFutureConfirmedByGuest(ctx context.Context, username string, after time.Time) (int, error)
	CountFutureConfirmedByAccommodations(ctx context.Context, accommodationIDs []string, after time.Time) (int, error)
	// ExistsConfirmedStay reports whether the guest has a Confirmed
	// reservation on one of the accommodations starting on or before now.
	ExistsConfirmedStay(ctx context.Context, username string, accommodationIDs []string, now time.Time) (bool, error)
	UpdateUsername(ctx context.Context, oldUsername, newUsername string) error
	RemoveByUsername(ctx context.Context, username string) error
}
