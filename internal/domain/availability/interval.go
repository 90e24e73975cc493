package availability

import (
	"context"
	"time"

	"bookstay/internal/domain/shared/dates"
)

// Interval is a host-published date range with a nightly price. Intervals
// are soft-deleted: consumed or superseded intervals flip Valid to false
// and stay in the store as an audit trail.
type Interval struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodationId"`
	Start           time.Time `json:"startDate"`
	End             time.Time `json:"endDate"`
	Price           int       `json:"price"`
	Valid           bool      `json:"valid"`
	DateCreated     time.Time `json:"dateCreated"`
}

func (i Interval) Range() dates.Range {
	return dates.Range{Start: i.Start, End: i.End}
}

// SearchParams filters accommodations by capacity, location substring and
// the presence of at least one interval overlapping the range.
type SearchParams struct {
	Range    dates.Range
	Location string
	Guests   int
}

type Repository interface {
	// ByID returns the interval only while it is valid.
	ByID(ctx context.Context, id string) (*Interval, error)
	Insert(ctx context.Context, interval *Interval) error
	// Overlapping returns valid intervals touching [r.Start, r.End]
	// inclusively, ordered by start date.
	Overlapping(ctx context.Context, accommodationID string, r dates.Range) ([]Interval, error)
	// CountOverlapping uses strict bounds: an interval that only shares a
	// boundary day with r does not count. Guards new-availability creation.
	CountOverlapping(ctx context.Context, accommodationID string, r dates.Range) (int, error)
	UpdateRange(ctx context.Context, id, accommodationID string, r dates.Range) error
	Invalidate(ctx context.Context, id, accommodationID string) error
	Search(ctx context.Context, params SearchParams) ([]string, error)
	RemoveByAccommodations(ctx context.Context, accommodationIDs []string) error
}
