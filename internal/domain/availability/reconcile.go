package availability

import (
	"time"

	"bookstay/internal/domain/shared/dates"
)

type MutationKind string

const (
	MutationInvalidate MutationKind = "INVALIDATE"
	MutationResize     MutationKind = "RESIZE"
	MutationInsert     MutationKind = "INSERT"
)

// Mutation is one store instruction produced by Reconcile. Resize carries
// the new range for an existing interval; Insert carries a full new
// interval; Invalidate only identifies its target.
type Mutation struct {
	Kind            MutationKind
	IntervalID      string
	AccommodationID string
	Range           dates.Range
	Insert          *Interval
}

// Reconcile computes the interval mutations that consume the booked range
// [booked.Start, booked.End] out of the given valid intervals. Each
// overlapping interval is classified independently by comparing its bounds
// to the booked bounds (same / before / after), giving nine cases:
//
//	start  end    action
//	same   same   invalidate
//	same   after  resize to [booked.End, end]
//	before same   resize to [start, booked.Start]
//	before after  resize to [start, booked.Start], insert [booked.End, end]
//	before before resize to [start, booked.Start]
//	after  after  resize to [booked.End, end]
//	after  before invalidate
//	same   before invalidate
//	after  same   invalidate
//
// The caller has already verified that the intervals cover the booked
// range; Reconcile does not re-validate. Intervals not overlapping the
// booked range are left untouched.
func Reconcile(intervals []Interval, booked dates.Range, now time.Time) []Mutation {
	var mutations []Mutation
	for _, interval := range intervals {
		if !interval.Range().Overlaps(booked) {
			continue
		}
		start, end := interval.Start, interval.End
		switch {
		case start.Equal(booked.Start) && end.Equal(booked.End):
			mutations = append(mutations, invalidate(interval))
		case start.Equal(booked.Start) && end.After(booked.End):
			mutations = append(mutations, resize(interval, dates.Range{Start: booked.End, End: end}))
		case start.Before(booked.Start) && end.Equal(booked.End):
			mutations = append(mutations, resize(interval, dates.Range{Start: start, End: booked.Start}))
		case start.Before(booked.Start) && end.After(booked.End):
			mutations = append(mutations,
				resize(interval, dates.Range{Start: start, End: booked.Start}),
				insert(interval, dates.Range{Start: booked.End, End: end}, now))
		case start.Before(booked.Start) && end.Before(booked.End):
			mutations = append(mutations, resize(interval, dates.Range{Start: start, End: booked.Start}))
		case start.After(booked.Start) && end.After(booked.End):
			mutations = append(mutations, resize(interval, dates.Range{Start: booked.End, End: end}))
		default:
			// fully inside the booked range, possibly sharing a boundary
			mutations = append(mutations, invalidate(interval))
		}
	}
	return mutations
}

func invalidate(interval Interval) Mutation {
	return Mutation{
		Kind:            MutationInvalidate,
		IntervalID:      interval.ID,
		AccommodationID: interval.AccommodationID,
	}
}

func resize(interval Interval, r dates.Range) Mutation {
	return Mutation{
		Kind:            MutationResize,
		IntervalID:      interval.ID,
		AccommodationID: interval.AccommodationID,
		Range:           r,
	}
}

func insert(interval Interval, r dates.Range, now time.Time) Mutation {
	return Mutation{
		Kind:            MutationInsert,
		AccommodationID: interval.AccommodationID,
		Range:           r,
		Insert: &Interval{
			AccommodationID: interval.AccommodationID,
			Start:           r.Start,
			End:             r.End,
			Price:           interval.Price,
			Valid:           true,
			DateCreated:     now.UTC(),
		},
	}
}
