package availability

import (
	"time"

	"bookstay/internal/domain/shared/dates"
)

// Slot is one calendar day's derived price. Slots back guest-facing
// calendars and reservation coverage checks; they are never persisted.
type Slot struct {
	Date  string `json:"date"`
	Price int    `json:"price"`
}

// ExtractDatesWithPrices clips each interval to the query range and emits
// one slot per day, inclusive on both ends. Input intervals are assumed
// non-overlapping and already filtered to the query range; output keeps
// interval order, then day order.
func ExtractDatesWithPrices(intervals []Interval, query dates.Range) []Slot {
	var slots []Slot
	for _, interval := range intervals {
		clipped := interval.Range().Clip(query)
		for day := clipped.Start; !day.After(clipped.End); day = day.AddDate(0, 0, 1) {
			slots = append(slots, Slot{Date: slotDate(day), Price: interval.Price})
		}
	}
	return slots
}

// ExtractDatesFromTimeframe enumerates every day of the range at price 0,
// one placeholder slot per day a prospective reservation would touch.
func ExtractDatesFromTimeframe(timeframe dates.Range) []Slot {
	var slots []Slot
	for day := timeframe.Start; !day.After(timeframe.End); day = day.AddDate(0, 0, 1) {
		slots = append(slots, Slot{Date: slotDate(day)})
	}
	return slots
}

func slotDate(day time.Time) string {
	return day.UTC().Format("2006-01-02")
}
