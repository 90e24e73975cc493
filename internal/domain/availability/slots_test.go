package availability

import (
	"testing"

	"bookstay/internal/domain/shared/dates"
)

func TestExtractDatesWithPricesFullMonth(t *testing.T) {
	june := dates.Range{Start: day(1), End: day(30)}
	slots := ExtractDatesWithPrices([]Interval{interval("iv-1", 1, 30, 100)}, june)

	if len(slots) != 30 {
		t.Fatalf("slot count = %d, want 30", len(slots))
	}
	if slots[0].Date != "2024-06-01" || slots[29].Date != "2024-06-30" {
		t.Errorf("slot range = %s..%s, want 2024-06-01..2024-06-30", slots[0].Date, slots[29].Date)
	}
	for _, s := range slots {
		if s.Price != 100 {
			t.Fatalf("slot %s price = %d, want 100", s.Date, s.Price)
		}
	}
}

func TestExtractDatesWithPricesClipsToQuery(t *testing.T) {
	query := dates.Range{Start: day(10), End: day(12)}
	slots := ExtractDatesWithPrices([]Interval{interval("iv-1", 1, 30, 100)}, query)

	want := []string{"2024-06-10", "2024-06-11", "2024-06-12"}
	if len(slots) != len(want) {
		t.Fatalf("slot count = %d, want %d", len(slots), len(want))
	}
	for i, s := range slots {
		if s.Date != want[i] {
			t.Errorf("slot %d = %s, want %s", i, s.Date, want[i])
		}
	}
}

func TestExtractDatesWithPricesKeepsIntervalOrder(t *testing.T) {
	intervals := []Interval{
		interval("iv-b", 10, 12, 120),
		interval("iv-a", 1, 3, 100),
	}
	slots := ExtractDatesWithPrices(intervals, dates.Range{Start: day(1), End: day(30)})

	if len(slots) != 6 {
		t.Fatalf("slot count = %d, want 6", len(slots))
	}
	// interval order first, day order within
	if slots[0].Date != "2024-06-10" || slots[0].Price != 120 {
		t.Errorf("first slot = %+v, want 2024-06-10 at 120", slots[0])
	}
	if slots[3].Date != "2024-06-01" || slots[3].Price != 100 {
		t.Errorf("fourth slot = %+v, want 2024-06-01 at 100", slots[3])
	}
}

func TestExtractDatesFromTimeframe(t *testing.T) {
	slots := ExtractDatesFromTimeframe(dates.Range{Start: day(28), End: day(30)})

	if len(slots) != 3 {
		t.Fatalf("slot count = %d, want 3", len(slots))
	}
	for _, s := range slots {
		if s.Price != 0 {
			t.Errorf("placeholder slot %s price = %d, want 0", s.Date, s.Price)
		}
	}
	if slots[2].Date != "2024-06-30" {
		t.Errorf("last slot = %s, want 2024-06-30", slots[2].Date)
	}
}
