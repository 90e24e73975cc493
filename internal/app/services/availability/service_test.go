package availability

import (
	"context"
	"net/url"
	"testing"
	"time"

	"bookstay/internal/domain/accommodation"
	domainavail "bookstay/internal/domain/availability"
	"bookstay/internal/domain/shared/dates"
	"bookstay/internal/domain/shared/fault"
	"bookstay/internal/domain/user"
	"bookstay/internal/infra/storage/memory"
)

var fixedNow = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *memory.AccommodationRepository, *memory.IntervalRepository) {
	t.Helper()
	accommodations := memory.NewAccommodationRepository()
	intervals := memory.NewIntervalRepository(accommodations)
	svc := &Service{
		Accommodations: accommodations,
		Intervals:      intervals,
		Now:            func() time.Time { return fixedNow },
	}
	return svc, accommodations, intervals
}

func seedAccommodation(t *testing.T, repo *memory.AccommodationRepository, id, owner string) {
	t.Helper()
	err := repo.Upsert(context.Background(), &accommodation.Accommodation{
		AccommodationID: id,
		OwnerUsername:   owner,
		Location:        "Novi Sad",
		MinCapacity:     1,
		MaxCapacity:     4,
	})
	if err != nil {
		t.Fatalf("seed accommodation: %v", err)
	}
}

func datesRange(t *testing.T, start, end string) dates.Range {
	t.Helper()
	r, err := dates.ParseRange(start, end)
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	return r
}

func host(username string) user.LoggedUser {
	return user.LoggedUser{Username: username, Role: user.RoleHost}
}

func guest(username string) user.LoggedUser {
	return user.LoggedUser{Username: username, Role: user.RoleGuest}
}

func TestCreateInterval(t *testing.T) {
	svc, accommodations, intervals := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")

	created, err := svc.Create(context.Background(), host("marko"), "acc-1", IntervalDraft{
		StartDate: "01-07-2024",
		EndDate:   "31-07-2024",
		Price:     120,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated interval id")
	}
	if !created.Valid {
		t.Fatal("expected new interval to be valid")
	}
	if !created.DateCreated.Equal(fixedNow) {
		t.Fatalf("expected dateCreated %v, got %v", fixedNow, created.DateCreated)
	}

	stored, err := intervals.ByID(context.Background(), created.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected stored interval, got %v, %v", stored, err)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc, accommodations, _ := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	ctx := context.Background()

	if _, err := svc.Create(ctx, host("marko"), "acc-1", IntervalDraft{StartDate: "01-07-2024", EndDate: "15-07-2024", Price: 100}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, host("marko"), "acc-1", IntervalDraft{StartDate: "10-07-2024", EndDate: "20-07-2024", Price: 100})
	if !fault.IsBadRequest(err) {
		t.Fatalf("expected bad request for overlapping frame, got %v", err)
	}

	// sharing only a boundary day is allowed
	if _, err := svc.Create(ctx, host("marko"), "acc-1", IntervalDraft{StartDate: "15-07-2024", EndDate: "20-07-2024", Price: 100}); err != nil {
		t.Fatalf("boundary-touching create: %v", err)
	}
}

func TestCreateAuthorization(t *testing.T) {
	svc, accommodations, _ := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	ctx := context.Background()
	draft := IntervalDraft{StartDate: "01-07-2024", EndDate: "15-07-2024", Price: 100}

	if _, err := svc.Create(ctx, guest("jovan"), "acc-1", draft); !fault.IsForbidden(err) {
		t.Fatalf("expected forbidden for guest, got %v", err)
	}
	if _, err := svc.Create(ctx, host("jovan"), "acc-1", draft); !fault.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-owner host, got %v", err)
	}
	if _, err := svc.Create(ctx, host("marko"), "missing", draft); !fault.IsNotFound(err) {
		t.Fatalf("expected not found for unknown accommodation, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, accommodations, _ := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	ctx := context.Background()

	cases := []struct {
		name  string
		draft IntervalDraft
	}{
		{"missing start", IntervalDraft{EndDate: "15-07-2024", Price: 100}},
		{"missing end", IntervalDraft{StartDate: "01-07-2024", Price: 100}},
		{"inverted range", IntervalDraft{StartDate: "15-07-2024", EndDate: "01-07-2024", Price: 100}},
		{"bad format", IntervalDraft{StartDate: "2024-07-01", EndDate: "2024-07-15", Price: 100}},
		{"zero price", IntervalDraft{StartDate: "01-07-2024", EndDate: "15-07-2024"}},
		{"negative price", IntervalDraft{StartDate: "01-07-2024", EndDate: "15-07-2024", Price: -5}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, host("marko"), "acc-1", tc.draft); !fault.IsBadRequest(err) {
			t.Errorf("%s: expected bad request, got %v", tc.name, err)
		}
	}
}

func TestUpdatePriceReplacesInterval(t *testing.T) {
	svc, accommodations, intervals := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	ctx := context.Background()

	original, err := svc.Create(ctx, host("marko"), "acc-1", IntervalDraft{StartDate: "01-07-2024", EndDate: "15-07-2024", Price: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	replacement, err := svc.UpdatePrice(ctx, host("marko"), original.ID, "acc-1", PriceUpdate{Price: 150})
	if err != nil {
		t.Fatalf("update price: %v", err)
	}
	if replacement.ID == original.ID {
		t.Fatal("expected a new interval, not a mutation of the old one")
	}
	if replacement.Price != 150 {
		t.Fatalf("expected price 150, got %d", replacement.Price)
	}
	if !replacement.Start.Equal(original.Start) || !replacement.End.Equal(original.End) {
		t.Fatal("expected replacement to keep the original dates")
	}

	if stale, _ := intervals.ByID(ctx, original.ID); stale != nil {
		t.Fatal("expected original interval to be invalidated")
	}
	if _, err := svc.UpdatePrice(ctx, host("marko"), original.ID, "acc-1", PriceUpdate{Price: 200}); !fault.IsNotFound(err) {
		t.Fatalf("expected not found for invalidated interval, got %v", err)
	}
}

func TestUpdateDate(t *testing.T) {
	svc, accommodations, intervals := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	ctx := context.Background()

	created, err := svc.Create(ctx, host("marko"), "acc-1", IntervalDraft{StartDate: "01-07-2024", EndDate: "15-07-2024", Price: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.UpdateDate(ctx, host("marko"), created.ID, "acc-1", DateUpdate{StartDate: "05-07-2024", EndDate: "25-07-2024"}); err != nil {
		t.Fatalf("update date: %v", err)
	}
	updated, _ := intervals.ByID(ctx, created.ID)
	if updated == nil {
		t.Fatal("expected interval to remain valid")
	}
	if updated.Start.Day() != 5 || updated.End.Day() != 25 {
		t.Fatalf("expected 5..25, got %v..%v", updated.Start, updated.End)
	}

	if err := svc.UpdateDate(ctx, host("marko"), "missing", "acc-1", DateUpdate{StartDate: "05-07-2024", EndDate: "25-07-2024"}); !fault.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSlotsDefaultsToCurrentMonth(t *testing.T) {
	svc, accommodations, intervals := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	ctx := context.Background()

	err := intervals.Insert(ctx, &domainavail.Interval{
		AccommodationID: "acc-1",
		Start:           time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		Price:           90,
		Valid:           true,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	slots, err := svc.Slots(ctx, guest("jovan"), "acc-1", "", "")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 30 {
		t.Fatalf("expected slots for all of June, got %d", len(slots))
	}
	if slots[0].Date != "2024-06-01" || slots[0].Price != 90 {
		t.Fatalf("unexpected first slot %+v", slots[0])
	}

	if _, err := svc.Slots(ctx, host("marko"), "acc-1", "", ""); !fault.IsForbidden(err) {
		t.Fatalf("expected forbidden for host role, got %v", err)
	}

	// a single bound defaults the other to the current month's edge
	slots, err = svc.Slots(ctx, guest("jovan"), "acc-1", "", "05-06-2024")
	if err != nil {
		t.Fatalf("slots with endDate only: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots from the first of June, got %d", len(slots))
	}
	if slots[0].Date != "2024-06-01" {
		t.Fatalf("expected slots to start on 2024-06-01, got %s", slots[0].Date)
	}
	slots, err = svc.Slots(ctx, guest("jovan"), "acc-1", "25-06-2024", "")
	if err != nil {
		t.Fatalf("slots with startDate only: %v", err)
	}
	if len(slots) != 6 || slots[len(slots)-1].Date != "2024-06-30" {
		t.Fatalf("expected 6 slots ending on the last of June, got %d", len(slots))
	}
}

func TestSearch(t *testing.T) {
	svc, accommodations, intervals := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	seedAccommodation(t, accommodations, "acc-2", "ana")
	ctx := context.Background()

	for _, id := range []string{"acc-1", "acc-2"} {
		err := intervals.Insert(ctx, &domainavail.Interval{
			AccommodationID: id,
			Start:           time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
			End:             time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC),
			Price:           100,
			Valid:           true,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	query := url.Values{}
	query.Set("startDate", "05-07-2024")
	query.Set("endDate", "10-07-2024")
	query.Set("location", "novi")
	query.Set("guests", "2")
	ids, err := svc.Search(ctx, query)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected both accommodations, got %v", ids)
	}

	// trailing path junk after '/' is ignored
	query.Set("guests", "2/extra")
	if _, err := svc.Search(ctx, query); err != nil {
		t.Fatalf("search with suffixed param: %v", err)
	}

	query.Set("guests", "abc")
	if _, err := svc.Search(ctx, query); !fault.IsBadRequest(err) {
		t.Fatalf("expected bad request for non-numeric guests, got %v", err)
	}

	query.Set("guests", "9")
	ids, err = svc.Search(ctx, query)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no accommodations for 9 guests, got %v", ids)
	}
}

func TestRemoveForOwnerCascades(t *testing.T) {
	svc, accommodations, intervals := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	seedAccommodation(t, accommodations, "acc-2", "ana")
	ctx := context.Background()

	for _, id := range []string{"acc-1", "acc-2"} {
		err := intervals.Insert(ctx, &domainavail.Interval{
			AccommodationID: id,
			Start:           time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
			End:             time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC),
			Price:           100,
			Valid:           true,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	if err := svc.RemoveForOwner(ctx, "marko"); err != nil {
		t.Fatalf("remove for owner: %v", err)
	}
	if acc, _ := accommodations.ByAccommodationID(ctx, "acc-1"); acc != nil {
		t.Fatal("expected acc-1 to be removed")
	}
	query := datesRange(t, "01-07-2024", "31-07-2024")
	gone, _ := intervals.Overlapping(ctx, "acc-1", query)
	if len(gone) != 0 {
		t.Fatalf("expected acc-1 intervals removed, got %d", len(gone))
	}
	kept, _ := intervals.Overlapping(ctx, "acc-2", query)
	if len(kept) != 1 {
		t.Fatalf("expected acc-2 intervals kept, got %d", len(kept))
	}
}

func TestRenameOwner(t *testing.T) {
	svc, accommodations, _ := newService(t)
	seedAccommodation(t, accommodations, "acc-1", "marko")
	ctx := context.Background()

	if err := svc.RenameOwner(ctx, "marko", "marko2"); err != nil {
		t.Fatalf("rename owner: %v", err)
	}
	acc, _ := accommodations.ByAccommodationID(ctx, "acc-1")
	if acc.OwnerUsername != "marko2" {
		t.Fatalf("expected renamed owner, got %s", acc.OwnerUsername)
	}
}
