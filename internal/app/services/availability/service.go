// Package availability orchestrates the host-facing availability window
// lifecycle and the guest-facing calendar views.
package availability

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookstay/internal/domain/accommodation"
	domainavail "bookstay/internal/domain/availability"
	"bookstay/internal/domain/shared/dates"
	"bookstay/internal/domain/shared/fault"
	"bookstay/internal/domain/user"
)

type Service struct {
	Accommodations accommodation.Repository
	Intervals      domainavail.Repository
	Logger         *slog.Logger
	Now            func() time.Time
}

// IntervalDraft is the host's new-availability payload. Dates use the
// external DD-MM-YYYY format.
type IntervalDraft struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Price     int    `json:"price"`
}

type DateUpdate struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type PriceUpdate struct {
	Price int `json:"price"`
}

func (s *Service) Create(ctx context.Context, loggedUser user.LoggedUser, accommodationID string, draft IntervalDraft) (*domainavail.Interval, error) {
	if err := user.AuthorizeHost(loggedUser.Role); err != nil {
		return nil, err
	}
	if _, err := s.ownedAccommodation(ctx, loggedUser, accommodationID); err != nil {
		return nil, err
	}
	r, err := parseDraftRange(draft.StartDate, draft.EndDate)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(draft.Price); err != nil {
		return nil, err
	}
	count, err := s.Intervals.CountOverlapping(ctx, accommodationID, r)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fault.BadRequest("availability already exists for the given time frame")
	}
	interval := &domainavail.Interval{
		AccommodationID: accommodationID,
		Start:           r.Start,
		End:             r.End,
		Price:           draft.Price,
		Valid:           true,
		DateCreated:     s.now(),
	}
	if err := s.Intervals.Insert(ctx, interval); err != nil {
		return nil, err
	}
	s.log("availability created", "accommodation_id", accommodationID, "start", dates.FormatDay(r.Start), "end", dates.FormatDay(r.End), "price", draft.Price)
	return interval, nil
}

func (s *Service) UpdateDate(ctx context.Context, loggedUser user.LoggedUser, intervalID, accommodationID string, update DateUpdate) error {
	if err := user.AuthorizeHost(loggedUser.Role); err != nil {
		return err
	}
	if _, err := s.ownedAccommodation(ctx, loggedUser, accommodationID); err != nil {
		return err
	}
	if _, err := s.validInterval(ctx, intervalID); err != nil {
		return err
	}
	r, err := parseDraftRange(update.StartDate, update.EndDate)
	if err != nil {
		return err
	}
	// sibling overlap is deliberately not re-checked here
	return s.Intervals.UpdateRange(ctx, intervalID, accommodationID, r)
}

// UpdatePrice replaces rather than mutates: the old interval is
// invalidated and a fresh one inserted with the same dates, keeping the
// price history in the store.
func (s *Service) UpdatePrice(ctx context.Context, loggedUser user.LoggedUser, intervalID, accommodationID string, update PriceUpdate) (*domainavail.Interval, error) {
	if err := user.AuthorizeHost(loggedUser.Role); err != nil {
		return nil, err
	}
	if _, err := s.ownedAccommodation(ctx, loggedUser, accommodationID); err != nil {
		return nil, err
	}
	existing, err := s.validInterval(ctx, intervalID)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(update.Price); err != nil {
		return nil, err
	}
	if err := s.Intervals.Invalidate(ctx, intervalID, accommodationID); err != nil {
		return nil, err
	}
	replacement := &domainavail.Interval{
		AccommodationID: accommodationID,
		Start:           existing.Start,
		End:             existing.End,
		Price:           update.Price,
		Valid:           true,
		DateCreated:     s.now(),
	}
	if err := s.Intervals.Insert(ctx, replacement); err != nil {
		return nil, err
	}
	s.log("availability price replaced", "accommodation_id", accommodationID, "interval_id", intervalID, "price", update.Price)
	return replacement, nil
}

// Slots returns the guest-facing per-day price calendar. An unspecified
// range defaults to the current calendar month.
func (s *Service) Slots(ctx context.Context, loggedUser user.LoggedUser, accommodationID, startDate, endDate string) ([]domainavail.Slot, error) {
	if err := user.AuthorizeGuest(loggedUser.Role); err != nil {
		return nil, err
	}
	r, err := s.queryRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	intervals, err := s.Intervals.Overlapping(ctx, accommodationID, r)
	if err != nil {
		return nil, err
	}
	s.log("building slots", "accommodation_id", accommodationID, "intervals", len(intervals))
	return domainavail.ExtractDatesWithPrices(intervals, r), nil
}

// Intervals returns the raw valid intervals for the host calendar view.
func (s *Service) IntervalsFor(ctx context.Context, loggedUser user.LoggedUser, accommodationID, startDate, endDate string) ([]domainavail.Interval, error) {
	if err := user.AuthorizeHost(loggedUser.Role); err != nil {
		return nil, err
	}
	r, err := s.queryRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.Intervals.Overlapping(ctx, accommodationID, r)
}

// Search resolves loosely-typed query params into a store-side filter and
// returns matching accommodation ids.
func (s *Service) Search(ctx context.Context, query url.Values) ([]string, error) {
	parsed, err := parseSearchQuery(query)
	if err != nil {
		return nil, err
	}
	r, err := s.queryRange(parsed.startDate, parsed.endDate)
	if err != nil {
		return nil, err
	}
	s.log("searching availabilities", "start", dates.FormatDay(r.Start), "end", dates.FormatDay(r.End), "location", parsed.location, "guests", parsed.guests)
	return s.Intervals.Search(ctx, domainavail.SearchParams{
		Range:    r,
		Location: parsed.location,
		Guests:   parsed.guests,
	})
}

// AddAccommodation applies the accommodation-created notification.
func (s *Service) AddAccommodation(ctx context.Context, acc *accommodation.Accommodation) error {
	return s.Accommodations.Upsert(ctx, acc)
}

// RenameOwner applies the username-updated notification.
func (s *Service) RenameOwner(ctx context.Context, oldUsername, newUsername string) error {
	return s.Accommodations.UpdateOwnerUsername(ctx, oldUsername, newUsername)
}

// RemoveForOwner applies the user-deleted notification: the owner's
// accommodations disappear together with their intervals.
func (s *Service) RemoveForOwner(ctx context.Context, username string) error {
	removed, err := s.Accommodations.RemoveByOwner(ctx, username)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}
	return s.Intervals.RemoveByAccommodations(ctx, removed)
}

func (s *Service) ownedAccommodation(ctx context.Context, loggedUser user.LoggedUser, accommodationID string) (*accommodation.Accommodation, error) {
	acc, err := s.Accommodations.ByAccommodationID(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fault.NotFound("accommodation not found for id: %s", accommodationID)
	}
	if acc.OwnerUsername != loggedUser.Username {
		return nil, fault.Forbidden("user %s is not authorized to update availability for accommodation with id: %s", loggedUser.Username, accommodationID)
	}
	return acc, nil
}

func (s *Service) validInterval(ctx context.Context, intervalID string) (*domainavail.Interval, error) {
	interval, err := s.Intervals.ByID(ctx, intervalID)
	if err != nil {
		return nil, err
	}
	if interval == nil {
		return nil, fault.NotFound("availability not found for id: %s", intervalID)
	}
	return interval, nil
}

// queryRange fills each missing bound from the current calendar month,
// so a query with only one bound still resolves.
func (s *Service) queryRange(startDate, endDate string) (dates.Range, error) {
	month := dates.CurrentMonth(s.now())
	if startDate == "" {
		startDate = dates.FormatDay(month.Start)
	}
	if endDate == "" {
		endDate = dates.FormatDay(month.End)
	}
	return parseDraftRange(startDate, endDate)
}

func parseDraftRange(startDate, endDate string) (dates.Range, error) {
	if startDate == "" {
		return dates.Range{}, fault.BadRequest("startDate is required")
	}
	if endDate == "" {
		return dates.Range{}, fault.BadRequest("endDate is required")
	}
	r, err := dates.ParseRange(startDate, endDate)
	if errors.Is(err, dates.ErrInvalidRange) {
		return dates.Range{}, fault.BadRequest("startDate must be before endDate")
	}
	if err != nil {
		return dates.Range{}, fault.BadRequest("dates must use the DD-MM-YYYY format")
	}
	return r, nil
}

func validatePrice(price int) error {
	if price <= 0 {
		return fault.BadRequest("price must be a positive integer")
	}
	return nil
}

type searchQuery struct {
	startDate string
	endDate   string
	location  string
	guests    int
}

// parseSearchQuery takes the first value of each param and cuts anything
// after a '/', mirroring how the gateway forwards raw query strings.
func parseSearchQuery(query url.Values) (searchQuery, error) {
	parsed := searchQuery{
		startDate: firstParam(query, "startDate"),
		endDate:   firstParam(query, "endDate"),
		location:  firstParam(query, "location"),
	}
	if raw := firstParam(query, "guests"); raw != "" {
		guests, err := strconv.Atoi(raw)
		if err != nil {
			return searchQuery{}, fault.BadRequest("guests must be a number")
		}
		parsed.guests = guests
	}
	return parsed, nil
}

func firstParam(query url.Values, key string) string {
	value := query.Get(key)
	value, _, _ = strings.Cut(value, "/")
	return value
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) log(msg string, args ...any) {
	if s.Logger != nil {
		s.Logger.Info(msg, args...)
	}
}
