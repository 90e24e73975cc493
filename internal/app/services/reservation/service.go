// Package reservation orchestrates the reservation lifecycle: creation
// against published availability, host confirmation, guest cancellation and
// the account-deletion checks.
package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bookstay/internal/app/events"
	"bookstay/internal/domain/accommodation"
	domainavail "bookstay/internal/domain/availability"
	domainreservation "bookstay/internal/domain/reservation"
	"bookstay/internal/domain/shared/dates"
	"bookstay/internal/domain/shared/fault"
	"bookstay/internal/domain/user"
)

type Service struct {
	Accommodations accommodation.Repository
	Intervals      domainavail.Repository
	Reservations   domainreservation.Repository
	Events         events.Publisher
	Logger         *slog.Logger
	Now            func() time.Time
}

// Draft is the guest's new-reservation payload. Price is the total the
// client computed and is stored as-is; the authoritative nightly rate is
// resolved server-side from the availability calendar.
type Draft struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Price     int    `json:"price"`
	Guests    int    `json:"guests"`
}

func (s *Service) ListForGuest(ctx context.Context, loggedUser user.LoggedUser) ([]domainreservation.Reservation, error) {
	if err := user.AuthorizeGuest(loggedUser.Role); err != nil {
		return nil, err
	}
	s.log("listing reservations", "username", loggedUser.Username)
	return s.Reservations.ByUsername(ctx, loggedUser.Username)
}

// Create books a sub-range of the accommodation's availability. When the
// accommodation needs no host confirmation the reservation is confirmed
// immediately: overlapping pending reservations are cancelled and the
// covering intervals are shrunk around the booked range.
func (s *Service) Create(ctx context.Context, loggedUser user.LoggedUser, accommodationID string, draft Draft) (*domainreservation.Reservation, error) {
	if err := user.AuthorizeGuest(loggedUser.Role); err != nil {
		return nil, err
	}
	r, err := parseDraftRange(draft.StartDate, draft.EndDate)
	if err != nil {
		return nil, err
	}
	if draft.Guests <= 0 {
		return nil, fault.BadRequest("guests must be a positive integer")
	}
	if draft.Price <= 0 {
		return nil, fault.BadRequest("price must be a positive integer")
	}
	acc, err := s.Accommodations.ByAccommodationID(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fault.NotFound("accommodation not found for id: %s", accommodationID)
	}
	intervals, err := s.Intervals.Overlapping(ctx, accommodationID, r)
	if err != nil {
		return nil, err
	}
	unitPrice, err := resolveUnitPrice(intervals, r)
	if err != nil {
		return nil, err
	}

	status := domainreservation.StatusConfirmed
	if acc.ConfirmationNeeded {
		status = domainreservation.StatusPending
	}
	res := &domainreservation.Reservation{
		AccommodationID: accommodationID,
		Username:        loggedUser.Username,
		Start:           r.Start,
		End:             r.End,
		Price:           draft.Price,
		UnitPrice:       unitPrice,
		Guests:          draft.Guests,
		Status:          status,
	}
	if status == domainreservation.StatusConfirmed {
		if err := s.Reservations.CancelPendingOverlapping(ctx, accommodationID, r); err != nil {
			return nil, err
		}
		if err := s.consumeAvailability(ctx, intervals, r); err != nil {
			return nil, err
		}
	}
	if err := s.Reservations.Insert(ctx, res); err != nil {
		return nil, err
	}
	s.log("reservation saved", "reservation_id", res.ID, "accommodation_id", accommodationID, "username", loggedUser.Username, "status", string(status))
	return res, nil
}

func (s *Service) ListForAccommodation(ctx context.Context, loggedUser user.LoggedUser, accommodationID string) ([]domainreservation.Reservation, error) {
	if err := user.AuthorizeHost(loggedUser.Role); err != nil {
		return nil, err
	}
	acc, err := s.Accommodations.ByAccommodationID(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fault.NotFound("accommodation not found for id: %s", accommodationID)
	}
	if acc.OwnerUsername != loggedUser.Username {
		return nil, fault.Forbidden("user %s is not allowed to see reservations for accommodation with id: %s", loggedUser.Username, accommodationID)
	}
	return s.Reservations.ByAccommodation(ctx, accommodationID)
}

// Confirm is the host's approval of a pending reservation. Competing
// pending reservations are cancelled and availability is consumed.
func (s *Service) Confirm(ctx context.Context, loggedUser user.LoggedUser, reservationID string) error {
	if err := user.AuthorizeHost(loggedUser.Role); err != nil {
		return err
	}
	res, err := s.reservationByID(ctx, reservationID)
	if err != nil {
		return err
	}
	acc, err := s.Accommodations.ByAccommodationID(ctx, res.AccommodationID)
	if err != nil {
		return err
	}
	if acc == nil {
		return fault.NotFound("accommodation not found for id: %s", res.AccommodationID)
	}
	if acc.OwnerUsername != loggedUser.Username {
		return fault.Forbidden("user %s is not allowed to confirm reservation with id: %s", loggedUser.Username, reservationID)
	}
	if err := res.EnsureConfirmable(); err != nil {
		return err
	}
	r := res.Range()
	if err := s.Reservations.UpdateStatus(ctx, reservationID, domainreservation.StatusConfirmed); err != nil {
		return err
	}
	if err := s.Reservations.CancelPendingOverlapping(ctx, res.AccommodationID, r); err != nil {
		return err
	}
	intervals, err := s.Intervals.Overlapping(ctx, res.AccommodationID, r)
	if err != nil {
		return err
	}
	if err := s.consumeAvailability(ctx, intervals, r); err != nil {
		return err
	}
	s.log("reservation confirmed", "reservation_id", reservationID)
	return nil
}

// Cancel is the guest's withdrawal. Cancellation is blocked from the day
// before the stay starts. The booked range is returned to the calendar as
// a fresh interval priced at the reservation's nightly snapshot.
func (s *Service) Cancel(ctx context.Context, loggedUser user.LoggedUser, reservationID string) error {
	if err := user.AuthorizeGuest(loggedUser.Role); err != nil {
		return err
	}
	res, err := s.reservationByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.Username != loggedUser.Username {
		return fault.Forbidden("user %s is not allowed to cancel reservation with id: %s", loggedUser.Username, reservationID)
	}
	if err := res.EnsureCancellable(); err != nil {
		return err
	}
	if !s.now().Before(res.Start.AddDate(0, 0, -1)) {
		return fault.BadRequest("reservation with id: %s cannot be cancelled the day before the start date", reservationID)
	}
	if err := s.Reservations.UpdateStatus(ctx, reservationID, domainreservation.StatusCancelled); err != nil {
		return err
	}
	restored := &domainavail.Interval{
		AccommodationID: res.AccommodationID,
		Start:           res.Start,
		End:             res.End,
		Price:           res.UnitPrice,
		Valid:           true,
		DateCreated:     s.now(),
	}
	if err := s.Intervals.Insert(ctx, restored); err != nil {
		return err
	}
	s.log("reservation cancelled", "reservation_id", reservationID)
	return nil
}

// CheckUserDeletable verifies the caller has no upcoming confirmed stays
// (guest) or upcoming confirmed reservations on their accommodations
// (host) and publishes the user-deleted fan-out when deletion may proceed.
func (s *Service) CheckUserDeletable(ctx context.Context, loggedUser user.LoggedUser) error {
	if !loggedUser.Valid() {
		return fault.Forbidden("user %s is not allowed to be deleted", loggedUser.Username)
	}
	now := s.now()
	switch loggedUser.Role {
	case user.RoleGuest:
		count, err := s.Reservations.CountFutureConfirmedByGuest(ctx, loggedUser.Username, now)
		if err != nil {
			return err
		}
		if count > 0 {
			return fault.BadRequest("user %s has reservations and cannot be deleted", loggedUser.Username)
		}
	case user.RoleHost:
		owned, err := s.Accommodations.ByOwner(ctx, loggedUser.Username)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(owned))
		for _, acc := range owned {
			ids = append(ids, acc.AccommodationID)
		}
		count, err := s.Reservations.CountFutureConfirmedByAccommodations(ctx, ids, now)
		if err != nil {
			return err
		}
		if count > 0 {
			return fault.BadRequest("user %s has reservations and cannot be deleted", loggedUser.Username)
		}
	}
	s.log("user can be deleted", "username", loggedUser.Username)
	return s.Events.PublishUserDeleted(ctx, loggedUser.Username)
}

// StayedInAccommodation reports whether the guest has a confirmed stay in
// the accommodation that already started. Backs review eligibility.
func (s *Service) StayedInAccommodation(ctx context.Context, username, accommodationID string) (bool, error) {
	return s.Reservations.ExistsConfirmedStay(ctx, username, []string{accommodationID}, s.now())
}

// StayedInHost reports whether the guest has a confirmed stay in any of
// the host's accommodations that already started.
func (s *Service) StayedInHost(ctx context.Context, username, hostUsername string) (bool, error) {
	owned, err := s.Accommodations.ByOwner(ctx, hostUsername)
	if err != nil {
		return false, err
	}
	ids := make([]string, 0, len(owned))
	for _, acc := range owned {
		ids = append(ids, acc.AccommodationID)
	}
	return s.Reservations.ExistsConfirmedStay(ctx, username, ids, s.now())
}

// RenameGuest applies the username-updated notification.
func (s *Service) RenameGuest(ctx context.Context, oldUsername, newUsername string) error {
	return s.Reservations.UpdateUsername(ctx, oldUsername, newUsername)
}

// RemoveForUsername applies the user-deleted notification.
func (s *Service) RemoveForUsername(ctx context.Context, username string) error {
	return s.Reservations.RemoveByUsername(ctx, username)
}

// consumeAvailability applies the reconciliation mutations that carve the
// booked range out of the covering intervals.
func (s *Service) consumeAvailability(ctx context.Context, intervals []domainavail.Interval, booked dates.Range) error {
	for _, m := range domainavail.Reconcile(intervals, booked, s.now()) {
		switch m.Kind {
		case domainavail.MutationInvalidate:
			if err := s.Intervals.Invalidate(ctx, m.IntervalID, m.AccommodationID); err != nil {
				return err
			}
		case domainavail.MutationResize:
			if err := s.Intervals.UpdateRange(ctx, m.IntervalID, m.AccommodationID, m.Range); err != nil {
				return err
			}
		case domainavail.MutationInsert:
			if err := s.Intervals.Insert(ctx, m.Insert); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveUnitPrice checks that every night of the booked range is covered
// by a valid interval and returns the modal nightly price across the
// covered days. Ties break toward the lowest price.
func resolveUnitPrice(intervals []domainavail.Interval, booked dates.Range) (int, error) {
	if len(intervals) < 1 {
		return 0, fault.BadRequest("there is no availability for the given time frame")
	}
	// boundary days shared by two intervals resolve to the earlier one
	available := make(map[string]int)
	for _, slot := range domainavail.ExtractDatesWithPrices(intervals, booked) {
		if _, ok := available[slot.Date]; !ok {
			available[slot.Date] = slot.Price
		}
	}
	counts := make(map[int]int)
	for _, slot := range domainavail.ExtractDatesFromTimeframe(booked) {
		price, ok := available[slot.Date]
		if !ok {
			return 0, fault.BadRequest("there is no availability for the given time frame")
		}
		counts[price]++
	}
	unitPrice := 0
	best := 0
	for price, count := range counts {
		if count > best || (count == best && price < unitPrice) {
			unitPrice = price
			best = count
		}
	}
	return unitPrice, nil
}

func (s *Service) reservationByID(ctx context.Context, reservationID string) (*domainreservation.Reservation, error) {
	res, err := s.Reservations.ByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fault.NotFound("reservation not found for id: %s", reservationID)
	}
	return res, nil
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
