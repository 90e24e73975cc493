// Package memory holds in-memory repository implementations used when the
// service runs without Mongo and as fixtures in service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookstay/internal/domain/accommodation"
	domainavailability "bookstay/internal/domain/availability"
	domainreservation "bookstay/internal/domain/reservation"
	"bookstay/internal/domain/shared/dates"
)

// AccommodationRepository keeps accommodation projections in memory.
type AccommodationRepository struct {
	mu    sync.RWMutex
	items map[string]*accommodation.Accommodation
}

// NewAccommodationRepository builds an empty repository.
func NewAccommodationRepository() *AccommodationRepository {
	return &AccommodationRepository{items: make(map[string]*accommodation.Accommodation)}
}

// ByAccommodationID returns the projection or nil when it was never seen.
func (r *AccommodationRepository) ByAccommodationID(ctx context.Context, id string) (*accommodation.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *acc
	return &copied, nil
}

// Upsert overwrites by accommodation id.
func (r *AccommodationRepository) Upsert(ctx context.Context, acc *accommodation.Accommodation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *acc
	r.items[acc.AccommodationID] = &copied
	return nil
}

func (r *AccommodationRepository) UpdateOwnerUsername(ctx context.Context, oldUsername, newUsername string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.items {
		if acc.OwnerUsername == oldUsername {
			acc.OwnerUsername = newUsername
		}
	}
	return nil
}

func (r *AccommodationRepository) ByOwner(ctx context.Context, username string) ([]accommodation.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owned := make([]accommodation.Accommodation, 0)
	for _, acc := range r.items {
		if acc.OwnerUsername == username {
			owned = append(owned, *acc)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].AccommodationID < owned[j].AccommodationID
	})
	return owned, nil
}

// RemoveByOwner deletes the owner's projections and returns their ids so
// callers can cascade to dependent stores.
func (r *AccommodationRepository) RemoveByOwner(ctx context.Context, username string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := make([]string, 0)
	for id, acc := range r.items {
		if acc.OwnerUsername == username {
			removed = append(removed, id)
			delete(r.items, id)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// IntervalRepository keeps availability intervals in memory.
type IntervalRepository struct {
	mu             sync.RWMutex
	items          map[string]*domainavailability.Interval
	accommodations *AccommodationRepository
}

// NewIntervalRepository builds an empty repository. The accommodation
// repository backs Search, which joins capacity and location filters.
func NewIntervalRepository(accommodations *AccommodationRepository) *IntervalRepository {
	return &IntervalRepository{
		items:          make(map[string]*domainavailability.Interval),
		accommodations: accommodations,
	}
}

// ByID returns the interval only while it is still valid.
func (r *IntervalRepository) ByID(ctx context.Context, id string) (*domainavailability.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	interval, ok := r.items[id]
	if !ok || !interval.Valid {
		return nil, nil
	}
	copied := *interval
	return &copied, nil
}

func (r *IntervalRepository) Insert(ctx context.Context, interval *domainavailability.Interval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if interval.ID == "" {
		interval.ID = uuid.NewString()
	}
	copied := *interval
	r.items[interval.ID] = &copied
	return nil
}

func (r *IntervalRepository) Overlapping(ctx context.Context, accommodationID string, query dates.Range) ([]domainavailability.Interval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainavailability.Interval, 0)
	for _, interval := range r.items {
		if !interval.Valid || interval.AccommodationID != accommodationID {
			continue
		}
		if interval.Range().Overlaps(query) {
			matches = append(matches, *interval)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start.Before(matches[j].Start)
	})
	return matches, nil
}

// CountOverlapping uses strict bounds so intervals that only touch the
// query at a boundary day do not count.
func (r *IntervalRepository) CountOverlapping(ctx context.Context, accommodationID string, query dates.Range) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, interval := range r.items {
		if !interval.Valid || interval.AccommodationID != accommodationID {
			continue
		}
		if interval.Start.Before(query.End) && interval.End.After(query.Start) {
			count++
		}
	}
	return count, nil
}

func (r *IntervalRepository) UpdateRange(ctx context.Context, id, accommodationID string, updated dates.Range) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	interval, ok := r.items[id]
	if !ok || interval.AccommodationID != accommodationID {
		return nil
	}
	interval.Start = updated.Start
	interval.End = updated.End
	return nil
}

func (r *IntervalRepository) Invalidate(ctx context.Context, id, accommodationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	interval, ok := r.items[id]
	if !ok || interval.AccommodationID != accommodationID {
		return nil
	}
	interval.Valid = false
	return nil
}

// Search returns ids of accommodations matching the capacity and location
// filters that have at least one valid interval overlapping the range.
func (r *IntervalRepository) Search(ctx context.Context, params domainavailability.SearchParams) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make(map[string]struct{})
	for _, interval := range r.items {
		if !interval.Valid {
			continue
		}
		if interval.Range().Overlaps(params.Range) {
			candidates[interval.AccommodationID] = struct{}{}
		}
	}

	matches := make([]string, 0, len(candidates))
	needle := strings.ToLower(params.Location)
	for id := range candidates {
		acc, err := r.accommodations.ByAccommodationID(ctx, id)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			continue
		}
		if params.Guests > 0 && (acc.MinCapacity > params.Guests || acc.MaxCapacity < params.Guests) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(acc.Location), needle) {
			continue
		}
		matches = append(matches, id)
	}
	sort.Strings(matches)
	return matches, nil
}

func (r *IntervalRepository) RemoveByAccommodations(ctx context.Context, accommodationIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[string]struct{}, len(accommodationIDs))
	for _, id := range accommodationIDs {
		drop[id] = struct{}{}
	}
	for id, interval := range r.items {
		if _, ok := drop[interval.AccommodationID]; ok {
			delete(r.items, id)
		}
	}
	return nil
}

// ReservationRepository keeps reservations in memory.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[string]*domainreservation.Reservation
}

// NewReservationRepository builds an empty repository.
func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[string]*domainreservation.Reservation)}
}

func (r *ReservationRepository) Insert(ctx context.Context, res *domainreservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	copied := *res
	r.items[res.ID] = &copied
	return nil
}

func (r *ReservationRepository) ByID(ctx context.Context, id string) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	copied := *res
	return &copied, nil
}

func (r *ReservationRepository) ByUsername(ctx context.Context, username string) ([]domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainreservation.Reservation, 0)
	for _, res := range r.items {
		if res.Username == username {
			matches = append(matches, *res)
		}
	}
	sortByStart(matches)
	return matches, nil
}

func (r *ReservationRepository) ByAccommodation(ctx context.Context, accommodationID string) ([]domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]domainreservation.Reservation, 0)
	for _, res := range r.items {
		if res.AccommodationID == accommodationID {
			matches = append(matches, *res)
		}
	}
	sortByStart(matches)
	return matches, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status domainreservation.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.items[id]; ok {
		res.Status = status
	}
	return nil
}

func (r *ReservationRepository) CancelPendingOverlapping(ctx context.Context, accommodationID string, query dates.Range) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.items {
		if res.AccommodationID != accommodationID || res.Status != domainreservation.StatusPending {
			continue
		}
		if res.Range().Overlaps(query) {
			res.Status = domainreservation.StatusCancelled
		}
	}
	return nil
}

func (r *ReservationRepository) CountFutureConfirmedByGuest(ctx context.Context, username string, after time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, res := range r.items {
		if res.Username == username && res.Status == domainreservation.StatusConfirmed && res.End.After(after) {
			count++
		}
	}
	return count, nil
}

func (r *ReservationRepository) CountFutureConfirmedByAccommodations(ctx context.Context, accommodationIDs []string, after time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[string]struct{}, len(accommodationIDs))
	for _, id := range accommodationIDs {
		ids[id] = struct{}{}
	}
	count := 0
	for _, res := range r.items {
		if _, ok := ids[res.AccommodationID]; !ok {
			continue
		}
		if res.Status == domainreservation.StatusConfirmed && res.End.After(after) {
			count++
		}
	}
	return count, nil
}

func (r *ReservationRepository) ExistsConfirmedStay(ctx context.Context, username string, accommodationIDs []string, now time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[string]struct{}, len(accommodationIDs))
	for _, id := range accommodationIDs {
		ids[id] = struct{}{}
	}
	for _, res := range r.items {
		if _, ok := ids[res.AccommodationID]; !ok {
			continue
		}
		if res.Username == username && res.Status == domainreservation.StatusConfirmed && !res.Start.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReservationRepository) UpdateUsername(ctx context.Context, oldUsername, newUsername string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.items {
		if res.Username == oldUsername {
			res.Username = newUsername
		}
	}
	return nil
}

func (r *ReservationRepository) RemoveByUsername(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, res := range r.items {
		if res.Username == username {
			delete(r.items, id)
		}
	}
	return nil
}

func sortByStart(reservations []domainreservation.Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].Start.Equal(reservations[j].Start) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].Start.Before(reservations[j].Start)
	})
}
