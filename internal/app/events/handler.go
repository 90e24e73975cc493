package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"bookstay/internal/domain/accommodation"
)

// AvailabilityEvents is the slice of the availability service the bus
// handler needs.
type AvailabilityEvents interface {
	AddAccommodation(ctx context.Context, acc *accommodation.Accommodation) error
	RenameOwner(ctx context.Context, oldUsername, newUsername string) error
	RemoveForOwner(ctx context.Context, username string) error
}

// ReservationEvents is the slice of the reservation service the bus
// handler needs.
type ReservationEvents interface {
	RenameGuest(ctx context.Context, oldUsername, newUsername string) error
	RemoveForUsername(ctx context.Context, username string) error
}

// Handler applies consumed bus notifications. Every branch is idempotent:
// accommodation upserts overwrite, renames of unknown users match nothing,
// deletes of absent users are no-ops.
type Handler struct {
	Availability AvailabilityEvents
	Reservations ReservationEvents
	Logger       *slog.Logger
}

func (h Handler) Handle(ctx context.Context, topic string, payload []byte) error {
	switch topic {
	case TopicAccommodationCreated:
		var acc accommodation.Accommodation
		if err := json.Unmarshal(payload, &acc); err != nil {
			return fmt.Errorf("decode %s: %w", topic, err)
		}
		h.log("registering accommodation", "accommodation_id", acc.AccommodationID, "owner", acc.OwnerUsername)
		return h.Availability.AddAccommodation(ctx, &acc)

	case TopicUsernameUpdated:
		var change UsernameUpdated
		if err := json.Unmarshal(payload, &change); err != nil {
			return fmt.Errorf("decode %s: %w", topic, err)
		}
		h.log("renaming user", "old", change.OldUsername, "new", change.NewUsername)
		if err := h.Availability.RenameOwner(ctx, change.OldUsername, change.NewUsername); err != nil {
			return err
		}
		return h.Reservations.RenameGuest(ctx, change.OldUsername, change.NewUsername)

	case TopicUserDeleted:
		var deleted UserDeleted
		if err := json.Unmarshal(payload, &deleted); err != nil {
			return fmt.Errorf("decode %s: %w", topic, err)
		}
		h.log("removing entities for deleted user", "username", deleted.Username)
		if err := h.Availability.RemoveForOwner(ctx, deleted.Username); err != nil {
			return err
		}
		return h.Reservations.RemoveForUsername(ctx, deleted.Username)
	}
	h.log("ignoring message on unexpected topic", "topic", topic)
	return nil
}

func (h Handler) log(msg string, args ...any) {
	if h.Logger != nil {
		h.Logger.Info(msg, args...)
	}
}
