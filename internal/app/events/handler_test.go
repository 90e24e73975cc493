package events

import (
	"context"
	"encoding/json"
	"testing"

	"bookstay/internal/domain/accommodation"
)

type availabilitySpy struct {
	added   []string
	renamed [][2]string
	removed []string
}

func (s *availabilitySpy) AddAccommodation(ctx context.Context, acc *accommodation.Accommodation) error {
	s.added = append(s.added, acc.AccommodationID)
	return nil
}

func (s *availabilitySpy) RenameOwner(ctx context.Context, oldUsername, newUsername string) error {
	s.renamed = append(s.renamed, [2]string{oldUsername, newUsername})
	return nil
}

func (s *availabilitySpy) RemoveForOwner(ctx context.Context, username string) error {
	s.removed = append(s.removed, username)
	return nil
}

type reservationSpy struct {
	renamed [][2]string
	removed []string
}

func (s *reservationSpy) RenameGuest(ctx context.Context, oldUsername, newUsername string) error {
	s.renamed = append(s.renamed, [2]string{oldUsername, newUsername})
	return nil
}

func (s *reservationSpy) RemoveForUsername(ctx context.Context, username string) error {
	s.removed = append(s.removed, username)
	return nil
}

func TestHandleAccommodationCreated(t *testing.T) {
	availability := &availabilitySpy{}
	handler := Handler{Availability: availability, Reservations: &reservationSpy{}}

	payload, _ := json.Marshal(accommodation.Accommodation{
		AccommodationID: "acc-1",
		OwnerUsername:   "marko",
		Location:        "Novi Sad",
		MinCapacity:     1,
		MaxCapacity:     4,
	})
	if err := handler.Handle(context.Background(), TopicAccommodationCreated, payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(availability.added) != 1 || availability.added[0] != "acc-1" {
		t.Fatalf("expected acc-1 registered, got %v", availability.added)
	}
}

func TestHandleUsernameUpdatedFansOut(t *testing.T) {
	availability := &availabilitySpy{}
	reservations := &reservationSpy{}
	handler := Handler{Availability: availability, Reservations: reservations}

	payload, _ := json.Marshal(UsernameUpdated{OldUsername: "marko", NewUsername: "marko2"})
	if err := handler.Handle(context.Background(), TopicUsernameUpdated, payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	want := [2]string{"marko", "marko2"}
	if len(availability.renamed) != 1 || availability.renamed[0] != want {
		t.Fatalf("expected owner rename, got %v", availability.renamed)
	}
	if len(reservations.renamed) != 1 || reservations.renamed[0] != want {
		t.Fatalf("expected guest rename, got %v", reservations.renamed)
	}
}

func TestHandleUserDeletedCascades(t *testing.T) {
	availability := &availabilitySpy{}
	reservations := &reservationSpy{}
	handler := Handler{Availability: availability, Reservations: reservations}

	payload, _ := json.Marshal(UserDeleted{Username: "marko"})
	if err := handler.Handle(context.Background(), TopicUserDeleted, payload); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(availability.removed) != 1 || availability.removed[0] != "marko" {
		t.Fatalf("expected owner cascade, got %v", availability.removed)
	}
	if len(reservations.removed) != 1 || reservations.removed[0] != "marko" {
		t.Fatalf("expected reservation cascade, got %v", reservations.removed)
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	handler := Handler{Availability: &availabilitySpy{}, Reservations: &reservationSpy{}}
	if err := handler.Handle(context.Background(), TopicUserDeleted, []byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHandleUnknownTopicIsNoOp(t *testing.T) {
	handler := Handler{Availability: &availabilitySpy{}, Reservations: &reservationSpy{}}
	if err := handler.Handle(context.Background(), "payments-settled", []byte("{}")); err != nil {
		t.Fatalf("expected unknown topic to be ignored, got %v", err)
	}
}
