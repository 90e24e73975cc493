package accommodation

import "context"

// Accommodation is the availability-relevant projection of an accommodation
// registered in the accommodations service. It arrives over the event bus
// and is never created through this service's own API.
type Accommodation struct {
	AccommodationID    string `json:"accommodationId" bson:"accommodationId"`
	OwnerUsername      string `json:"ownerUsername" bson:"ownerUsername"`
	Location           string `json:"location" bson:"location"`
	MinCapacity        int    `json:"minCapacity" bson:"minCapacity"`
	MaxCapacity        int    `json:"maxCapacity" bson:"maxCapacity"`
	ConfirmationNeeded bool   `json:"confirmationNeeded" bson:"confirmationNeeded"`
}

type Repository interface {
	ByAccommodationID(ctx context.Context, id string) (*Accommodation, error)
	// Upsert inserts or overwrites by accommodation id, so duplicate
	// accommodation-created deliveries are safe.
	Upsert(ctx context.Context, acc *Accommodation) error
	UpdateOwnerUsername(ctx context.Context, oldUsername, newUsername string) error
	ByOwner(ctx context.Context, username string) ([]Accommodation, error)
	RemoveByOwner(ctx context.Context, username string) ([]string, error)
}
