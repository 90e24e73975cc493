// Package events defines the cross-service notification contracts. All
// messages are fire-and-forget JSON; consumed topics must be handled
// idempotently because the bus may redeliver.
package events

import "context"

const (
	TopicAccommodationCreated = "accommodation-created"
	TopicUsernameUpdated      = "username-updated"
	TopicUserDeleted          = "user-deleted"
)

type UsernameUpdated struct {
	OldUsername string `json:"oldUsername"`
	NewUsername string `json:"newUsername"`
}

type UserDeleted struct {
	Username string `json:"username"`
}

// Publisher is the outbound side of the bus: the user-deleted fan-out is
// the only notification this service emits.
type Publisher interface {
	PublishUserDeleted(ctx context.Context, username string) error
}
