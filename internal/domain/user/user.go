package user

import (
	"strings"

	"bookstay/internal/domain/shared/fault"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
)

// LoggedUser is the caller identity as authenticated by the API gateway
// and forwarded in the X-User header.
type LoggedUser struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u LoggedUser) Valid() bool {
	return strings.TrimSpace(u.Username) != "" && u.Role != ""
}

// AuthorizeHost fails closed: anything but an exact host role is rejected.
func AuthorizeHost(role Role) error {
	if role != RoleHost {
		return fault.Forbidden("user is not a host")
	}
	return nil
}

func AuthorizeGuest(role Role) error {
	if role != RoleGuest {
		return fault.Forbidden("user is not a guest")
	}
	return nil
}
