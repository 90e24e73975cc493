package ginserver

import (
	"encoding/json"
	"log/slog"

	gin "github.com/gin-gonic/gin"

	"bookstay/internal/domain/shared/fault"
	domainuser "bookstay/internal/domain/user"
)

const principalContextKey = "bookstay.principal"

// UserMiddleware trusts the gateway-provided X-User header carrying the
// authenticated identity as JSON. Absent or malformed headers leave the
// request anonymous; handlers needing an identity fail closed.
type UserMiddleware struct {
	Logger *slog.Logger
}

func (m UserMiddleware) Handle(c *gin.Context) {
	raw := c.GetHeader("X-User")
	if raw == "" {
		c.Next()
		return
	}
	var logged domainuser.LoggedUser
	if err := json.Unmarshal([]byte(raw), &logged); err != nil {
		if m.Logger != nil {
			m.Logger.Debug("discarding malformed X-User header", "error", err)
		}
		c.Next()
		return
	}
	if !logged.Valid() {
		c.Next()
		return
	}
	c.Set(principalContextKey, logged)
	c.Next()
}

// loggedUser fails with NotFound when no identity was forwarded, matching
// the service's public contract for unauthenticated calls.
func loggedUser(c *gin.Context) (domainuser.LoggedUser, error) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return domainuser.LoggedUser{}, fault.NotFound("logged user data not provided")
	}
	logged, ok := val.(domainuser.LoggedUser)
	if !ok {
		return domainuser.LoggedUser{}, fault.NotFound("logged user data not provided")
	}
	return logged, nil
}
