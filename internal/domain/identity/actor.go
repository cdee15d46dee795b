package identity

import (
	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// Actor is the authenticated user behind a request, plus the request
// metadata that ends up in the activity log.
type Actor struct {
	UserID    uuid.UUID
	Username  string
	FullName  string
	Role      Role
	IPAddress string
	UserAgent string
}

// SystemActor is used for bootstrap and other non-request writes
func SystemActor() Actor {
	return Actor{Username: "system", Role: RoleAdmin}
}

// Ref returns the user id for nullable columns, nil for the system actor
func (a Actor) Ref() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}

// HasAnyRole reports whether the actor holds one of the roles
func (a Actor) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Require returns shared.ErrForbidden unless the actor holds one of the roles
func (a Actor) Require(roles ...Role) error {
	if a.HasAnyRole(roles...) {
		return nil
	}
	return shared.ErrForbidden
}
