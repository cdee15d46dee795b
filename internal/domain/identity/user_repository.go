package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByIDForUpdate also locks the row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail ignores the user with excludeID so updates can keep their own email
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	// FindAll supports filters "role" and "active" ("1"/"0") plus Search over username, name and email
	FindAll(ctx context.Context, filter shared.Filter) ([]User, int64, error)
	// FindActiveByRoles returns active users holding any of the roles
	FindActiveByRoles(ctx context.Context, roles ...Role) ([]User, error)
	Count(ctx context.Context) (int64, error)
}
