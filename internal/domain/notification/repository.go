package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// Repository defines notification persistence
type Repository interface {
	CreateBatch(ctx context.Context, ns []*Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	Update(ctx context.Context, n *Notification) error
	// FindForUser returns the user's notifications newest first, filter "unread" ("1") restricts to unread
	FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkAllRead returns how many notifications changed
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
