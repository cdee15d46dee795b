// Package notification serves the bell icon and builds role-addressed
// notifications for the write services.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// Message is the content of a notification before it is addressed
type Message struct {
	Type      notification.Type
	Title     string
	Body      string
	Link      string
	RelatedID *uuid.UUID
}

// NotifyRoles stores one notification for every active user holding one of the
// roles. It runs on the caller's repositories so it commits with the caller's
// transaction. The stored notifications are returned for publishing after commit.
func NotifyRoles(ctx context.Context, users identity.UserRepository, repo notification.Repository, msg Message, roles ...identity.Role) ([]*notification.Notification, error) {
	recipients, err := users.FindActiveByRoles(ctx, roles...)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(recipients))
	for i := range recipients {
		ids[i] = recipients[i].ID
	}
	return NotifyUsers(ctx, repo, msg, ids...)
}

// NotifyUsers stores the message for each user id, skipping duplicates
func NotifyUsers(ctx context.Context, repo notification.Repository, msg Message, userIDs ...uuid.UUID) ([]*notification.Notification, error) {
	ns, err := notification.Fanout(userIDs, msg.Type, msg.Title, msg.Body, msg.Link, msg.RelatedID)
	if err != nil {
		return nil, err
	}
	if len(ns) == 0 {
		return ns, nil
	}
	if err := repo.CreateBatch(ctx, ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// NotificationService reads and acknowledges a user's notifications
type NotificationService struct {
	repo   notification.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger, now: time.Now}
}

// ListForUser returns a page of the actor's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, actor identity.Actor, filter shared.Filter) (shared.Paginated[notification.Notification], error) {
	filter = filter.Normalize()
	items, total, err := s.repo.FindForUser(ctx, actor.UserID, filter)
	if err != nil {
		return shared.Paginated[notification.Notification]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Recent returns the newest notifications for the dashboard
func (s *NotificationService) Recent(ctx context.Context, actor identity.Actor, limit int) ([]notification.Notification, error) {
	f := shared.DefaultFilter()
	f.PageSize = limit
	items, _, err := s.repo.FindForUser(ctx, actor.UserID, f)
	return items, err
}

// UnreadCount returns how many notifications the actor has not read
func (s *NotificationService) UnreadCount(ctx context.Context, actor identity.Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.UserID)
}

// MarkRead marks one notification read. Only its recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	wasRead := n.IsRead
	if err := n.MarkRead(actor.UserID, s.now()); err != nil {
		return err
	}
	if wasRead {
		return nil
	}
	return s.repo.Update(ctx, n)
}

// MarkAllRead marks every unread notification of the actor read
func (s *NotificationService) MarkAllRead(ctx context.Context, actor identity.Actor) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("Notifications marked read", zap.String("user_id", actor.UserID.String()), zap.Int64("count", n))
	return n, nil
}
