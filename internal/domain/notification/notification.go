package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// Type classifies a notification for the bell icon
type Type string

const (
	TypeInventoryTransfer Type = "inventory_transfer"
	TypeBatchCompleted    Type = "batch_completed"
	TypeFundTransfer      Type = "fund_transfer"
	TypeLowStock          Type = "low_stock"
)

// Notification is a message addressed to one user
type Notification struct {
	shared.BaseEntity
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_read" json:"user_id"`
	Type      Type       `gorm:"size:50;not null" json:"type"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Link      string     `gorm:"size:255" json:"link,omitempty"`
	RelatedID *uuid.UUID `gorm:"type:uuid" json:"related_id,omitempty"`
	IsRead    bool       `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// New creates an unread notification
func New(userID uuid.UUID, typ Type, title, message, link string, relatedID *uuid.UUID) (*Notification, error) {
	title = strings.TrimSpace(title)
	if userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Notification recipient is required")
	}
	if title == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Notification title is required")
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Message:    strings.TrimSpace(message),
		Link:       link,
		RelatedID:  relatedID,
	}, nil
}

// Fanout builds one notification per recipient with the same content
func Fanout(recipients []uuid.UUID, typ Type, title, message, link string, relatedID *uuid.UUID) ([]*Notification, error) {
	seen := make(map[uuid.UUID]struct{}, len(recipients))
	out := make([]*Notification, 0, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		n, err := New(id, typ, title, message, link, relatedID)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkRead marks the notification read by its owner
func (n *Notification) MarkRead(userID uuid.UUID, at time.Time) error {
	if n.UserID != userID {
		return shared.ErrForbidden
	}
	if n.IsRead {
		return nil
	}
	n.IsRead = true
	n.ReadAt = &at
	n.Touch()
	return nil
}

// EventTypeCreated is published once per committed notification
const EventTypeCreated = "notification.created"

// CreatedEvent is pushed to the recipient's open websocket connections
type CreatedEvent struct {
	shared.BaseDomainEvent
	Notification Notification `json:"notification"`
}

// NewCreatedEvent wraps a stored notification
func NewCreatedEvent(n *Notification) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreated, "notification", n.ID),
		Notification:    *n,
	}
}

// Events wraps each notification in a CreatedEvent
func Events(ns []*Notification) []shared.DomainEvent {
	out := make([]shared.DomainEvent, 0, len(ns))
	for _, n := range ns {
		out = append(out, NewCreatedEvent(n))
	}
	return out
}
