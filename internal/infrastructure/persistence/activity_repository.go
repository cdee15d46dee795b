package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements activity.LogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends a log entry
func (r *GormActivityLogRepository) Create(ctx context.Context, l *activity.Log) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// FindAll returns log entries joined with the acting user, newest first
func (r *GormActivityLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]activity.LogRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&activity.Log{}).
		Joins("LEFT JOIN users ON users.id = activity_logs.user_id")
	q = applyDateRange(q, "activity_logs.created_at", filter)
	q = applyEquals(q, "activity_logs.user_id", filter, "user_id")
	q = applyEquals(q, "activity_logs.action", filter, "action")
	q = applyEquals(q, "activity_logs.module", filter, "module")
	q = applySearch(q, filter.Search, "activity_logs.description", "users.username")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]activity.LogRow, 0)
	q = q.Select("activity_logs.*, users.username AS username, users.full_name AS full_name").
		Order("activity_logs.created_at " + ValidateSortOrder(filter.OrderDir))
	if err := paginate(q, filter).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DistinctActions lists every recorded action for the filter dropdown
func (r *GormActivityLogRepository) DistinctActions(ctx context.Context) ([]string, error) {
	actions := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&activity.Log{}).
		Distinct("action").
		Order("action").
		Pluck("action", &actions).Error
	return actions, err
}

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateBatch inserts notifications in one statement
func (r *GormNotificationRepository) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(ns).Error
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Update saves a notification
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Save(n).Error
}

// FindForUser returns the user's notifications, newest first
func (r *GormNotificationRepository) FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]notification.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&notification.Notification{}).Where("user_id = ?", userID)
	if filter.String("unread") == "1" {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	ns := make([]notification.Notification, 0)
	if err := paginate(q.Order("created_at DESC"), filter).Find(&ns).Error; err != nil {
		return nil, 0, err
	}
	return ns, total, nil
}

// CountUnread counts the user's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead marks every unread notification of the user as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now, "updated_at": now})
	return result.RowsAffected, result.Error
}

var (
	_ activity.LogRepository  = (*GormActivityLogRepository)(nil)
	_ notification.Repository = (*GormNotificationRepository)(nil)
)
