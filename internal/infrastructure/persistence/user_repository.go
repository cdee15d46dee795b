package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate finds a user and locks the row for the rest of the transaction
func (r *GormUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var user identity.User
	if err := forUpdate(r.db.WithContext(ctx)).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username, case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks if an email is taken by anyone other than excludeID
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&identity.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// FindAll returns users matching the filter with pagination
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&identity.User{})
	q = applyEquals(q, "users.role", filter, "role")
	switch filter.String("active") {
	case "1":
		q = q.Where("users.is_active = ?", true)
	case "0":
		q = q.Where("users.is_active = ?", false)
	}
	q = applySearch(q, filter.Search, "users.username", "users.full_name", "users.email")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := make([]identity.User, 0)
	q = applyOrder(q, filter, "users", UserSortFields, "created_at")
	if err := paginate(q, filter).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// FindActiveByRoles returns active users holding any of the roles
func (r *GormUserRepository) FindActiveByRoles(ctx context.Context, roles ...identity.Role) ([]identity.User, error) {
	users := make([]identity.User, 0)
	if len(roles) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND role IN ?", true, roles).
		Order("username").
		Find(&users).Error
	return users, err
}

// Count returns the number of users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).Count(&count).Error
	return count, err
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
