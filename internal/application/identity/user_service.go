package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	repos  transaction.Repositories
	scope  transaction.Scope
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repos transaction.Repositories, scope transaction.Scope, logger *zap.Logger) *UserService {
	return &UserService{repos: repos, scope: scope, logger: logger}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, actor identity.Actor, input CreateUserInput) (*UserDTO, error) {
	if err := actor.Require(identity.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := identity.NewUser(input.Username, input.FullName, input.Email, input.Password, input.Role)
	if err != nil {
		return nil, err
	}
	user.Phone = strings.TrimSpace(input.Phone)

	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		exists, err := tx.Users().ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if exists {
			return shared.Errorf(shared.CodeAlreadyExists, "Username %q is already taken", user.Username)
		}
		if err := s.ensureEmailFree(ctx, tx, user.Email, nil); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionCreate, activity.ModuleUsers, &user.ID,
			"Created user %s with role %s", user.Username, user.Role)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	dto := ToUserDTO(user)
	return &dto, nil
}

// GetByID returns a user without credentials
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repos.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[UserDTO], error) {
	filter = filter.Normalize()
	users, total, err := s.repos.Users().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[UserDTO]{}, err
	}
	items := make([]UserDTO, len(users))
	for i := range users {
		items[i] = ToUserDTO(&users[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListActive returns every active user, for pickers
func (s *UserService) ListActive(ctx context.Context) ([]UserDTO, error) {
	users, err := s.repos.Users().FindActiveByRoles(ctx, identity.AllRoles...)
	if err != nil {
		return nil, err
	}
	items := make([]UserDTO, len(users))
	for i := range users {
		items[i] = ToUserDTO(&users[i])
	}
	return items, nil
}

// Update edits profile fields and, when given, the password
func (s *UserService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	if err := actor.Require(identity.RoleAdmin); err != nil {
		return nil, err
	}

	var user *identity.User
	err := s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		var err error
		user, err = tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if user.ID == actor.UserID && input.Role != user.Role {
			return shared.NewDomainError(shared.CodeInvalidState, "You cannot change your own role")
		}
		if err := user.UpdateProfile(input.FullName, input.Email, input.Phone, input.Role); err != nil {
			return err
		}
		if err := s.ensureEmailFree(ctx, tx, user.Email, &user.ID); err != nil {
			return err
		}
		if input.Password != "" {
			if err := user.SetPassword(input.Password); err != nil {
				return err
			}
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionUpdate, activity.ModuleUsers, &user.ID,
			"Updated user %s", user.Username)
	})
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// ToggleActivation flips the active flag of a user
func (s *UserService) ToggleActivation(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserDTO, error) {
	if err := actor.Require(identity.RoleAdmin); err != nil {
		return nil, err
	}

	var user *identity.User
	err := s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		var err error
		user, err = tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := user.ToggleActivation(actor.UserID.String()); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		action, verb := activity.ActionActivate, "Activated"
		if !user.IsActive {
			action, verb = activity.ActionDeactivate, "Deactivated"
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, action, activity.ModuleUsers, &user.ID,
			"%s user %s", verb, user.Username)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User activation toggled",
		zap.String("user_id", user.ID.String()),
		zap.Bool("is_active", user.IsActive),
		zap.String("actor", actor.Username),
	)
	dto := ToUserDTO(user)
	return &dto, nil
}

// EnsureBootstrapAdmin creates the first admin on an empty database. When no
// password is configured a random one is generated and logged once.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, username, email, password string) (bool, error) {
	count, err := s.repos.Users().Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	generated := password == ""
	if generated {
		password, err = randomPassword()
		if err != nil {
			return false, err
		}
	}

	if _, err := s.Create(ctx, identity.SystemActor(), CreateUserInput{
		Username: username,
		FullName: "Administrator",
		Email:    email,
		Password: password,
		Role:     identity.RoleAdmin,
	}); err != nil {
		return false, err
	}

	fields := []zap.Field{zap.String("username", username)}
	if generated {
		fields = append(fields, zap.String("password", password))
	}
	s.logger.Warn("Bootstrap admin account created, change its password after the first login", fields...)
	return true, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, tx transaction.Repositories, email string, excludeID *uuid.UUID) error {
	exists, err := tx.Users().ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.Errorf(shared.CodeAlreadyExists, "Email %s is already in use", email)
	}
	return nil
}

func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
