package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
)

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Username string
	FullName string
	Email    string
	Phone    string
	Password string
	Role     identity.Role
}

// UpdateUserInput contains input for updating a user. An empty Password keeps the current one.
type UpdateUserInput struct {
	FullName string
	Email    string
	Phone    string
	Role     identity.Role
	Password string
}

// UserDTO is a user without credentials
type UserDTO struct {
	ID          uuid.UUID     `json:"id"`
	Username    string        `json:"username"`
	FullName    string        `json:"full_name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	Role        identity.Role `json:"role"`
	IsActive    bool          `json:"is_active"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// LoginInput contains the input for user login
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult contains the session of a successful login
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserDTO
}
