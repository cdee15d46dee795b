package identity

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the single role a user holds
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleOwner      Role = "owner"
	RoleIncharge   Role = "incharge"   // runs the manufacturing floor
	RoleShopkeeper Role = "shopkeeper" // runs the wholesale shop
)

// AllRoles lists every role in display order
var AllRoles = []Role{RoleAdmin, RoleOwner, RoleIncharge, RoleShopkeeper}

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleIncharge, RoleShopkeeper:
		return true
	}
	return false
}

// IsCapitalSource reports whether funds sent by this role skip the balance check
func (r Role) IsCapitalSource() bool {
	return r == RoleAdmin || r == RoleOwner
}

// BcryptCost is the bcrypt work factor; tests lower it to bcrypt.MinCost
var BcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,50}$`)

// User is an account that can sign in to the dashboard
type User struct {
	shared.BaseEntity
	Username     string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	FullName     string     `gorm:"size:100;not null" json:"full_name"`
	Email        string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         Role       `gorm:"size:20;not null;index" json:"role"`
	Phone        string     `gorm:"size:30" json:"phone"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user with a hashed password
func NewUser(username, fullName, email, password string, role Role) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			"Username must be 3-50 characters of letters, digits, dot, dash or underscore")
	}
	u := &User{
		BaseEntity: shared.NewBaseEntity(),
		Username:   username,
		IsActive:   true,
	}
	if err := u.UpdateProfile(fullName, email, "", role); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the editable profile fields
func (u *User) UpdateProfile(fullName, email, phone string, role Role) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Full name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid email address")
	}
	if !role.IsValid() {
		return shared.Errorf(shared.CodeInvalidInput, "Unknown role %q", role)
	}
	u.FullName = fullName
	u.Email = email
	u.Phone = strings.TrimSpace(phone)
	u.Role = role
	u.Touch()
	return nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password must be at most 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ToggleActivation flips the active flag. Users cannot deactivate themselves.
func (u *User) ToggleActivation(actorID string) error {
	if u.IsActive && u.ID.String() == actorID {
		return shared.NewDomainError(shared.CodeInvalidState, "You cannot deactivate your own account")
	}
	u.IsActive = !u.IsActive
	u.Touch()
	return nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

// HasAnyRole reports whether the user holds one of the roles
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
