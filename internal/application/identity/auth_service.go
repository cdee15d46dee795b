package identity

import (
	"context"
	"errors"
	"time"

	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errBadCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid username or password")

// AuthService handles login, logout and session resolution
type AuthService struct {
	repos   transaction.Repositories
	scope   transaction.Scope
	jwt     *auth.JWTService
	revoker auth.SessionRevoker
	logger  *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repos transaction.Repositories, scope transaction.Scope, jwt *auth.JWTService, revoker auth.SessionRevoker, logger *zap.Logger) *AuthService {
	return &AuthService{repos: repos, scope: scope, jwt: jwt, revoker: revoker, logger: logger}
}

// Login checks credentials, stamps last_login_at and issues a session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.repos.Users().FindByUsername(ctx, input.Username)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Info("Login failed", zap.String("username", user.Username), zap.String("ip", input.IPAddress))
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "This account is deactivated")
	}

	actor := actorFor(user, input.IPAddress, input.UserAgent)
	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		user.RecordLogin(time.Now())
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionLogin, activity.ModuleAuth, &user.ID,
			"%s logged in", user.Username)
	})
	if err != nil {
		return nil, err
	}

	session, err := s.jwt.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: session.Token, ExpiresAt: session.ExpiresAt, User: ToUserDTO(user)}, nil
}

// Authenticate turns a session token into the acting user. Revoked tokens,
// deleted users and deactivated users are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token, ipAddress, userAgent string) (identity.Actor, *auth.Claims, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return identity.Actor{}, nil, shared.ErrUnauthorized
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return identity.Actor{}, nil, err
	}
	if revoked {
		return identity.Actor{}, nil, shared.ErrUnauthorized
	}
	userID, err := claims.ParsedUserID()
	if err != nil {
		return identity.Actor{}, nil, shared.ErrUnauthorized
	}

	user, err := s.repos.Users().FindByID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return identity.Actor{}, nil, shared.ErrUnauthorized
	}
	if err != nil {
		return identity.Actor{}, nil, err
	}
	if !user.IsActive {
		return identity.Actor{}, nil, shared.ErrUnauthorized
	}
	return actorFor(user, ipAddress, userAgent), claims, nil
}

// Logout revokes the session and records the logout
func (s *AuthService) Logout(ctx context.Context, actor identity.Actor, claims *auth.Claims) error {
	if err := s.revoker.Revoke(ctx, claims.ID, claims.RemainingTTL(time.Now())); err != nil {
		return err
	}
	return s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionLogout, activity.ModuleAuth, actor.Ref(),
			"%s logged out", actor.Username)
	})
}

func actorFor(u *identity.User, ip, ua string) identity.Actor {
	return identity.Actor{
		UserID:    u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		IPAddress: ip,
		UserAgent: ua,
	}
}

