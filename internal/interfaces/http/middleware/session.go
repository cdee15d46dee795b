package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/auth"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Session context keys
const (
	ActorKey      = "actor"
	ClaimsKey     = "session_claims"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator resolves a session token to the acting user
type Authenticator interface {
	Authenticate(ctx context.Context, token, ipAddress, userAgent string) (identity.Actor, *auth.Claims, error)
}

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	Authenticator Authenticator
	// CookieName is the HttpOnly cookie carrying the token for page requests
	CookieName string
	// LoginPath is where unauthenticated page requests are sent
	LoginPath string
	Logger    *zap.Logger
}

// Session authenticates the request from the session cookie or a Bearer
// header. Pages without a valid session are redirected to the login page,
// API calls get a 401 envelope.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := extractToken(c, cfg.CookieName)
		if token == "" {
			unauthenticated(c, cfg)
			return
		}

		actor, claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token, c.ClientIP(), c.Request.UserAgent())
		if err != nil {
			if !errors.Is(err, shared.ErrUnauthorized) {
				cfg.Logger.Error("Session lookup failed", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			}
			unauthenticated(c, cfg)
			return
		}

		c.Set(ActorKey, actor)
		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, actor.UserID.String())
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader(AuthHeaderKey); strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimPrefix(header, BearerPrefix)
	}
	if cookieName == "" {
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

func unauthenticated(c *gin.Context, cfg SessionConfig) {
	if IsAPIRequest(c) {
		abort(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	if cfg.CookieName != "" {
		c.SetCookie(cfg.CookieName, "", -1, "/", "", false, true)
	}
	target := cfg.LoginPath
	if c.Request.Method == http.MethodGet && c.Request.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	}
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}

// RequireRoles rejects actors holding none of the roles
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abort(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !actor.HasAnyRole(roles...) {
			abort(c, dto.ErrCodeForbidden, "You do not have access to this page")
			return
		}
		c.Next()
	}
}

// GetActor returns the user set by Session
func GetActor(c *gin.Context) (identity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}

// GetClaims returns the session claims set by Session
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
