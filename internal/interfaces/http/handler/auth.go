package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/middleware"
)

// AuthHandler signs users in and out
type AuthHandler struct {
	BaseHandler
	auth   *appidentity.AuthService
	cookie string
	secure bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(base BaseHandler, auth *appidentity.AuthService, cfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{BaseHandler: base, auth: auth, cookie: cfg.CookieName, secure: cfg.CookieSecure}
}

type loginView struct {
	Next     string
	Username string
}

type loginForm struct {
	Username string `form:"username" binding:"required,max=50"`
	Password string `form:"password" binding:"required,max=72"`
	Next     string `form:"next"`
}

// ShowLogin renders the sign-in form
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.render(c, "login", "Sign in", "", loginView{
		Next:     safeNext(c.Query("next")),
		Username: c.Query("username"),
	})
}

// Login checks the credentials and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		middleware.RedirectWithFlash(c, loginPath(form.Next, form.Username), middleware.FlashError, "Enter your username and password")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), appidentity.LoginInput{
		Username:  strings.ToLower(strings.TrimSpace(form.Username)),
		Password:  form.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		_, message := h.describe(c, err)
		middleware.RedirectWithFlash(c, loginPath(form.Next, form.Username), middleware.FlashError, message)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie, result.Token, int(time.Until(result.ExpiresAt).Seconds()), "/", "", h.secure, true)
	c.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

// Logout revokes the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := middleware.GetClaims(c); claims != nil {
		if err := h.auth.Logout(c.Request.Context(), actor(c), claims); err != nil {
			h.describe(c, err)
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie, "", -1, "/", "", h.secure, true)
	h.succeed(c, "/login", "You have been signed out")
}

// safeNext only follows local paths so the login form cannot redirect off-site
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.HasPrefix(next, "/login") || strings.HasPrefix(next, "/logout") {
		return "/"
	}
	return next
}

func loginPath(next, username string) string {
	q := url.Values{}
	if n := safeNext(next); n != "/" {
		q.Set("next", n)
	}
	if username != "" {
		q.Set("username", username)
	}
	if len(q) == 0 {
		return "/login"
	}
	return "/login?" + q.Encode()
}
