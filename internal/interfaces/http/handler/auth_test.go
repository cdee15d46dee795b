package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/sales?page=2", "/sales?page=2"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"/login", "/"},
		{"/logout", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next))
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t)
	s.fx.User("clerk", identity.RoleShopkeeper)

	t.Run("sets the session cookie", func(t *testing.T) {
		w := s.post("/login", url.Values{"username": {"Clerk"}, "password": {"password123"}, "next": {"/sales"}})

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/sales", w.Header().Get("Location"))
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, testJWT.CookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("wrong password returns to the form", func(t *testing.T) {
		w := s.post("/login", url.Values{"username": {"clerk"}, "password": {"nope-nope"}, "next": {"/sales"}})

		path, status, message := flash(t, w)
		assert.Equal(t, "/login", path)
		assert.Equal(t, "error", status)
		assert.NotEmpty(t, message)
		assert.Empty(t, w.Result().Cookies())
		assert.Contains(t, w.Header().Get("Location"), "username=clerk")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, status, message := flash(t, s.post("/login", url.Values{}))
		assert.Equal(t, "error", status)
		assert.Equal(t, "Enter your username and password", message)
	})
}

func TestAuthHandler_ShowLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/login?next=/inventory&status=error&message=Session+expired")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="/inventory"`)
	assert.Contains(t, w.Body.String(), "Session expired")
}

func TestAuthHandler_Logout(t *testing.T) {
	s := newTestServer(t)
	s.user("owner", identity.RoleOwner)

	w := s.post("/logout", nil)

	path, status, _ := flash(t, w)
	assert.Equal(t, "/login", path)
	assert.Equal(t, "success", status)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}
