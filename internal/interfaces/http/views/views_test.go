package views

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"12.5", "12.50"},
		{"1234567.891", "1,234,567.89"},
		{"-0.456", "-0.46"},
		{"-1500", "-1,500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, money(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestQty(t *testing.T) {
	assert.Equal(t, "1,250", qty(decimal.RequireFromString("1250.0000")))
	assert.Equal(t, "3.5", qty(decimal.RequireFromString("3.5000")))
	assert.Equal(t, "0", qty(decimal.Zero))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Bank Transfer", title("bank_transfer"))
	assert.Equal(t, "Shopkeeper", title(identity.RoleShopkeeper))
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15", formatDate(day))
	assert.Equal(t, "2024-03-15 09:30", formatDateTime(&day))

	var missing *time.Time
	assert.Empty(t, formatDate(missing))
	assert.Empty(t, formatDate(time.Time{}))
}

func TestPager(t *testing.T) {
	q := url.Values{"status": {"pending"}, "page": {"2"}}

	p := pager(q, 2, 3, 45)
	assert.Equal(t, "?page=1&status=pending", p.PrevURL)
	assert.Equal(t, "?page=3&status=pending", p.NextURL)
	assert.Equal(t, []string{"2"}, q["page"], "the request query is not modified")

	last := pager(q, 3, 3, 45)
	assert.Empty(t, last.NextURL)
	first := pager(q, 1, 1, 0)
	assert.Empty(t, first.PrevURL)
}

func TestExports(t *testing.T) {
	p := Page{Query: url.Values{"location": {"transit"}, "page": {"4"}}}

	links := exports("inventory", p)
	require.Len(t, links, 2)
	assert.Equal(t, "/reports/export?format=csv&location=transit&report=inventory", links[0].URL)

	p.PDF = true
	links = exports("inventory", p)
	require.Len(t, links, 3)
	assert.Equal(t, "PDF", links[2].Label)
}

func TestPageCan(t *testing.T) {
	assert.False(t, Page{}.Can("admin"))

	p := Page{User: &identity.Actor{UserID: uuid.New(), Role: identity.RoleOwner}}
	assert.True(t, p.Can("admin", "owner"))
	assert.False(t, p.Can("shopkeeper"))
}

func TestRenderer_ParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"activity_logs", "batch_detail", "batches", "dashboard", "error", "finance_summary",
		"funds", "inventory", "login", "notifications", "products", "purchases",
		"raw_materials", "sale_detail", "sales", "transfers", "users",
	}, r.Names())
}

func TestRenderer_Instance(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	page := Page{
		Title: "Sign in",
		Flash: Flash{Status: "error", Message: "Invalid username or password"},
		Data:  map[string]string{"Next": "/sales", "Username": "clerk"},
	}
	require.NoError(t, r.Instance("login", page).Render(w))

	body := w.Body.String()
	assert.Contains(t, body, "<title>Sign in · GMS</title>")
	assert.Contains(t, body, "flash-error")
	assert.Contains(t, body, `value="/sales"`)
	assert.NotContains(t, body, "sidebar", "anonymous pages have no navigation")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.Instance("missing", Page{}).Render(w))
	assert.Contains(t, w.Body.String(), "unknown page")
}
