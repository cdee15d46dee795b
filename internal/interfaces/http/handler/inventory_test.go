package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesFor(t *testing.T) {
	values := func(role identity.Role) []string {
		var out []string
		for _, r := range routesFor(identity.Actor{Role: role}) {
			out = append(out, r.Value)
		}
		return out
	}

	assert.Equal(t, []string{"manufacturing:transit", "transit:wholesale"}, values(identity.RoleOwner))
	assert.Equal(t, []string{"manufacturing:transit"}, values(identity.RoleIncharge))
	assert.Equal(t, []string{"transit:wholesale"}, values(identity.RoleShopkeeper))
}

func TestTransferForm_Locations(t *testing.T) {
	from, to := transferForm{Route: "transit:wholesale"}.locations()
	assert.Equal(t, inventory.LocationTransit, from)
	assert.Equal(t, inventory.LocationWholesale, to)

	from, to = transferForm{FromLocation: "manufacturing", ToLocation: "transit"}.locations()
	assert.Equal(t, inventory.LocationManufacturing, from)
	assert.Equal(t, inventory.LocationTransit, to)
}

func TestInventoryHandler_Transfer(t *testing.T) {
	s := newTestServer(t)
	product := s.fx.Product("TS-01")
	s.fx.Stock(product.ID, inventory.LocationManufacturing, decimal.NewFromInt(50))

	move := func(route, qty string) (string, string) {
		form := url.Values{"product_id": {product.ID.String()}, "route": {route}, "quantity": {qty}}
		_, status, message := flash(t, s.post("/inventory/transfers", form))
		return status, message
	}

	t.Run("incharge ships to transit", func(t *testing.T) {
		s.user("incharge", identity.RoleIncharge)
		status, message := move("manufacturing:transit", "30")
		require.Equal(t, "success", status, message)
		assert.True(t, decimal.NewFromInt(20).Equal(s.fx.Quantity(product.ID, inventory.LocationManufacturing)))
		assert.True(t, decimal.NewFromInt(30).Equal(s.fx.Quantity(product.ID, inventory.LocationTransit)))
	})

	t.Run("incharge cannot receive at wholesale", func(t *testing.T) {
		status, message := move("transit:wholesale", "5")
		assert.Equal(t, "error", status)
		assert.Contains(t, message, "Your role cannot move stock")
	})

	t.Run("shopkeeper receives at wholesale", func(t *testing.T) {
		s.user("shop", identity.RoleShopkeeper)
		status, message := move("transit:wholesale", "30")
		require.Equal(t, "success", status, message)
		assert.True(t, s.fx.Quantity(product.ID, inventory.LocationTransit).IsZero())
		assert.True(t, decimal.NewFromInt(30).Equal(s.fx.Quantity(product.ID, inventory.LocationWholesale)))
	})

	t.Run("stock cannot go negative", func(t *testing.T) {
		status, _ := move("transit:wholesale", "1")
		assert.Equal(t, "error", status)
	})

	t.Run("backwards route", func(t *testing.T) {
		s.user("owner", identity.RoleOwner)
		status, _ := move("wholesale:manufacturing", "1")
		assert.Equal(t, "error", status)
	})

	t.Run("history lists the moves", func(t *testing.T) {
		w := s.get("/inventory/transfers?location=transit")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="manufacturing:transit"`)

		w = s.get("/inventory?location=wholesale")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "TS-01")
	})
}
