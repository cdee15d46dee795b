package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_Products(t *testing.T) {
	s := newTestServer(t)
	s.user("incharge", identity.RoleIncharge)

	form := url.Values{"sku": {"TS-01"}, "name": {"Polo shirt"}, "category": {"shirts"}, "sale_price": {"450"}}
	path, status, message := flash(t, s.post("/products", form))
	assert.Equal(t, "/products", path)
	assert.Equal(t, "success", status)
	assert.Equal(t, "Product TS-01 created", message)

	w := s.get("/products?search=polo")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Polo shirt")

	form.Set("sale_price", "cheap")
	_, status, message = flash(t, s.post("/products", form))
	assert.Equal(t, "error", status)
	assert.Contains(t, message, "Must be a number")
}

func TestCatalogHandler_Materials(t *testing.T) {
	s := newTestServer(t)
	s.user("owner", identity.RoleOwner)

	form := url.Values{"code": {"FAB-1"}, "name": {"Cotton"}, "unit": {"meter"}, "min_stock_level": {"20"}}
	_, status, _ := flash(t, s.post("/raw-materials", form))
	assert.Equal(t, "success", status)

	w := s.get("/raw-materials")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FAB-1")

	form.Set("code", "FAB-2")
	form.Set("unit", "bucket")
	_, status, message := flash(t, s.post("/raw-materials", form))
	assert.Equal(t, "error", status)
	assert.Contains(t, message, "Unknown unit")
}

func TestCatalogHandler_RecordPurchase(t *testing.T) {
	s := newTestServer(t)
	material := s.fx.Material("FAB-1", decimal.Zero)

	t.Run("shopkeeper is refused", func(t *testing.T) {
		s.user("shop", identity.RoleShopkeeper)
		form := url.Values{"material_id": {material.ID.String()}, "supplier_name": {"Mills"}, "quantity": {"10"}, "unit_price": {"5"}}
		_, status, _ := flash(t, s.post("/purchases", form))
		assert.Equal(t, "error", status)
	})

	t.Run("incharge records a purchase", func(t *testing.T) {
		s.user("incharge", identity.RoleIncharge)
		form := url.Values{
			"material_id":   {material.ID.String()},
			"supplier_name": {"Mills"},
			"quantity":      {"10"},
			"unit_price":    {"12.50"},
			"purchase_date": {"2024-05-02"},
		}
		_, status, message := flash(t, s.post("/purchases", form))
		assert.Equal(t, "success", status)
		assert.Equal(t, "Purchase of 125.00 recorded", message)

		m, err := s.fx.Repos().Materials().FindByID(t.Context(), material.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10).Equal(m.StockQuantity))

		w := s.get("/purchases?date_from=2024-05-01&date_to=2024-05-31")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Mills")
		assert.Contains(t, w.Body.String(), "125.00")
	})

	t.Run("zero quantity", func(t *testing.T) {
		form := url.Values{"material_id": {material.ID.String()}, "supplier_name": {"Mills"}, "quantity": {"0"}, "unit_price": {"5"}}
		_, status, message := flash(t, s.post("/purchases", form))
		assert.Equal(t, "error", status)
		assert.Contains(t, message, "greater than 0")
	})
}
