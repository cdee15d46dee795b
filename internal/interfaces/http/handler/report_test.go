package handler

import (
	"net/http"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_Export(t *testing.T) {
	s := newTestServer(t)
	product := s.fx.Product("TS-01")
	s.fx.Stock(product.ID, inventory.LocationWholesale, decimal.NewFromInt(12))
	s.user("shop", identity.RoleShopkeeper)

	t.Run("csv download", func(t *testing.T) {
		w := s.get("/reports/export?report=inventory&format=csv&location=wholesale&status=success&message=ok")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Regexp(t, `^attachment; filename="inventory_\d{8}_\d{6}\.csv"$`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "1", w.Header().Get("X-Export-Rows"))
		assert.Contains(t, w.Body.String(), "TS-01")
	})

	t.Run("xlsx download", func(t *testing.T) {
		w := s.get("/reports/export?report=transfers&format=xlsx")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "PK", w.Body.String()[:2], "xlsx files are zip archives")
	})

	t.Run("pdf without a renderer", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.get("/reports/export?report=inventory&format=pdf").Code)
	})

	t.Run("report outside the role", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, s.get("/reports/export?report=funds&format=csv").Code)
	})

	t.Run("unknown report", func(t *testing.T) {
		w := s.get("/reports/export?report=payroll")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Unknown report: payroll")
	})
}
