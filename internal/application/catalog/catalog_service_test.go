package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence/persistencetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*CatalogService, *persistencetest.Fixtures) {
	db := persistencetest.NewDB(t)
	svc := NewCatalogService(persistence.NewGormRepositories(db), persistence.NewGormTransactionScope(db), zap.NewNop())
	return svc, persistencetest.NewFixtures(t, db)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	svc, fx := newService(t)
	ctx := context.Background()
	owner := fx.Actor(fx.User("owner", identity.RoleOwner))

	p, err := svc.CreateProduct(ctx, owner, CreateProductInput{SKU: "tsh-001", Name: "T-Shirt", Category: "shirts", SalePrice: decimal.NewFromInt(450)})
	require.NoError(t, err)
	assert.Equal(t, "TSH-001", p.SKU)

	_, err = svc.CreateProduct(ctx, owner, CreateProductInput{SKU: "TSH-001", Name: "Other"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	shop := fx.Actor(fx.User("shop", identity.RoleShopkeeper))
	_, err = svc.CreateProduct(ctx, shop, CreateProductInput{SKU: "X-1", Name: "X"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	page, err := svc.ListProducts(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestCatalogService_CreateMaterial(t *testing.T) {
	svc, fx := newService(t)
	ctx := context.Background()
	admin := fx.Actor(fx.User("admin", identity.RoleAdmin))

	m, err := svc.CreateMaterial(ctx, admin, CreateMaterialInput{Code: "cot-1", Name: "Cotton", Unit: catalog.UnitMeter, MinStockLevel: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.True(t, m.StockQuantity.IsZero())

	_, err = svc.CreateMaterial(ctx, admin, CreateMaterialInput{Code: "COT-1", Name: "Dup", Unit: catalog.UnitMeter})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = svc.CreateMaterial(ctx, admin, CreateMaterialInput{Code: "BAD", Name: "Bad", Unit: "litre"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCatalogService_RecordPurchase(t *testing.T) {
	svc, fx := newService(t)
	ctx := context.Background()
	incharge := fx.Actor(fx.User("incharge", identity.RoleIncharge))
	m := fx.Material("DENIM", decimal.Zero)

	t.Run("adds stock and computes total", func(t *testing.T) {
		p, err := svc.RecordPurchase(ctx, incharge, RecordPurchaseInput{
			MaterialID:   m.ID,
			SupplierName: "Textile Co",
			Quantity:     decimal.NewFromInt(40),
			UnitPrice:    decimal.RequireFromString("12.50"),
			PurchaseDate: time.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, "500.00", p.TotalAmount.StringFixed(2))

		stored, err := fx.Repos().Materials().FindByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "40", stored.StockQuantity.String())
	})

	t.Run("average unit cost across purchases", func(t *testing.T) {
		_, err := svc.RecordPurchase(ctx, incharge, RecordPurchaseInput{
			MaterialID:   m.ID,
			SupplierName: "Textile Co",
			Quantity:     decimal.NewFromInt(60),
			UnitPrice:    decimal.NewFromInt(15),
		})
		require.NoError(t, err)

		avg, err := svc.AverageUnitCost(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "14.00", avg.StringFixed(2))

		page, err := svc.ListMaterials(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "14.00", page.Items[0].AverageUnitCost.StringFixed(2))
		assert.False(t, page.Items[0].LowStock)
	})

	t.Run("unknown material leaves nothing behind", func(t *testing.T) {
		_, err := svc.RecordPurchase(ctx, incharge, RecordPurchaseInput{
			MaterialID:   uuid.New(),
			SupplierName: "Ghost",
			Quantity:     decimal.NewFromInt(1),
			UnitPrice:    decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		page, err := svc.ListPurchases(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("shopkeeper cannot purchase", func(t *testing.T) {
		shop := fx.Actor(fx.User("shop", identity.RoleShopkeeper))
		_, err := svc.RecordPurchase(ctx, shop, RecordPurchaseInput{MaterialID: m.ID, SupplierName: "X", Quantity: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestCatalogService_AverageUnitCostWithoutPurchases(t *testing.T) {
	svc, fx := newService(t)
	m := fx.Material("NONE", decimal.Zero)

	avg, err := svc.AverageUnitCost(context.Background(), m.ID)
	require.NoError(t, err)
	assert.True(t, avg.IsZero())
}
