package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductRepository defines product persistence
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	// FindAll supports Search over sku/name and filters "category" and "active"
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	FindAllActive(ctx context.Context) ([]Product, error)
}

// RawMaterialRepository defines raw material persistence
type RawMaterialRepository interface {
	Create(ctx context.Context, m *RawMaterial) error
	FindByID(ctx context.Context, id uuid.UUID) (*RawMaterial, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// FindAll supports Search over code/name and filter "low_stock" ("1")
	FindAll(ctx context.Context, filter shared.Filter) ([]RawMaterial, int64, error)
	FindAllList(ctx context.Context) ([]RawMaterial, error)
	// AddStock increases stock by qty
	AddStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error
	// DeductStock decreases stock by qty only if enough is on hand; otherwise
	// it returns shared.ErrInsufficientStock and changes nothing.
	DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error
}

// PurchaseRepository defines purchase persistence and aggregates
type PurchaseRepository interface {
	Create(ctx context.Context, p *Purchase) error
	// FindAll supports date range and filters "material_id", "user_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseRow, int64, error)
	// AverageUnitCost is SUM(total_amount)/SUM(quantity) over the material's purchases, zero if none
	AverageUnitCost(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error)
	// SumTotal sums total_amount over the filter's date range and "user_id"
	SumTotal(ctx context.Context, filter shared.Filter) (decimal.Decimal, error)
}
