package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockRepository defines stock level persistence
type StockRepository interface {
	// FindAll supports Search over product sku/name and filters "location", "product_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]StockRow, int64, error)
	// Quantity returns the on-hand quantity, zero when no row exists
	Quantity(ctx context.Context, productID uuid.UUID, location Location) (decimal.Decimal, error)
	// Deduct removes qty only when at least qty is on hand. It returns
	// shared.ErrInsufficientStock and changes nothing otherwise.
	Deduct(ctx context.Context, productID uuid.UUID, location Location, qty decimal.Decimal) error
	// Credit adds qty, creating the row when needed
	Credit(ctx context.Context, productID uuid.UUID, location Location, qty decimal.Decimal) error
	TotalsByLocation(ctx context.Context) ([]LocationTotal, error)
}

// TransferRepository defines transfer persistence
type TransferRepository interface {
	Create(ctx context.Context, t *Transfer) error
	// FindAll supports date range on transfer_date and filters "from", "to", "product_id", "user_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]TransferRow, int64, error)
}
