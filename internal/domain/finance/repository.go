package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FundRepository defines fund transfer persistence
type FundRepository interface {
	Create(ctx context.Context, f *FundTransfer) error
	// FindAll supports date range on transfer_date and "user_id" matching either party
	FindAll(ctx context.Context, filter shared.Filter) ([]FundRow, int64, error)
	SumReceived(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	SumSent(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	// SumTotal sums amount over the filter's date range
	SumTotal(ctx context.Context, filter shared.Filter) (decimal.Decimal, error)
}

// MonthlyRepository returns per-month sums of each summary source
type MonthlyRepository interface {
	MonthlySales(ctx context.Context, filter shared.Filter) ([]MonthAmount, error)
	MonthlyPurchases(ctx context.Context, filter shared.Filter) ([]MonthAmount, error)
	MonthlyManufacturingCosts(ctx context.Context, filter shared.Filter) ([]MonthAmount, error)
}
