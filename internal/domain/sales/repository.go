package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleRepository defines sale persistence and aggregates
type SaleRepository interface {
	// Create inserts the sale together with its items. A taken invoice number is ALREADY_EXISTS.
	Create(ctx context.Context, s *Sale) error
	// Update fails with INVALID_STATE when the sale changed since it was loaded
	Update(ctx context.Context, s *Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	ExistsByInvoice(ctx context.Context, invoice string) (bool, error)
	// NextSequence returns one past the highest numeric suffix among the day's invoices
	NextSequence(ctx context.Context, day time.Time) (int64, error)
	// FindAll supports date range on sale_date, Search over invoice/customer and
	// filters "status" (payment status) and "user_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]SaleRow, int64, error)
	FindItems(ctx context.Context, saleID uuid.UUID) ([]ItemRow, error)
	// SumNet sums net_amount over the filter's date range
	SumNet(ctx context.Context, filter shared.Filter) (decimal.Decimal, error)
	// SumOutstanding sums net_amount - paid_amount over the filter's date range
	SumOutstanding(ctx context.Context, filter shared.Filter) (decimal.Decimal, error)
}

// PaymentRepository defines payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]PaymentRow, error)
	// SumAmount sums amount over the filter's date range on payment_date
	SumAmount(ctx context.Context, filter shared.Filter) (decimal.Decimal, error)
}
