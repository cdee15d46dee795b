package manufacturing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BatchRepository defines batch persistence
type BatchRepository interface {
	// Create fails with ALREADY_EXISTS when the batch number is taken
	Create(ctx context.Context, b *Batch) error
	// Update fails with INVALID_STATE when the batch changed since it was loaded
	Update(ctx context.Context, b *Batch) error
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	// FindByIDForUpdate also locks the row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)
	FindRowByID(ctx context.Context, id uuid.UUID) (*BatchRow, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// NextSequence returns one past the highest numeric suffix among the day's batch numbers
	NextSequence(ctx context.Context, day time.Time) (int64, error)
	// FindAll supports date range on start_date, Search on batch number and filters "status", "product_id"
	FindAll(ctx context.Context, filter shared.Filter) ([]BatchRow, int64, error)
	CountByStatus(ctx context.Context) (map[BatchStatus]int64, error)
}

// CostRepository defines manufacturing cost persistence and aggregates
type CostRepository interface {
	Create(ctx context.Context, c *ManufacturingCost) error
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]CostRow, error)
	SumByStage(ctx context.Context, batchID uuid.UUID) ([]StageCostTotal, error)
	SumByType(ctx context.Context, batchID uuid.UUID) ([]CostTypeTotal, error)
	// SumTotal sums amount over the filter's date range (cost_date) and "user_id"
	SumTotal(ctx context.Context, filter shared.Filter) (decimal.Decimal, error)
}

// BatchMaterialRepository defines batch material persistence and aggregates
type BatchMaterialRepository interface {
	Create(ctx context.Context, m *BatchMaterial) error
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]MaterialRow, error)
	SumByStage(ctx context.Context, batchID uuid.UUID) ([]StageMaterialTotal, error)
}
