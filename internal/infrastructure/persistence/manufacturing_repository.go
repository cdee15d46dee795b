package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

const batchRowSelect = "manufacturing_batches.*, products.name AS product_name, products.sku AS product_sku"

// Create creates a new batch
func (r *GormBatchRepository) Create(ctx context.Context, b *manufacturing.Batch) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.Errorf(shared.CodeAlreadyExists, "Batch %s already exists", b.BatchNumber)
	}
	return err
}

// Update writes the batch's mutable fields if nobody changed it since it was loaded
func (r *GormBatchRepository) Update(ctx context.Context, b *manufacturing.Batch) error {
	err := updateVersioned(ctx, r.db, &manufacturing.Batch{}, b.ID, b.Version, map[string]any{
		"status":                   b.Status,
		"quantity_produced":        b.QuantityProduced,
		"expected_completion_date": b.ExpectedCompletionDate,
		"completion_date":          b.CompletionDate,
		"notes":                    b.Notes,
		"updated_at":               b.UpdatedAt,
	}, "Batch "+b.BatchNumber)
	if err != nil {
		return err
	}
	b.IncrementVersion()
	return nil
}

// FindByID finds a batch by ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.Batch, error) {
	var b manufacturing.Batch
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByIDForUpdate finds a batch and locks its row for the rest of the transaction
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*manufacturing.Batch, error) {
	var b manufacturing.Batch
	if err := forUpdate(r.db.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindRowByID finds a batch joined with its product
func (r *GormBatchRepository) FindRowByID(ctx context.Context, id uuid.UUID) (*manufacturing.BatchRow, error) {
	rows := make([]manufacturing.BatchRow, 0, 1)
	err := r.db.WithContext(ctx).Model(&manufacturing.Batch{}).
		Select(batchRowSelect).
		Joins("LEFT JOIN products ON products.id = manufacturing_batches.product_id").
		Where("manufacturing_batches.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	return &rows[0], nil
}

// ExistsByNumber checks if a batch number is taken
func (r *GormBatchRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&manufacturing.Batch{}).
		Where("batch_number = ?", strings.ToUpper(strings.TrimSpace(number))).
		Count(&count).Error
	return count > 0, err
}

// NextSequence returns one past the highest numeric suffix used on the day
func (r *GormBatchRepository) NextSequence(ctx context.Context, day time.Time) (int64, error) {
	prefix := manufacturing.BatchNumberPrefix(day)
	var numbers []string
	err := r.db.WithContext(ctx).Model(&manufacturing.Batch{}).
		Where("batch_number LIKE ?", prefix+"%").
		Pluck("batch_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	return nextSequence(numbers, prefix), nil
}

// FindAll returns batches joined with their product
func (r *GormBatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]manufacturing.BatchRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&manufacturing.Batch{}).
		Joins("LEFT JOIN products ON products.id = manufacturing_batches.product_id")
	q = applyDateRange(q, "manufacturing_batches.start_date", filter)
	q = applyEquals(q, "manufacturing_batches.status", filter, "status")
	q = applyEquals(q, "manufacturing_batches.product_id", filter, "product_id")
	q = applySearch(q, filter.Search, "manufacturing_batches.batch_number", "products.name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]manufacturing.BatchRow, 0)
	q = applyOrder(q.Select(batchRowSelect), filter, "manufacturing_batches", BatchSortFields, "start_date")
	if err := paginate(q, filter).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByStatus returns the number of batches in each status
func (r *GormBatchRepository) CountByStatus(ctx context.Context) (map[manufacturing.BatchStatus]int64, error) {
	var rows []struct {
		Status manufacturing.BatchStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&manufacturing.Batch{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[manufacturing.BatchStatus]int64, len(manufacturing.Pipeline))
	for _, s := range manufacturing.Pipeline {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

// GormCostRepository implements CostRepository using GORM
type GormCostRepository struct {
	db *gorm.DB
}

// NewGormCostRepository creates a new GormCostRepository
func NewGormCostRepository(db *gorm.DB) *GormCostRepository {
	return &GormCostRepository{db: db}
}

// Create records a manufacturing cost
func (r *GormCostRepository) Create(ctx context.Context, c *manufacturing.ManufacturingCost) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByBatch lists a batch's costs, newest first
func (r *GormCostRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]manufacturing.CostRow, error) {
	rows := make([]manufacturing.CostRow, 0)
	err := r.db.WithContext(ctx).Model(&manufacturing.ManufacturingCost{}).
		Select("manufacturing_costs.*, users.full_name AS recorded_by_name").
		Joins("LEFT JOIN users ON users.id = manufacturing_costs.recorded_by").
		Where("manufacturing_costs.batch_id = ?", batchID).
		Order("manufacturing_costs.cost_date DESC").
		Scan(&rows).Error
	return rows, err
}

// SumByStage splits a batch's costs into labor and overhead per stage
func (r *GormCostRepository) SumByStage(ctx context.Context, batchID uuid.UUID) ([]manufacturing.StageCostTotal, error) {
	rows := make([]manufacturing.StageCostTotal, 0)
	err := r.db.WithContext(ctx).Model(&manufacturing.ManufacturingCost{}).
		Select("stage, "+
			"COALESCE(SUM(CASE WHEN cost_type = ? THEN amount ELSE 0 END), 0) AS labor, "+
			"COALESCE(SUM(CASE WHEN cost_type <> ? THEN amount ELSE 0 END), 0) AS overhead",
			manufacturing.CostLabor, manufacturing.CostLabor).
		Where("batch_id = ?", batchID).
		Group("stage").
		Scan(&rows).Error
	return rows, err
}

// SumByType totals a batch's costs per cost type
func (r *GormCostRepository) SumByType(ctx context.Context, batchID uuid.UUID) ([]manufacturing.CostTypeTotal, error) {
	rows := make([]manufacturing.CostTypeTotal, 0)
	err := r.db.WithContext(ctx).Model(&manufacturing.ManufacturingCost{}).
		Select("cost_type, COALESCE(SUM(amount), 0) AS amount").
		Where("batch_id = ?", batchID).
		Group("cost_type").
		Order("cost_type").
		Scan(&rows).Error
	return rows, err
}

// SumTotal sums amount over the filter's cost_date range and recorder
func (r *GormCostRepository) SumTotal(ctx context.Context, filter shared.Filter) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&manufacturing.ManufacturingCost{})
	q = applyDateRange(q, "manufacturing_costs.cost_date", filter)
	q = applyEquals(q, "manufacturing_costs.recorded_by", filter, "user_id")
	return sum(q, "manufacturing_costs.amount")
}

// GormBatchMaterialRepository implements BatchMaterialRepository using GORM
type GormBatchMaterialRepository struct {
	db *gorm.DB
}

// NewGormBatchMaterialRepository creates a new GormBatchMaterialRepository
func NewGormBatchMaterialRepository(db *gorm.DB) *GormBatchMaterialRepository {
	return &GormBatchMaterialRepository{db: db}
}

// Create records a material allocation
func (r *GormBatchMaterialRepository) Create(ctx context.Context, m *manufacturing.BatchMaterial) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByBatch lists a batch's allocated materials
func (r *GormBatchMaterialRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]manufacturing.MaterialRow, error) {
	rows := make([]manufacturing.MaterialRow, 0)
	err := r.db.WithContext(ctx).Model(&manufacturing.BatchMaterial{}).
		Select("batch_materials.*, raw_materials.code AS material_code, raw_materials.name AS material_name, raw_materials.unit AS material_unit").
		Joins("LEFT JOIN raw_materials ON raw_materials.id = batch_materials.material_id").
		Where("batch_materials.batch_id = ?", batchID).
		Order("batch_materials.created_at").
		Scan(&rows).Error
	return rows, err
}

// SumByStage totals material cost per stage
func (r *GormBatchMaterialRepository) SumByStage(ctx context.Context, batchID uuid.UUID) ([]manufacturing.StageMaterialTotal, error) {
	rows := make([]manufacturing.StageMaterialTotal, 0)
	err := r.db.WithContext(ctx).Model(&manufacturing.BatchMaterial{}).
		Select("stage, COALESCE(SUM(total_cost), 0) AS total").
		Where("batch_id = ?", batchID).
		Group("stage").
		Scan(&rows).Error
	return rows, err
}

var (
	_ manufacturing.BatchRepository         = (*GormBatchRepository)(nil)
	_ manufacturing.CostRepository          = (*GormCostRepository)(nil)
	_ manufacturing.BatchMaterialRepository = (*GormBatchMaterialRepository)(nil)
)
