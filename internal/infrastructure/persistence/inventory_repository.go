package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindAll returns stock levels joined with their product
func (r *GormStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&inventory.Stock{}).
		Joins("JOIN products ON products.id = inventory.product_id")
	q = applyEquals(q, "inventory.location", filter, "location")
	q = applyEquals(q, "inventory.product_id", filter, "product_id")
	q = applySearch(q, filter.Search, "products.sku", "products.name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]inventory.StockRow, 0)
	q = q.Select("inventory.*, products.sku AS product_sku, products.name AS product_name").
		Order("products.name ASC, inventory.location ASC")
	if err := paginate(q, filter).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Quantity returns the on-hand quantity, zero when no row exists
func (r *GormStockRepository) Quantity(ctx context.Context, productID uuid.UUID, location inventory.Location) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&inventory.Stock{}).
		Where("product_id = ? AND location = ?", productID, location)
	return sum(q, "quantity")
}

// Deduct removes qty with a conditional update so concurrent writers can
// never take the row below zero.
func (r *GormStockRepository) Deduct(ctx context.Context, productID uuid.UUID, location inventory.Location, qty decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&inventory.Stock{}).
		Where("product_id = ? AND location = ? AND quantity >= ?", productID, location, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": r.db.NowFunc(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.Errorf(shared.CodeInsufficientStock, "Insufficient stock at %s", location)
	}
	return nil
}

// Credit adds qty, inserting the (product, location) row on first use
func (r *GormStockRepository) Credit(ctx context.Context, productID uuid.UUID, location inventory.Location, qty decimal.Decimal) error {
	row := inventory.NewStock(productID, location)
	row.Quantity = qty
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "location"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("inventory.quantity + ?", qty),
			"updated_at": r.db.NowFunc(),
		}),
	}).Create(row).Error
}

// TotalsByLocation returns the quantity held at each location, including empty ones
func (r *GormStockRepository) TotalsByLocation(ctx context.Context) ([]inventory.LocationTotal, error) {
	var rows []inventory.LocationTotal
	err := r.db.WithContext(ctx).Model(&inventory.Stock{}).
		Select("location, COALESCE(SUM(quantity), 0) AS quantity").
		Group("location").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byLocation := make(map[inventory.Location]decimal.Decimal, len(rows))
	for _, row := range rows {
		byLocation[row.Location] = row.Quantity
	}
	out := make([]inventory.LocationTotal, 0, len(inventory.AllLocations))
	for _, loc := range inventory.AllLocations {
		out = append(out, inventory.LocationTotal{Location: loc, Quantity: byLocation[loc]})
	}
	return out, nil
}

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Create records a transfer
func (r *GormTransferRepository) Create(ctx context.Context, t *inventory.Transfer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindAll returns transfers joined with product and initiator
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.TransferRow, int64, error) {
	q := r.db.WithContext(ctx).Model(&inventory.Transfer{}).
		Joins("LEFT JOIN products ON products.id = inventory_transfers.product_id").
		Joins("LEFT JOIN users ON users.id = inventory_transfers.initiated_by")
	q = applyDateRange(q, "inventory_transfers.transfer_date", filter)
	q = applyEquals(q, "inventory_transfers.from_location", filter, "from")
	q = applyEquals(q, "inventory_transfers.to_location", filter, "to")
	q = applyEquals(q, "inventory_transfers.product_id", filter, "product_id")
	q = applyEquals(q, "inventory_transfers.initiated_by", filter, "user_id")
	if loc := filter.String("location"); loc != "" {
		q = q.Where("(inventory_transfers.from_location = ? OR inventory_transfers.to_location = ?)", loc, loc)
	}
	q = applySearch(q, filter.Search, "products.sku", "products.name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]inventory.TransferRow, 0)
	q = q.Select("inventory_transfers.*, products.sku AS product_sku, products.name AS product_name, " +
		"users.full_name AS initiated_by_name")
	q = applyOrder(q, filter, "inventory_transfers", TransferSortFields, "transfer_date")
	if err := paginate(q, filter).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

var (
	_ inventory.StockRepository    = (*GormStockRepository)(nil)
	_ inventory.TransferRepository = (*GormTransferRepository)(nil)
)
