package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create creates a new product
func (r *GormProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var p catalog.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ExistsBySKU checks if a SKU is taken
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("UPPER(sku) = ?", strings.ToUpper(strings.TrimSpace(sku))).
		Count(&count).Error
	return count > 0, err
}

// FindAll returns products matching the filter with pagination
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&catalog.Product{})
	q = applyEquals(q, "products.category", filter, "category")
	switch filter.String("active") {
	case "1":
		q = q.Where("products.is_active = ?", true)
	case "0":
		q = q.Where("products.is_active = ?", false)
	}
	q = applySearch(q, filter.Search, "products.sku", "products.name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	products := make([]catalog.Product, 0)
	q = applyOrder(q, filter, "products", ProductSortFields, "created_at")
	if err := paginate(q, filter).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindAllActive returns every active product ordered by name
func (r *GormProductRepository) FindAllActive(ctx context.Context) ([]catalog.Product, error) {
	products := make([]catalog.Product, 0)
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&products).Error
	return products, err
}

// GormRawMaterialRepository implements RawMaterialRepository using GORM
type GormRawMaterialRepository struct {
	db *gorm.DB
}

// NewGormRawMaterialRepository creates a new GormRawMaterialRepository
func NewGormRawMaterialRepository(db *gorm.DB) *GormRawMaterialRepository {
	return &GormRawMaterialRepository{db: db}
}

// Create creates a new raw material
func (r *GormRawMaterialRepository) Create(ctx context.Context, m *catalog.RawMaterial) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByID finds a raw material by ID
func (r *GormRawMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.RawMaterial, error) {
	var m catalog.RawMaterial
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ExistsByCode checks if a material code is taken
func (r *GormRawMaterialRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&catalog.RawMaterial{}).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error
	return count > 0, err
}

// FindAll returns materials matching the filter with pagination
func (r *GormRawMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.RawMaterial, int64, error) {
	q := r.db.WithContext(ctx).Model(&catalog.RawMaterial{})
	if filter.String("low_stock") == "1" {
		q = q.Where("raw_materials.stock_quantity <= raw_materials.min_stock_level")
	}
	q = applySearch(q, filter.Search, "raw_materials.code", "raw_materials.name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	materials := make([]catalog.RawMaterial, 0)
	q = applyOrder(q, filter, "raw_materials", MaterialSortFields, "created_at")
	if err := paginate(q, filter).Find(&materials).Error; err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}

// FindAllList returns every material ordered by name for form dropdowns
func (r *GormRawMaterialRepository) FindAllList(ctx context.Context) ([]catalog.RawMaterial, error) {
	materials := make([]catalog.RawMaterial, 0)
	err := r.db.WithContext(ctx).Order("name").Find(&materials).Error
	return materials, err
}

// AddStock increases stock by qty
func (r *GormRawMaterialRepository) AddStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&catalog.RawMaterial{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", qty),
			"updated_at":     r.db.NowFunc(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeductStock decreases stock by qty only when enough is on hand
func (r *GormRawMaterialRepository) DeductStock(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&catalog.RawMaterial{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"updated_at":     r.db.NowFunc(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Create records a purchase
func (r *GormPurchaseRepository) Create(ctx context.Context, p *catalog.Purchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormPurchaseRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&catalog.Purchase{})
	q = applyDateRange(q, "purchases.purchase_date", filter)
	q = applyEquals(q, "purchases.material_id", filter, "material_id")
	q = applyEquals(q, "purchases.purchased_by", filter, "user_id")
	return q
}

// FindAll returns purchases joined with material and buyer
func (r *GormPurchaseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.PurchaseRow, int64, error) {
	q := r.filtered(ctx, filter).
		Joins("LEFT JOIN raw_materials ON raw_materials.id = purchases.material_id").
		Joins("LEFT JOIN users ON users.id = purchases.purchased_by")
	q = applySearch(q, filter.Search, "purchases.supplier_name", "purchases.invoice_number", "raw_materials.name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]catalog.PurchaseRow, 0)
	q = q.Select("purchases.*, raw_materials.code AS material_code, raw_materials.name AS material_name, " +
		"raw_materials.unit AS material_unit, users.full_name AS purchased_by_name")
	q = applyOrder(q, filter, "purchases", PurchaseSortFields, "purchase_date")
	if err := paginate(q, filter).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// AverageUnitCost is SUM(total_amount)/SUM(quantity), zero when there are no purchases
func (r *GormPurchaseRepository) AverageUnitCost(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	var res struct {
		Amount   decimal.Decimal
		Quantity decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&catalog.Purchase{}).
		Select("COALESCE(SUM(total_amount), 0) AS amount, COALESCE(SUM(quantity), 0) AS quantity").
		Where("material_id = ?", materialID).
		Scan(&res).Error
	if err != nil {
		return decimal.Zero, err
	}
	if res.Quantity.IsZero() {
		return decimal.Zero, nil
	}
	return res.Amount.DivRound(res.Quantity, 4), nil
}

// SumTotal sums total_amount over the filter
func (r *GormPurchaseRepository) SumTotal(ctx context.Context, filter shared.Filter) (decimal.Decimal, error) {
	return sum(r.filtered(ctx, filter), "purchases.total_amount")
}

var (
	_ catalog.ProductRepository     = (*GormProductRepository)(nil)
	_ catalog.RawMaterialRepository = (*GormRawMaterialRepository)(nil)
	_ catalog.PurchaseRepository    = (*GormPurchaseRepository)(nil)
)
