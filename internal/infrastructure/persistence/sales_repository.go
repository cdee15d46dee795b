package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// Create inserts the sale and its items
func (r *GormSaleRepository) Create(ctx context.Context, s *sales.Sale) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.Errorf(shared.CodeAlreadyExists, "Invoice %s already exists", s.InvoiceNumber)
	}
	return err
}

// Update writes the sale header if nobody changed it since it was loaded. Items are never rewritten.
func (r *GormSaleRepository) Update(ctx context.Context, s *sales.Sale) error {
	err := updateVersioned(ctx, r.db, &sales.Sale{}, s.ID, s.Version, map[string]any{
		"customer_name":  s.CustomerName,
		"customer_phone": s.CustomerPhone,
		"paid_amount":    s.PaidAmount,
		"payment_status": s.PaymentStatus,
		"notes":          s.Notes,
		"updated_at":     s.UpdatedAt,
	}, "Sale "+s.InvoiceNumber)
	if err != nil {
		return err
	}
	s.IncrementVersion()
	return nil
}

// FindByID finds a sale by ID without its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var s sales.Sale
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ExistsByInvoice checks if an invoice number is taken
func (r *GormSaleRepository) ExistsByInvoice(ctx context.Context, invoice string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("invoice_number = ?", strings.ToUpper(strings.TrimSpace(invoice))).
		Count(&count).Error
	return count > 0, err
}

// NextSequence returns one past the highest numeric suffix used on the day
func (r *GormSaleRepository) NextSequence(ctx context.Context, day time.Time) (int64, error) {
	prefix := sales.InvoiceNumberPrefix(day)
	var numbers []string
	err := r.db.WithContext(ctx).Model(&sales.Sale{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return 0, err
	}
	return nextSequence(numbers, prefix), nil
}

func (r *GormSaleRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&sales.Sale{})
	q = applyDateRange(q, "sales.sale_date", filter)
	q = applyEquals(q, "sales.payment_status", filter, "status")
	q = applyEquals(q, "sales.created_by", filter, "user_id")
	return q
}

// FindAll returns sales joined with their creator
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SaleRow, int64, error) {
	q := r.filtered(ctx, filter).
		Joins("LEFT JOIN users ON users.id = sales.created_by")
	q = applySearch(q, filter.Search, "sales.invoice_number", "sales.customer_name", "sales.customer_phone")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]sales.SaleRow, 0)
	q = q.Select("sales.*, users.full_name AS created_by_name, " +
		"(SELECT COUNT(*) FROM sale_items WHERE sale_items.sale_id = sales.id) AS item_count")
	q = applyOrder(q, filter, "sales", SaleSortFields, "sale_date")
	if err := paginate(q, filter).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindItems lists a sale's lines with product names
func (r *GormSaleRepository) FindItems(ctx context.Context, saleID uuid.UUID) ([]sales.ItemRow, error) {
	rows := make([]sales.ItemRow, 0)
	err := r.db.WithContext(ctx).Model(&sales.SaleItem{}).
		Select("sale_items.*, products.sku AS product_sku, products.name AS product_name").
		Joins("LEFT JOIN products ON products.id = sale_items.product_id").
		Where("sale_items.sale_id = ?", saleID).
		Order("products.name").
		Scan(&rows).Error
	return rows, err
}

// SumNet sums net_amount over the filter
func (r *GormSaleRepository) SumNet(ctx context.Context, filter shared.Filter) (decimal.Decimal, error) {
	return sum(r.filtered(ctx, filter), "sales.net_amount")
}

// SumOutstanding sums what customers still owe over the filter
func (r *GormSaleRepository) SumOutstanding(ctx context.Context, filter shared.Filter) (decimal.Decimal, error) {
	return sum(r.filtered(ctx, filter), "sales.net_amount - sales.paid_amount")
}

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create records a payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *sales.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindBySale lists a sale's payments oldest first
func (r *GormPaymentRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]sales.PaymentRow, error) {
	rows := make([]sales.PaymentRow, 0)
	err := r.db.WithContext(ctx).Model(&sales.Payment{}).
		Select("payments.*, users.full_name AS received_by_name").
		Joins("LEFT JOIN users ON users.id = payments.received_by").
		Where("payments.sale_id = ?", saleID).
		Order("payments.payment_date").
		Scan(&rows).Error
	return rows, err
}

// SumAmount sums payments received over the filter's payment_date range
func (r *GormPaymentRepository) SumAmount(ctx context.Context, filter shared.Filter) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&sales.Payment{})
	q = applyDateRange(q, "payments.payment_date", filter)
	q = applyEquals(q, "payments.received_by", filter, "user_id")
	return sum(q, "payments.amount")
}

var (
	_ sales.SaleRepository    = (*GormSaleRepository)(nil)
	_ sales.PaymentRepository = (*GormPaymentRepository)(nil)
)
