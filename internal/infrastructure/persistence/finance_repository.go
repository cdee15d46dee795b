package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFundRepository implements FundRepository using GORM
type GormFundRepository struct {
	db *gorm.DB
}

// NewGormFundRepository creates a new GormFundRepository
func NewGormFundRepository(db *gorm.DB) *GormFundRepository {
	return &GormFundRepository{db: db}
}

// Create records a fund transfer
func (r *GormFundRepository) Create(ctx context.Context, f *finance.FundTransfer) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *GormFundRepository) filtered(ctx context.Context, filter shared.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&finance.FundTransfer{})
	q = applyDateRange(q, "funds.transfer_date", filter)
	if uid := filter.String("user_id"); uid != "" {
		q = q.Where("(funds.from_user_id = ? OR funds.to_user_id = ?)", uid, uid)
	}
	return q
}

// FindAll returns transfers joined with both parties
func (r *GormFundRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.FundRow, int64, error) {
	q := r.filtered(ctx, filter).
		Joins("LEFT JOIN users AS sender ON sender.id = funds.from_user_id").
		Joins("LEFT JOIN users AS receiver ON receiver.id = funds.to_user_id")
	q = applySearch(q, filter.Search, "funds.description", "sender.full_name", "receiver.full_name")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]finance.FundRow, 0)
	q = q.Select("funds.*, sender.full_name AS from_name, sender.role AS from_role, " +
		"receiver.full_name AS to_name, receiver.role AS to_role")
	q = applyOrder(q, filter, "funds", FundSortFields, "transfer_date")
	if err := paginate(q, filter).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumReceived totals funds received by the user
func (r *GormFundRepository) SumReceived(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return sum(r.db.WithContext(ctx).Model(&finance.FundTransfer{}).Where("to_user_id = ?", userID), "amount")
}

// SumSent totals funds sent by the user
func (r *GormFundRepository) SumSent(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return sum(r.db.WithContext(ctx).Model(&finance.FundTransfer{}).Where("from_user_id = ?", userID), "amount")
}

// SumTotal sums amount over the filter
func (r *GormFundRepository) SumTotal(ctx context.Context, filter shared.Filter) (decimal.Decimal, error) {
	return sum(r.filtered(ctx, filter), "funds.amount")
}

// GormMonthlyRepository aggregates summary sources by calendar month
type GormMonthlyRepository struct {
	db *gorm.DB
}

// NewGormMonthlyRepository creates a new GormMonthlyRepository
func NewGormMonthlyRepository(db *gorm.DB) *GormMonthlyRepository {
	return &GormMonthlyRepository{db: db}
}

func (r *GormMonthlyRepository) monthly(ctx context.Context, model any, dateColumn, amountExpr string, filter shared.Filter) ([]finance.MonthAmount, error) {
	month := monthExpr(r.db, dateColumn)
	q := r.db.WithContext(ctx).Model(model)
	q = applyDateRange(q, dateColumn, filter)
	rows := make([]finance.MonthAmount, 0)
	err := q.Select(month + " AS month, COALESCE(SUM(" + amountExpr + "), 0) AS amount").
		Group(month).
		Order("month").
		Scan(&rows).Error
	return rows, err
}

// MonthlySales sums net sales per month
func (r *GormMonthlyRepository) MonthlySales(ctx context.Context, filter shared.Filter) ([]finance.MonthAmount, error) {
	return r.monthly(ctx, &sales.Sale{}, "sales.sale_date", "sales.net_amount", filter)
}

// MonthlyPurchases sums purchases per month
func (r *GormMonthlyRepository) MonthlyPurchases(ctx context.Context, filter shared.Filter) ([]finance.MonthAmount, error) {
	return r.monthly(ctx, &catalog.Purchase{}, "purchases.purchase_date", "purchases.total_amount", filter)
}

// MonthlyManufacturingCosts sums manufacturing costs per month
func (r *GormMonthlyRepository) MonthlyManufacturingCosts(ctx context.Context, filter shared.Filter) ([]finance.MonthAmount, error) {
	return r.monthly(ctx, &manufacturing.ManufacturingCost{}, "manufacturing_costs.cost_date", "manufacturing_costs.amount", filter)
}

var (
	_ finance.FundRepository    = (*GormFundRepository)(nil)
	_ finance.MonthlyRepository = (*GormMonthlyRepository)(nil)
)
