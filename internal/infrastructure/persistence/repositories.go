package persistence

import (
	"context"

	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"gorm.io/gorm"
)

// GormRepositories builds every repository on one *gorm.DB, which is either
// the pool or an open transaction.
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates repositories bound to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

func (r *GormRepositories) Users() identity.UserRepository { return NewGormUserRepository(r.db) }

func (r *GormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *GormRepositories) Materials() catalog.RawMaterialRepository {
	return NewGormRawMaterialRepository(r.db)
}

func (r *GormRepositories) Purchases() catalog.PurchaseRepository {
	return NewGormPurchaseRepository(r.db)
}

func (r *GormRepositories) Batches() manufacturing.BatchRepository {
	return NewGormBatchRepository(r.db)
}

func (r *GormRepositories) Costs() manufacturing.CostRepository {
	return NewGormCostRepository(r.db)
}

func (r *GormRepositories) BatchMaterials() manufacturing.BatchMaterialRepository {
	return NewGormBatchMaterialRepository(r.db)
}

func (r *GormRepositories) Stock() inventory.StockRepository { return NewGormStockRepository(r.db) }

func (r *GormRepositories) Transfers() inventory.TransferRepository {
	return NewGormTransferRepository(r.db)
}

func (r *GormRepositories) Sales() sales.SaleRepository { return NewGormSaleRepository(r.db) }

func (r *GormRepositories) Payments() sales.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

func (r *GormRepositories) Funds() finance.FundRepository { return NewGormFundRepository(r.db) }

func (r *GormRepositories) Monthly() finance.MonthlyRepository {
	return NewGormMonthlyRepository(r.db)
}

func (r *GormRepositories) ActivityLogs() activity.LogRepository {
	return NewGormActivityLogRepository(r.db)
}

func (r *GormRepositories) Notifications() notification.Repository {
	return NewGormNotificationRepository(r.db)
}

// GormTransactionScope implements transaction.Scope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error or panics, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos transaction.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

var (
	_ transaction.Scope        = (*GormTransactionScope)(nil)
	_ transaction.Repositories = (*GormRepositories)(nil)
)
