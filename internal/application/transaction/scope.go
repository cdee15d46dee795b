// Package transaction defines the unit of work used by every write service.
package transaction

import (
	"context"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
)

// Scope provides transactional access to repositories.
// If fn returns an error or panics, every statement issued through the
// repositories it received is rolled back.
type Scope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories exposes every repository. Inside Scope.Execute they share one
// database transaction; outside they run on the plain connection pool.
type Repositories interface {
	Users() identity.UserRepository
	Products() catalog.ProductRepository
	Materials() catalog.RawMaterialRepository
	Purchases() catalog.PurchaseRepository
	Batches() manufacturing.BatchRepository
	Costs() manufacturing.CostRepository
	BatchMaterials() manufacturing.BatchMaterialRepository
	Stock() inventory.StockRepository
	Transfers() inventory.TransferRepository
	Sales() sales.SaleRepository
	Payments() sales.PaymentRepository
	Funds() finance.FundRepository
	Monthly() finance.MonthlyRepository
	ActivityLogs() activity.LogRepository
	Notifications() notification.Repository
}

// NoOpScope runs fn directly against the given repositories without a transaction.
type NoOpScope struct {
	repos Repositories
}

// NewNoOpScope creates a NoOpScope
func NewNoOpScope(repos Repositories) *NoOpScope {
	return &NoOpScope{repos: repos}
}

// Execute runs fn without a real transaction
func (s *NoOpScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

var _ Scope = (*NoOpScope)(nil)
