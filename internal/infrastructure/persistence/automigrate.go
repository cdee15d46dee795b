package persistence

import (
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

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&identity.User{},
		&catalog.Product{},
		&catalog.RawMaterial{},
		&catalog.Purchase{},
		&manufacturing.Batch{},
		&manufacturing.ManufacturingCost{},
		&manufacturing.BatchMaterial{},
		&inventory.Stock{},
		&inventory.Transfer{},
		&sales.Sale{},
		&sales.SaleItem{},
		&sales.Payment{},
		&finance.FundTransfer{},
		&activity.Log{},
		&notification.Notification{},
	}
}

// AutoMigrate creates or updates tables from the entity definitions. It is
// used for sqlite deployments and tests; postgres uses the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
