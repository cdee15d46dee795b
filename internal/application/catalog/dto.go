package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductInput contains input for creating a product
type CreateProductInput struct {
	SKU         string
	Name        string
	Category    string
	Description string
	SalePrice   decimal.Decimal
}

// CreateMaterialInput contains input for creating a raw material
type CreateMaterialInput struct {
	Code          string
	Name          string
	Unit          catalog.Unit
	MinStockLevel decimal.Decimal
}

// RecordPurchaseInput contains input for recording a purchase
type RecordPurchaseInput struct {
	MaterialID    uuid.UUID
	SupplierName  string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	PurchaseDate  time.Time
	InvoiceNumber string
	Notes         string
}

// MaterialView is a raw material with its low-stock flag and average cost
type MaterialView struct {
	catalog.RawMaterial
	LowStock        bool            `json:"low_stock"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}
