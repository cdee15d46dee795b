package catalog

import (
	"strings"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Unit is the unit of measure a raw material is stocked in
type Unit string

const (
	UnitMeter Unit = "meter"
	UnitKg    Unit = "kg"
	UnitPiece Unit = "piece"
	UnitRoll  Unit = "roll"
	UnitYard  Unit = "yard"
)

// AllUnits lists the units offered in forms
var AllUnits = []Unit{UnitMeter, UnitKg, UnitPiece, UnitRoll, UnitYard}

// IsValid reports whether the unit is known
func (u Unit) IsValid() bool {
	for _, v := range AllUnits {
		if v == u {
			return true
		}
	}
	return false
}

// RawMaterial is fabric, thread, buttons and the like consumed by batches
type RawMaterial struct {
	shared.BaseEntity
	Code          string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name          string          `gorm:"size:150;not null" json:"name"`
	Unit          Unit            `gorm:"size:20;not null" json:"unit"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"stock_quantity"`
	MinStockLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"min_stock_level"`
}

// TableName returns the table name for GORM
func (RawMaterial) TableName() string {
	return "raw_materials"
}

// NewRawMaterial creates a material with zero stock
func NewRawMaterial(code, name string, unit Unit, minStock decimal.Decimal) (*RawMaterial, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Code and name are required")
	}
	if !unit.IsValid() {
		return nil, shared.Errorf(shared.CodeInvalidInput, "Unknown unit %q", unit)
	}
	if minStock.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Minimum stock level cannot be negative")
	}
	return &RawMaterial{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          code,
		Name:          name,
		Unit:          unit,
		StockQuantity: decimal.Zero,
		MinStockLevel: minStock,
	}, nil
}

// IsLowStock reports whether stock is at or below the reorder level
func (m *RawMaterial) IsLowStock() bool {
	return m.StockQuantity.LessThanOrEqual(m.MinStockLevel)
}
