package manufacturing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CostType classifies a manufacturing cost. Everything that is not labor counts as overhead.
type CostType string

const (
	CostLabor     CostType = "labor"
	CostOverhead  CostType = "overhead"
	CostTransport CostType = "transport"
	CostPackaging CostType = "packaging"
	CostUtilities CostType = "utilities"
	CostOther     CostType = "other"
)

// AllCostTypes lists the cost types offered in forms
var AllCostTypes = []CostType{CostLabor, CostOverhead, CostTransport, CostPackaging, CostUtilities, CostOther}

// IsValid reports whether the cost type is known
func (c CostType) IsValid() bool {
	for _, v := range AllCostTypes {
		if v == c {
			return true
		}
	}
	return false
}

// ManufacturingCost is a labor or overhead expense charged to a batch
type ManufacturingCost struct {
	shared.BaseEntity
	BatchID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"batch_id"`
	CostType    CostType        `gorm:"size:20;not null" json:"cost_type"`
	Stage       BatchStatus     `gorm:"size:20;not null" json:"stage"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description string          `gorm:"size:255" json:"description"`
	CostDate    time.Time       `gorm:"not null;index" json:"cost_date"`
	RecordedBy  uuid.UUID       `gorm:"type:uuid;not null;index" json:"recorded_by"`
}

// TableName returns the table name for GORM
func (ManufacturingCost) TableName() string {
	return "manufacturing_costs"
}

// NewManufacturingCost charges a cost to the batch's current stage
func NewManufacturingCost(batch *Batch, costType CostType, amount decimal.Decimal, description string, date time.Time, by uuid.UUID) (*ManufacturingCost, error) {
	if err := batch.EnsureOpen(); err != nil {
		return nil, err
	}
	if !costType.IsValid() {
		return nil, shared.Errorf(shared.CodeInvalidInput, "Unknown cost type %q", costType)
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Amount must be greater than zero")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &ManufacturingCost{
		BaseEntity:  shared.NewBaseEntity(),
		BatchID:     batch.ID,
		CostType:    costType,
		Stage:       batch.Status,
		Amount:      amount,
		Description: strings.TrimSpace(description),
		CostDate:    date,
		RecordedBy:  by,
	}, nil
}

// BatchMaterial is raw material consumed by a batch, priced at allocation time
type BatchMaterial struct {
	shared.BaseEntity
	BatchID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"batch_id"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	QuantityUsed decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_used"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_cost"`
	Stage        BatchStatus     `gorm:"size:20;not null" json:"stage"`
	RecordedBy   uuid.UUID       `gorm:"type:uuid;not null" json:"recorded_by"`
}

// TableName returns the table name for GORM
func (BatchMaterial) TableName() string {
	return "batch_materials"
}

// NewBatchMaterial allocates qty of a material at unitCost to the batch's current stage
func NewBatchMaterial(batch *Batch, materialID uuid.UUID, qty, unitCost decimal.Decimal, by uuid.UUID) (*BatchMaterial, error) {
	if err := batch.EnsureOpen(); err != nil {
		return nil, err
	}
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Material is required")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than zero")
	}
	return &BatchMaterial{
		BaseEntity:   shared.NewBaseEntity(),
		BatchID:      batch.ID,
		MaterialID:   materialID,
		QuantityUsed: qty,
		UnitCost:     unitCost,
		TotalCost:    qty.Mul(unitCost).Round(2),
		Stage:        batch.Status,
		RecordedBy:   by,
	}, nil
}

// CostRow is a cost joined with the recorder's name
type CostRow struct {
	ManufacturingCost
	RecordedByName string `json:"recorded_by_name"`
}

// MaterialRow is a batch material joined with the material
type MaterialRow struct {
	BatchMaterial
	MaterialCode string `json:"material_code"`
	MaterialName string `json:"material_name"`
	MaterialUnit string `json:"material_unit"`
}
