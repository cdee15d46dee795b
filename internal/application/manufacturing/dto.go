package manufacturing

import (
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/shopspring/decimal"
)

// CreateBatchInput contains input for starting a batch. A blank BatchNumber is generated.
type CreateBatchInput struct {
	BatchNumber            string
	ProductID              uuid.UUID
	Quantity               decimal.Decimal
	StartDate              time.Time
	ExpectedCompletionDate *time.Time
	Notes                  string
}

// RecordCostInput contains input for charging a cost to a batch
type RecordCostInput struct {
	CostType    manufacturing.CostType
	Amount      decimal.Decimal
	Description string
	CostDate    time.Time
}

// AllocateMaterialInput contains input for consuming raw material in a batch
type AllocateMaterialInput struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
}

// BatchDetail is everything the batch detail page shows
type BatchDetail struct {
	Batch     manufacturing.BatchRow      `json:"batch"`
	Costs     []manufacturing.CostRow     `json:"costs"`
	Materials []manufacturing.MaterialRow `json:"materials"`
	Costing   *manufacturing.BatchCosting `json:"costing"`
	Next      manufacturing.BatchStatus   `json:"next,omitempty"`
}
