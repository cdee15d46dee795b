package manufacturing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StageMaterialTotal is SUM(batch_materials.total_cost) for one stage
type StageMaterialTotal struct {
	Stage BatchStatus
	Total decimal.Decimal
}

// StageCostTotal is the labor/overhead split of manufacturing_costs for one stage
type StageCostTotal struct {
	Stage    BatchStatus
	Labor    decimal.Decimal
	Overhead decimal.Decimal
}

// CostTypeTotal is SUM(amount) for one cost type
type CostTypeTotal struct {
	CostType CostType        `json:"cost_type"`
	Amount   decimal.Decimal `json:"amount"`
}

// StageCost is one row of the per-stage breakdown
type StageCost struct {
	Stage        BatchStatus     `json:"stage"`
	MaterialCost decimal.Decimal `json:"material_cost"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	OverheadCost decimal.Decimal `json:"overhead_cost"`
	Total        decimal.Decimal `json:"total"`
	Reached      bool            `json:"reached"`
}

// BatchCosting is the cost rollup of a batch
type BatchCosting struct {
	BatchID          uuid.UUID       `json:"batch_id"`
	BatchNumber      string          `json:"batch_number"`
	ProductName      string          `json:"product_name"`
	Status           BatchStatus     `json:"status"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	MaterialCost     decimal.Decimal `json:"material_cost"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	OverheadCost     decimal.Decimal `json:"overhead_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	CostPerUnit      decimal.Decimal `json:"cost_per_unit"`
	Stages           []StageCost     `json:"stages"`
	CostTypes        []CostTypeTotal `json:"cost_types"`
}

// CostPerUnit divides total by quantity, rounded to cents; zero quantity yields zero
func CostPerUnit(total, qty decimal.Decimal) decimal.Decimal {
	if !qty.IsPositive() {
		return decimal.Zero
	}
	return total.Div(qty).Round(2)
}

// BuildCosting assembles the rollup from the grouped aggregate rows. Every stage of
// the pipeline appears in order, and the headline totals are the sums of the stages.
func BuildCosting(batch *BatchRow, materials []StageMaterialTotal, costs []StageCostTotal, types []CostTypeTotal) *BatchCosting {
	byStage := make(map[BatchStatus]*StageCost, len(Pipeline))
	stages := make([]StageCost, len(Pipeline))
	reachedIdx := batch.Status.Index()
	for i, s := range Pipeline {
		stages[i] = StageCost{
			Stage:        s,
			MaterialCost: decimal.Zero,
			LaborCost:    decimal.Zero,
			OverheadCost: decimal.Zero,
			Total:        decimal.Zero,
			Reached:      i <= reachedIdx,
		}
		byStage[s] = &stages[i]
	}

	for _, m := range materials {
		if sc, ok := byStage[m.Stage]; ok {
			sc.MaterialCost = sc.MaterialCost.Add(m.Total)
		}
	}
	for _, c := range costs {
		if sc, ok := byStage[c.Stage]; ok {
			sc.LaborCost = sc.LaborCost.Add(c.Labor)
			sc.OverheadCost = sc.OverheadCost.Add(c.Overhead)
		}
	}

	bc := &BatchCosting{
		BatchID:          batch.ID,
		BatchNumber:      batch.BatchNumber,
		ProductName:      batch.ProductName,
		Status:           batch.Status,
		QuantityProduced: batch.QuantityProduced,
		MaterialCost:     decimal.Zero,
		LaborCost:        decimal.Zero,
		OverheadCost:     decimal.Zero,
		Stages:           stages,
		CostTypes:        types,
	}
	for i := range stages {
		stages[i].Total = stages[i].MaterialCost.Add(stages[i].LaborCost).Add(stages[i].OverheadCost)
		bc.MaterialCost = bc.MaterialCost.Add(stages[i].MaterialCost)
		bc.LaborCost = bc.LaborCost.Add(stages[i].LaborCost)
		bc.OverheadCost = bc.OverheadCost.Add(stages[i].OverheadCost)
	}
	bc.TotalCost = bc.MaterialCost.Add(bc.LaborCost).Add(bc.OverheadCost)
	bc.CostPerUnit = CostPerUnit(bc.TotalCost, bc.QuantityProduced)
	if bc.CostTypes == nil {
		bc.CostTypes = []CostTypeTotal{}
	}
	return bc
}
