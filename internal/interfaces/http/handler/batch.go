package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/iwaqasmaqbool/gms-sub002/internal/application/catalog"
	appmanufacturing "github.com/iwaqasmaqbool/gms-sub002/internal/application/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// BatchHandler serves manufacturing batches
type BatchHandler struct {
	BaseHandler
	batches *appmanufacturing.BatchService
	catalog *appcatalog.CatalogService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(base BaseHandler, batches *appmanufacturing.BatchService, catalog *appcatalog.CatalogService) *BatchHandler {
	return &BatchHandler{BaseHandler: base, batches: batches, catalog: catalog}
}

type batchesView struct {
	Batches  shared.Paginated[manufacturing.BatchRow]
	Products []catalog.Product
	Statuses []manufacturing.BatchStatus
	Today    string
}

type batchDetailView struct {
	Detail    *appmanufacturing.BatchDetail
	CostTypes []manufacturing.CostType
	Materials []catalog.RawMaterial
	CanEdit   bool
	Today     string
}

type batchForm struct {
	BatchNumber            string `form:"batch_number" binding:"omitempty,max=40"`
	ProductID              string `form:"product_id" binding:"required,uuid"`
	Quantity               string `form:"quantity" binding:"required,positive"`
	StartDate              string `form:"start_date" binding:"omitempty,date"`
	ExpectedCompletionDate string `form:"expected_completion_date" binding:"omitempty,date"`
	Notes                  string `form:"notes" binding:"omitempty,max=2000"`
}

type statusForm struct {
	Status string `form:"status" binding:"required,batch_status"`
}

type costForm struct {
	CostType    string `form:"cost_type" binding:"required,cost_type"`
	Amount      string `form:"amount" binding:"required,positive"`
	Description string `form:"description" binding:"omitempty,max=500"`
	CostDate    string `form:"cost_date" binding:"omitempty,date"`
}

type allocateForm struct {
	MaterialID string `form:"material_id" binding:"required,uuid"`
	Quantity   string `form:"quantity" binding:"required,positive"`
}

// List renders the batches page
func (h *BatchHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view := batchesView{Statuses: manufacturing.Pipeline, Today: today()}
	if view.Batches, err = h.batches.List(ctx, filter); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Products, err = h.catalog.ActiveProducts(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "batches", "Manufacturing Batches", "batches", view)
}

// Create handles the new-batch form
func (h *BatchHandler) Create(c *gin.Context) {
	var form batchForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/batches")
		return
	}
	var expected *time.Time
	if form.ExpectedCompletionDate != "" {
		t := dateOr(form.ExpectedCompletionDate, time.Now())
		expected = &t
	}
	b, err := h.batches.Create(c.Request.Context(), actor(c), appmanufacturing.CreateBatchInput{
		BatchNumber:            form.BatchNumber,
		ProductID:              uuid.MustParse(form.ProductID),
		Quantity:               decimalOr(form.Quantity),
		StartDate:              dateOr(form.StartDate, time.Now()),
		ExpectedCompletionDate: expected,
		Notes:                  form.Notes,
	})
	if err != nil {
		h.fail(c, err, "/batches")
		return
	}
	h.succeed(c, "/batches/"+b.ID.String(), "Batch "+b.BatchNumber+" created")
}

// Detail renders one batch with its cost rollup
func (h *BatchHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pathID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view := batchDetailView{
		CostTypes: manufacturing.AllCostTypes,
		CanEdit:   actor(c).HasAnyRole(ProductionRoles...),
		Today:     today(),
	}
	if view.Detail, err = h.batches.Detail(ctx, id); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Materials, err = h.catalog.AllMaterials(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "batch_detail", "Batch "+view.Detail.Batch.BatchNumber, "batches", view)
}

// UpdateStatus advances the batch one stage
func (h *BatchHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err, "/batches")
		return
	}
	back := "/batches/" + id.String()
	var form statusForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, back)
		return
	}
	b, err := h.batches.UpdateStatus(c.Request.Context(), actor(c), id, manufacturing.BatchStatus(form.Status))
	if err != nil {
		h.fail(c, err, back)
		return
	}
	h.succeed(c, back, "Batch "+b.BatchNumber+" moved to "+string(b.Status))
}

// RecordCost handles the cost form of a batch
func (h *BatchHandler) RecordCost(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err, "/batches")
		return
	}
	back := "/batches/" + id.String()
	var form costForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, back)
		return
	}
	cost, err := h.batches.RecordCost(c.Request.Context(), actor(c), id, appmanufacturing.RecordCostInput{
		CostType:    manufacturing.CostType(form.CostType),
		Amount:      decimalOr(form.Amount),
		Description: form.Description,
		CostDate:    dateOr(form.CostDate, time.Now()),
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}
	h.succeed(c, back, string(cost.CostType)+" cost of "+cost.Amount.StringFixed(2)+" recorded")
}

// AllocateMaterial handles the material form of a batch
func (h *BatchHandler) AllocateMaterial(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err, "/batches")
		return
	}
	back := "/batches/" + id.String()
	var form allocateForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, back)
		return
	}
	m, err := h.batches.AllocateMaterial(c.Request.Context(), actor(c), id, appmanufacturing.AllocateMaterialInput{
		MaterialID: uuid.MustParse(form.MaterialID),
		Quantity:   decimalOr(form.Quantity),
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}
	h.succeed(c, back, "Material allocated at "+m.TotalCost.StringFixed(2))
}

// Costing godoc
// @ID           getBatchCosting
// @Summary      Get the cost rollup of a batch
// @Description  Material, labor and overhead totals per stage with the cost per produced unit
// @Tags         batches
// @Produce      json
// @Param        id   path      string  true  "Batch ID"  format(uuid)
// @Success      200  {object}  APIResponse[manufacturing.BatchCosting]
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/batches/{id}/costing [get]
func (h *BatchHandler) Costing(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	costing, err := h.batches.Costing(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, costing)
}
