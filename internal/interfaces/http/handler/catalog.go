package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/iwaqasmaqbool/gms-sub002/internal/application/catalog"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CatalogHandler serves products, raw materials and purchases
type CatalogHandler struct {
	BaseHandler
	catalog *appcatalog.CatalogService
	users   *appidentity.UserService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(base BaseHandler, svc *appcatalog.CatalogService, users *appidentity.UserService) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, catalog: svc, users: users}
}

type productsView struct {
	Products shared.Paginated[catalog.Product]
}

type materialsView struct {
	Materials shared.Paginated[appcatalog.MaterialView]
	Units     []catalog.Unit
}

type purchasesView struct {
	Purchases shared.Paginated[catalog.PurchaseRow]
	Total     decimal.Decimal
	Materials []catalog.RawMaterial
	Users     []appidentity.UserDTO
	Today     string
}

type productForm struct {
	SKU         string `form:"sku" binding:"required,max=50"`
	Name        string `form:"name" binding:"required,max=200"`
	Category    string `form:"category" binding:"omitempty,max=100"`
	Description string `form:"description" binding:"omitempty,max=2000"`
	SalePrice   string `form:"sale_price" binding:"omitempty,decimal"`
}

type materialForm struct {
	Code          string `form:"code" binding:"required,max=50"`
	Name          string `form:"name" binding:"required,max=200"`
	Unit          string `form:"unit" binding:"required,unit"`
	MinStockLevel string `form:"min_stock_level" binding:"omitempty,decimal"`
}

type purchaseForm struct {
	MaterialID    string `form:"material_id" binding:"required,uuid"`
	SupplierName  string `form:"supplier_name" binding:"required,max=200"`
	Quantity      string `form:"quantity" binding:"required,positive"`
	UnitPrice     string `form:"unit_price" binding:"required,decimal"`
	PurchaseDate  string `form:"purchase_date" binding:"omitempty,date"`
	InvoiceNumber string `form:"invoice_number" binding:"omitempty,max=100"`
	Notes         string `form:"notes" binding:"omitempty,max=2000"`
}

// Products renders the products page
func (h *CatalogHandler) Products(c *gin.Context) {
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	page, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "products", "Products", "products", productsView{Products: page})
}

// CreateProduct handles the new-product form
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/products")
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), actor(c), appcatalog.CreateProductInput{
		SKU:         form.SKU,
		Name:        form.Name,
		Category:    form.Category,
		Description: form.Description,
		SalePrice:   decimalOr(form.SalePrice),
	})
	if err != nil {
		h.fail(c, err, "/products")
		return
	}
	h.succeed(c, "/products", "Product "+p.SKU+" created")
}

// Materials renders the raw materials page
func (h *CatalogHandler) Materials(c *gin.Context) {
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	page, err := h.catalog.ListMaterials(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "raw_materials", "Raw Materials", "raw_materials", materialsView{Materials: page, Units: catalog.AllUnits})
}

// CreateMaterial handles the new-material form
func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var form materialForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/raw-materials")
		return
	}
	m, err := h.catalog.CreateMaterial(c.Request.Context(), actor(c), appcatalog.CreateMaterialInput{
		Code:          form.Code,
		Name:          form.Name,
		Unit:          catalog.Unit(form.Unit),
		MinStockLevel: decimalOr(form.MinStockLevel),
	})
	if err != nil {
		h.fail(c, err, "/raw-materials")
		return
	}
	h.succeed(c, "/raw-materials", "Material "+m.Code+" created")
}

// Purchases renders the purchases page
func (h *CatalogHandler) Purchases(c *gin.Context) {
	ctx := c.Request.Context()
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view := purchasesView{Today: today()}
	if view.Purchases, err = h.catalog.ListPurchases(ctx, filter); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Total, err = h.catalog.PurchaseTotal(ctx, filter); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Materials, err = h.catalog.AllMaterials(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Users, err = h.users.ListActive(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "purchases", "Purchases", "purchases", view)
}

// RecordPurchase handles the purchase form
func (h *CatalogHandler) RecordPurchase(c *gin.Context) {
	var form purchaseForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/purchases")
		return
	}
	p, err := h.catalog.RecordPurchase(c.Request.Context(), actor(c), appcatalog.RecordPurchaseInput{
		MaterialID:    uuid.MustParse(form.MaterialID),
		SupplierName:  form.SupplierName,
		Quantity:      decimalOr(form.Quantity),
		UnitPrice:     decimalOr(form.UnitPrice),
		PurchaseDate:  dateOr(form.PurchaseDate, time.Now()),
		InvoiceNumber: form.InvoiceNumber,
		Notes:         form.Notes,
	})
	if err != nil {
		h.fail(c, err, "/purchases")
		return
	}
	h.succeed(c, "/purchases", "Purchase of "+p.TotalAmount.StringFixed(2)+" recorded")
}
