package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/iwaqasmaqbool/gms-sub002/internal/application/catalog"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	appsales "github.com/iwaqasmaqbool/gms-sub002/internal/application/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// itemSlots is the number of blank item rows on the new-sale form
const itemSlots = 5

// SaleHandler serves wholesale sales and their payments
type SaleHandler struct {
	BaseHandler
	sales   *appsales.SaleService
	catalog *appcatalog.CatalogService
	users   *appidentity.UserService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(base BaseHandler, svc *appsales.SaleService, catalog *appcatalog.CatalogService, users *appidentity.UserService) *SaleHandler {
	return &SaleHandler{BaseHandler: base, sales: svc, catalog: catalog, users: users}
}

type salesView struct {
	Sales     shared.Paginated[sales.SaleRow]
	Statuses  []sales.PaymentStatus
	Methods   []sales.PaymentMethod
	Users     []appidentity.UserDTO
	Products  []catalog.Product
	ItemSlots []int
	Today     string
}

type saleDetailView struct {
	Detail      *appsales.SaleDetail
	Methods     []sales.PaymentMethod
	Outstanding decimal.Decimal
}

// saleForm holds the header fields; item rows arrive as repeated
// product_id, quantity and unit_price values
type saleForm struct {
	CustomerName   string `form:"customer_name" binding:"required,max=200"`
	CustomerPhone  string `form:"customer_phone" binding:"omitempty,max=30"`
	SaleDate       string `form:"sale_date" binding:"omitempty,date"`
	Discount       string `form:"discount" binding:"omitempty,decimal"`
	InitialPayment string `form:"initial_payment" binding:"omitempty,decimal"`
	PaymentMethod  string `form:"payment_method" binding:"omitempty,payment_method"`
	Notes          string `form:"notes" binding:"omitempty,max=2000"`
}

type paymentForm struct {
	Amount        string `form:"amount" binding:"required,positive"`
	PaymentMethod string `form:"payment_method" binding:"required,payment_method"`
	Reference     string `form:"reference" binding:"omitempty,max=100"`
	Notes         string `form:"notes" binding:"omitempty,max=500"`
}

// saleItems reads the item rows, skipping rows left entirely blank
func saleItems(c *gin.Context) ([]sales.ItemInput, error) {
	products := c.PostFormArray("product_id")
	quantities := c.PostFormArray("quantity")
	prices := c.PostFormArray("unit_price")

	at := func(values []string, i int) string {
		if i < len(values) {
			return strings.TrimSpace(values[i])
		}
		return ""
	}

	var items []sales.ItemInput
	for i := range products {
		product, quantity, price := at(products, i), at(quantities, i), at(prices, i)
		if product == "" && quantity == "" {
			continue
		}
		row := len(items) + 1
		id, err := uuid.Parse(product)
		if err != nil {
			return nil, shared.Errorf(shared.CodeInvalidInput, "Item %d has no product", row)
		}
		q, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, shared.Errorf(shared.CodeInvalidInput, "Item %d quantity must be a number", row)
		}
		p := decimal.Zero
		if price != "" {
			if p, err = decimal.NewFromString(price); err != nil {
				return nil, shared.Errorf(shared.CodeInvalidInput, "Item %d price must be a number", row)
			}
		}
		items = append(items, sales.ItemInput{ProductID: id, Quantity: q, UnitPrice: p})
	}
	return items, nil
}

// List renders the sales page
func (h *SaleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view := salesView{
		Statuses:  sales.AllPaymentStatuses,
		Methods:   sales.AllPaymentMethods,
		ItemSlots: make([]int, itemSlots),
		Today:     today(),
	}
	if view.Sales, err = h.sales.List(ctx, filter); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Products, err = h.catalog.ActiveProducts(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Users, err = h.users.ListActive(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "sales", "Sales", "sales", view)
}

// Create records a sale from the new-sale form
func (h *SaleHandler) Create(c *gin.Context) {
	var form saleForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/sales")
		return
	}
	items, err := saleItems(c)
	if err != nil {
		h.fail(c, err, "/sales")
		return
	}
	method := sales.PaymentMethod(form.PaymentMethod)
	if method == "" {
		method = sales.MethodCash
	}

	sale, err := h.sales.Create(c.Request.Context(), actor(c), appsales.CreateSaleInput{
		CustomerName:   form.CustomerName,
		CustomerPhone:  form.CustomerPhone,
		SaleDate:       dateOr(form.SaleDate, time.Now()),
		Items:          items,
		Discount:       decimalOr(form.Discount),
		InitialPayment: decimalOr(form.InitialPayment),
		PaymentMethod:  method,
		Notes:          form.Notes,
	})
	if err != nil {
		h.fail(c, err, "/sales")
		return
	}
	h.succeed(c, "/sales/"+sale.ID.String(), "Sale "+sale.InvoiceNumber+" recorded")
}

// Detail renders one sale with its items and payments
func (h *SaleHandler) Detail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	detail, err := h.sales.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "sale_detail", "Sale "+detail.Sale.InvoiceNumber, "sales", saleDetailView{
		Detail:      detail,
		Methods:     sales.AllPaymentMethods,
		Outstanding: detail.Sale.Outstanding(),
	})
}

// RecordPayment adds a payment against a sale
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err, "/sales")
		return
	}
	back := "/sales/" + id.String()

	var form paymentForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, back)
		return
	}
	p, err := h.sales.RecordPayment(c.Request.Context(), actor(c), id, appsales.RecordPaymentInput{
		Amount:    decimalOr(form.Amount),
		Method:    sales.PaymentMethod(form.PaymentMethod),
		Reference: form.Reference,
		Notes:     form.Notes,
	})
	if err != nil {
		h.fail(c, err, back)
		return
	}
	h.succeed(c, back, "Payment of "+p.Amount.StringFixed(2)+" recorded")
}
