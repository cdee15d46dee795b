package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/iwaqasmaqbool/gms-sub002/internal/application/catalog"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	appinventory "github.com/iwaqasmaqbool/gms-sub002/internal/application/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// InventoryHandler serves stock levels and transfers
type InventoryHandler struct {
	BaseHandler
	inventory *appinventory.InventoryService
	catalog   *appcatalog.CatalogService
	users     *appidentity.UserService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(base BaseHandler, svc *appinventory.InventoryService, catalog *appcatalog.CatalogService, users *appidentity.UserService) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, inventory: svc, catalog: catalog, users: users}
}

type stockView struct {
	Stock     *appinventory.StockOverview
	Locations []inventory.Location
	Products  []catalog.Product
}

type routeOption struct {
	Value string
	Label string
}

type transfersView struct {
	Transfers shared.Paginated[inventory.TransferRow]
	Locations []inventory.Location
	Products  []catalog.Product
	Users     []appidentity.UserDTO
	Routes    []routeOption
}

// transferForm accepts either a combined "from:to" route or the two locations
type transferForm struct {
	ProductID    string `form:"product_id" binding:"required,uuid"`
	Route        string `form:"route" binding:"omitempty,max=40"`
	FromLocation string `form:"from_location" binding:"omitempty,location"`
	ToLocation   string `form:"to_location" binding:"omitempty,location"`
	Quantity     string `form:"quantity" binding:"required,positive"`
	Notes        string `form:"notes" binding:"omitempty,max=500"`
}

func (f transferForm) locations() (inventory.Location, inventory.Location) {
	if from, to, ok := strings.Cut(f.Route, ":"); ok {
		return inventory.Location(from), inventory.Location(to)
	}
	return inventory.Location(f.FromLocation), inventory.Location(f.ToLocation)
}

// routesFor lists the movements the actor's role may perform
func routesFor(a identity.Actor) []routeOption {
	var out []routeOption
	for _, from := range inventory.AllLocations {
		for _, to := range inventory.AllLocations {
			if inventory.ValidateRoute(from, to) != nil || !a.HasAnyRole(inventory.RolesForRoute(from, to)...) {
				continue
			}
			out = append(out, routeOption{
				Value: string(from) + ":" + string(to),
				Label: capitalize(string(from)) + " → " + capitalize(string(to)),
			})
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Stock renders the inventory page
func (h *InventoryHandler) Stock(c *gin.Context) {
	ctx := c.Request.Context()
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view := stockView{Locations: inventory.AllLocations}
	if view.Stock, err = h.inventory.ListStock(ctx, filter); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Products, err = h.catalog.ActiveProducts(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "inventory", "Inventory", "inventory", view)
}

// Transfers renders the transfer history and the move form
func (h *InventoryHandler) Transfers(c *gin.Context) {
	ctx := c.Request.Context()
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	view := transfersView{Locations: inventory.AllLocations, Routes: routesFor(actor(c))}
	if view.Transfers, err = h.inventory.ListTransfers(ctx, filter); err != nil {
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
	h.render(c, "transfers", "Inventory Transfers", "transfers", view)
}

// Transfer moves stock between locations
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var form transferForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/inventory/transfers")
		return
	}
	from, to := form.locations()
	t, err := h.inventory.Transfer(c.Request.Context(), actor(c), appinventory.TransferInput{
		ProductID: uuid.MustParse(form.ProductID),
		From:      from,
		To:        to,
		Quantity:  decimalOr(form.Quantity),
		Notes:     form.Notes,
	})
	if err != nil {
		h.fail(c, err, "/inventory/transfers")
		return
	}
	h.succeed(c, "/inventory/transfers", "Moved "+t.Quantity.String()+" from "+string(t.FromLocation)+" to "+string(t.ToLocation))
}
