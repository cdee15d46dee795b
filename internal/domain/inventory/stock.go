package inventory

import (
	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Location is where a unit of stock physically or logically sits
type Location string

const (
	LocationManufacturing Location = "manufacturing"
	LocationTransit       Location = "transit"
	LocationWholesale     Location = "wholesale"
)

// AllLocations lists locations in flow order
var AllLocations = []Location{LocationManufacturing, LocationTransit, LocationWholesale}

// IsValid reports whether the location is known
func (l Location) IsValid() bool {
	switch l {
	case LocationManufacturing, LocationTransit, LocationWholesale:
		return true
	}
	return false
}

// route is an allowed movement and the roles that may perform it
type route struct {
	from, to Location
	roles    []identity.Role
}

var routes = []route{
	{LocationManufacturing, LocationTransit, []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleIncharge}},
	{LocationTransit, LocationWholesale, []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleShopkeeper}},
}

// ValidateRoute checks that stock may move from one location to the other
func ValidateRoute(from, to Location) error {
	if !from.IsValid() || !to.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unknown inventory location")
	}
	for _, r := range routes {
		if r.from == from && r.to == to {
			return nil
		}
	}
	return shared.Errorf(shared.CodeInvalidInput, "Stock cannot move from %s to %s", from, to)
}

// RolesForRoute returns the roles allowed to perform a movement, nil if the route is invalid
func RolesForRoute(from, to Location) []identity.Role {
	for _, r := range routes {
		if r.from == from && r.to == to {
			return r.roles
		}
	}
	return nil
}

// RecipientRoles returns who is notified when stock arrives at a location
func RecipientRoles(to Location) []identity.Role {
	switch to {
	case LocationTransit:
		return []identity.Role{identity.RoleShopkeeper, identity.RoleOwner, identity.RoleAdmin}
	case LocationWholesale:
		return []identity.Role{identity.RoleOwner, identity.RoleAdmin}
	case LocationManufacturing:
		return []identity.Role{identity.RoleIncharge, identity.RoleOwner, identity.RoleAdmin}
	}
	return nil
}

// Stock is the quantity of one product at one location. Quantity never goes negative.
type Stock struct {
	shared.BaseEntity
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_location" json:"product_id"`
	Location  Location        `gorm:"size:20;not null;uniqueIndex:idx_inventory_product_location" json:"location"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0;check:quantity >= 0" json:"quantity"`
}

// TableName returns the table name for GORM
func (Stock) TableName() string {
	return "inventory"
}

// NewStock creates an empty stock row
func NewStock(productID uuid.UUID, location Location) *Stock {
	return &Stock{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Location:   location,
		Quantity:   decimal.Zero,
	}
}

// StockRow is a stock level joined with its product
type StockRow struct {
	Stock
	ProductSKU  string `json:"product_sku"`
	ProductName string `json:"product_name"`
}

// LocationTotal is the total quantity held at a location
type LocationTotal struct {
	Location Location        `json:"location"`
	Quantity decimal.Decimal `json:"quantity"`
}
