// Package report names the exportable reports and who may export them.
package report

import (
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// Kind identifies an exportable report
type Kind string

const (
	KindActivityLogs     Kind = "activity_logs"
	KindTransfers        Kind = "transfers"
	KindInventory        Kind = "inventory"
	KindBatches          Kind = "batches"
	KindSales            Kind = "sales"
	KindPurchases        Kind = "purchases"
	KindFunds            Kind = "funds"
	KindFinancialSummary Kind = "financial_summary"
)

// AllKinds lists every report kind
var AllKinds = []Kind{
	KindActivityLogs, KindTransfers, KindInventory, KindBatches,
	KindSales, KindPurchases, KindFunds, KindFinancialSummary,
}

var (
	managers    = []identity.Role{identity.RoleAdmin, identity.RoleOwner}
	production  = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleIncharge}
	sellers     = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleShopkeeper}
	everyone    = identity.AllRoles
	rolesByKind = map[Kind][]identity.Role{
		KindActivityLogs:     managers,
		KindFinancialSummary: managers,
		KindBatches:          production,
		KindPurchases:        production,
		KindFunds:            production,
		KindSales:            sellers,
		KindInventory:        everyone,
		KindTransfers:        everyone,
	}
)

// ParseKind validates a report name
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := rolesByKind[k]; !ok {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Unknown report: "+s)
	}
	return k, nil
}

// Roles returns the roles allowed to export the report
func (k Kind) Roles() []identity.Role {
	return rolesByKind[k]
}

// Title returns the heading printed on the exported file
func (k Kind) Title() string {
	switch k {
	case KindActivityLogs:
		return "Activity Logs"
	case KindTransfers:
		return "Inventory Transfers"
	case KindInventory:
		return "Inventory"
	case KindBatches:
		return "Manufacturing Batches"
	case KindSales:
		return "Sales"
	case KindPurchases:
		return "Raw Material Purchases"
	case KindFunds:
		return "Fund Transfers"
	case KindFinancialSummary:
		return "Financial Summary"
	}
	return string(k)
}
