package handler

import "github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"

// Role groups used by the router to gate whole areas. The services enforce the
// same rules again for each operation.
var (
	// AdminRoles manage user accounts
	AdminRoles = []identity.Role{identity.RoleAdmin}
	// ProductionRoles run batches, purchases and the catalog
	ProductionRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleIncharge}
	// SellerRoles record sales and payments
	SellerRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleShopkeeper}
	// FundRoles move money between users
	FundRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleIncharge}
	// ManagerRoles read the activity log and the financial summary
	ManagerRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner}
)
