package activity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// Action names written by the application services
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionActivate     = "activate"
	ActionDeactivate   = "deactivate"
	ActionTransfer     = "transfer"
	ActionStatusChange = "status_change"
	ActionRecordCost   = "record_cost"
	ActionAllocate     = "allocate_material"
	ActionPurchase     = "purchase"
	ActionSale         = "sale"
	ActionPayment      = "payment"
	ActionFundTransfer = "fund_transfer"
	ActionExport       = "export"
)

// Module names, one per area of the dashboard
const (
	ModuleUsers         = "users"
	ModuleAuth          = "auth"
	ModuleCatalog       = "catalog"
	ModulePurchases     = "purchases"
	ModuleManufacturing = "manufacturing"
	ModuleInventory     = "inventory"
	ModuleSales         = "sales"
	ModuleFinance       = "finance"
	ModuleReports       = "reports"
)

// AllModules lists modules for the log viewer filter
var AllModules = []string{
	ModuleUsers, ModuleAuth, ModuleCatalog, ModulePurchases, ModuleManufacturing,
	ModuleInventory, ModuleSales, ModuleFinance, ModuleReports,
}

// Log is one entry of the audit trail
type Log struct {
	shared.BaseEntity
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action      string     `gorm:"size:50;not null;index" json:"action"`
	Module      string     `gorm:"size:50;not null;index" json:"module"`
	EntityID    *uuid.UUID `gorm:"type:uuid" json:"entity_id,omitempty"`
	Description string     `gorm:"type:text" json:"description"`
	IPAddress   string     `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string     `gorm:"size:255" json:"user_agent,omitempty"`
}

// TableName returns the table name for GORM
func (Log) TableName() string {
	return "activity_logs"
}

// Entry is what a service knows when it records an action. The request
// metadata is filled from the context by the recorder.
type Entry struct {
	UserID      *uuid.UUID
	Action      string
	Module      string
	EntityID    *uuid.UUID
	Description string
}

// NewLog validates an entry and attaches request metadata
func NewLog(e Entry, ipAddress, userAgent string) (*Log, error) {
	action := strings.TrimSpace(e.Action)
	module := strings.TrimSpace(e.Module)
	if action == "" || module == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Activity action and module are required")
	}
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	return &Log{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      e.UserID,
		Action:      action,
		Module:      module,
		EntityID:    e.EntityID,
		Description: strings.TrimSpace(e.Description),
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	}, nil
}

// LogRow is a log joined with the acting user
type LogRow struct {
	Log
	Username string `json:"username"`
	FullName string `json:"full_name"`
}
