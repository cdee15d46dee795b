package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"created_at":    true,
	"username":      true,
	"full_name":     true,
	"email":         true,
	"role":          true,
	"last_login_at": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at": true,
	"sku":        true,
	"name":       true,
	"category":   true,
	"sale_price": true,
}

// MaterialSortFields contains allowed sort fields for raw materials
var MaterialSortFields = map[string]bool{
	"created_at":     true,
	"code":           true,
	"name":           true,
	"stock_quantity": true,
}

// PurchaseSortFields contains allowed sort fields for purchases
var PurchaseSortFields = map[string]bool{
	"purchase_date": true,
	"total_amount":  true,
	"quantity":      true,
	"supplier_name": true,
}

// BatchSortFields contains allowed sort fields for manufacturing batches
var BatchSortFields = map[string]bool{
	"start_date":        true,
	"batch_number":      true,
	"status":            true,
	"quantity_produced": true,
	"created_at":        true,
}

// TransferSortFields contains allowed sort fields for inventory transfers
var TransferSortFields = map[string]bool{
	"transfer_date": true,
	"quantity":      true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"sale_date":      true,
	"invoice_number": true,
	"net_amount":     true,
	"payment_status": true,
}

// FundSortFields contains allowed sort fields for fund transfers
var FundSortFields = map[string]bool{
	"transfer_date": true,
	"amount":        true,
}

// qualify prefixes a whitelisted column with its table for joined queries
func qualify(table, column string) string {
	return table + "." + column
}
