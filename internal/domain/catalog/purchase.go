package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Purchase records raw material bought from a supplier
type Purchase struct {
	shared.BaseEntity
	MaterialID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	SupplierName  string          `gorm:"size:150;not null" json:"supplier_name"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	PurchaseDate  time.Time       `gorm:"not null;index" json:"purchase_date"`
	InvoiceNumber string          `gorm:"size:80" json:"invoice_number"`
	PurchasedBy   uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchased_by"`
	Notes         string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase validates the purchase and computes its total
func NewPurchase(materialID uuid.UUID, supplier string, qty, unitPrice decimal.Decimal, date time.Time, invoice string, by uuid.UUID, notes string) (*Purchase, error) {
	supplier = strings.TrimSpace(supplier)
	if materialID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Material is required")
	}
	if supplier == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier name is required")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Purchase{
		BaseEntity:    shared.NewBaseEntity(),
		MaterialID:    materialID,
		SupplierName:  supplier,
		Quantity:      qty,
		UnitPrice:     unitPrice,
		TotalAmount:   qty.Mul(unitPrice).Round(2),
		PurchaseDate:  date,
		InvoiceNumber: strings.TrimSpace(invoice),
		PurchasedBy:   by,
		Notes:         strings.TrimSpace(notes),
	}, nil
}

// PurchaseRow is a purchase joined with its material for list pages
type PurchaseRow struct {
	Purchase
	MaterialCode    string `json:"material_code"`
	MaterialName    string `json:"material_name"`
	MaterialUnit    string `json:"material_unit"`
	PurchasedByName string `json:"purchased_by_name"`
}
