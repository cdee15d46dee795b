package catalog

import (
	"strings"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a finished garment the business manufactures and sells
type Product struct {
	shared.BaseEntity
	SKU         string          `gorm:"size:50;not null;uniqueIndex" json:"sku"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Category    string          `gorm:"size:80;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"sale_price"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active product
func NewProduct(sku, name, category, description string, salePrice decimal.Decimal) (*Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	name = strings.TrimSpace(name)
	if sku == "" || name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "SKU and name are required")
	}
	if salePrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale price cannot be negative")
	}
	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		SKU:         sku,
		Name:        name,
		Category:    strings.TrimSpace(category),
		Description: strings.TrimSpace(description),
		SalePrice:   salePrice,
		IsActive:    true,
	}, nil
}
