package sales

import (
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// CreateSaleInput contains input for a wholesale sale. A positive InitialPayment
// is recorded with the sale.
type CreateSaleInput struct {
	CustomerName   string
	CustomerPhone  string
	SaleDate       time.Time
	Items          []sales.ItemInput
	Discount       decimal.Decimal
	InitialPayment decimal.Decimal
	PaymentMethod  sales.PaymentMethod
	Notes          string
}

// RecordPaymentInput contains input for a payment against a sale
type RecordPaymentInput struct {
	Amount    decimal.Decimal
	Method    sales.PaymentMethod
	Reference string
	Notes     string
}

// SaleDetail is a sale with its lines and payments
type SaleDetail struct {
	Sale     sales.Sale         `json:"sale"`
	Items    []sales.ItemRow    `json:"items"`
	Payments []sales.PaymentRow `json:"payments"`
}
