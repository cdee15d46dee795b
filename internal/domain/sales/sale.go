package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from how much of the net amount has been paid
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// AllPaymentStatuses lists statuses for filter dropdowns
var AllPaymentStatuses = []PaymentStatus{PaymentUnpaid, PaymentPartial, PaymentPaid}

// IsValid reports whether the status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// DerivePaymentStatus compares paid against net
func DerivePaymentStatus(paid, net decimal.Decimal) PaymentStatus {
	switch {
	case !paid.IsPositive():
		return PaymentUnpaid
	case paid.LessThan(net):
		return PaymentPartial
	default:
		return PaymentPaid
	}
}

// Sale is a wholesale invoice
type Sale struct {
	shared.BaseAggregateRoot
	InvoiceNumber  string          `gorm:"size:30;not null;uniqueIndex" json:"invoice_number"`
	CustomerName   string          `gorm:"size:150;not null" json:"customer_name"`
	CustomerPhone  string          `gorm:"size:30" json:"customer_phone"`
	SaleDate       time.Time       `gorm:"not null;index" json:"sale_date"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"net_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	PaymentStatus  PaymentStatus   `gorm:"size:20;not null;index" json:"payment_status"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	Notes          string          `gorm:"type:text" json:"notes"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one product line on a sale
type SaleItem struct {
	shared.BaseEntity
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// ItemInput is a requested sale line
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// InvoiceNumberPrefix is the INV-YYYYMMDD- part shared by a day's invoices
func InvoiceNumberPrefix(day time.Time) string {
	return "INV-" + day.Format("20060102") + "-"
}

// FormatInvoiceNumber renders INV-YYYYMMDD-NNNN
func FormatInvoiceNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%04d", InvoiceNumberPrefix(day), seq)
}

// NewSale validates the lines and computes totals. Lines for the same product are merged.
func NewSale(invoice, customer, phone string, items []ItemInput, discount decimal.Decimal, by uuid.UUID, notes string) (*Sale, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer name is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "A sale needs at least one item")
	}
	if discount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Discount cannot be negative")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     strings.ToUpper(strings.TrimSpace(invoice)),
		CustomerName:      customer,
		CustomerPhone:     strings.TrimSpace(phone),
		SaleDate:          time.Now(),
		DiscountAmount:    discount,
		PaidAmount:        decimal.Zero,
		PaymentStatus:     PaymentUnpaid,
		CreatedBy:         by,
		Notes:             strings.TrimSpace(notes),
	}

	index := make(map[string]int, len(items))
	total := decimal.Zero
	for i, in := range items {
		if in.ProductID == uuid.Nil {
			return nil, shared.Errorf(shared.CodeInvalidInput, "Item %d has no product", i+1)
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.Errorf(shared.CodeInvalidInput, "Item %d quantity must be greater than zero", i+1)
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.Errorf(shared.CodeInvalidInput, "Item %d price cannot be negative", i+1)
		}
		line := in.Quantity.Mul(in.UnitPrice).Round(2)
		total = total.Add(line)

		key := in.ProductID.String() + "|" + in.UnitPrice.String()
		if j, ok := index[key]; ok {
			sale.Items[j].Quantity = sale.Items[j].Quantity.Add(in.Quantity)
			sale.Items[j].TotalPrice = sale.Items[j].TotalPrice.Add(line)
			continue
		}
		index[key] = len(sale.Items)
		sale.Items = append(sale.Items, SaleItem{
			BaseEntity: shared.NewBaseEntity(),
			SaleID:     sale.ID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: line,
		})
	}

	if discount.GreaterThan(total) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Discount cannot exceed the sale total")
	}
	sale.TotalAmount = total
	sale.NetAmount = total.Sub(discount)
	if sale.NetAmount.IsZero() {
		sale.PaymentStatus = PaymentPaid
	}
	return sale, nil
}

// Outstanding is what remains to be paid
func (s *Sale) Outstanding() decimal.Decimal {
	return s.NetAmount.Sub(s.PaidAmount)
}

// ApplyPayment adds amount to the paid total and rederives the status
func (s *Sale) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be greater than zero")
	}
	if s.PaidAmount.Add(amount).GreaterThan(s.NetAmount) {
		return shared.Errorf(shared.CodeInvalidInput, "Payment exceeds the outstanding amount of %s", s.Outstanding().StringFixed(2))
	}
	s.PaidAmount = s.PaidAmount.Add(amount)
	s.PaymentStatus = DerivePaymentStatus(s.PaidAmount, s.NetAmount)
	s.Touch()
	return nil
}

// SaleRow is a sale joined with its creator for list pages
type SaleRow struct {
	Sale
	CreatedByName string `json:"created_by_name"`
	ItemCount     int64  `json:"item_count"`
}

// ItemRow is a sale item joined with its product
type ItemRow struct {
	SaleItem
	ProductSKU  string `json:"product_sku"`
	ProductName string `json:"product_name"`
}

// EventTypeSaleCreated is published after a sale commits
const EventTypeSaleCreated = "sales.sale.created"

// SaleCreatedEvent reports a committed sale
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	ItemCount     int             `json:"item_count"`
}

// NewSaleCreatedEvent builds the event for a committed sale
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, "sale", s.ID),
		InvoiceNumber:   s.InvoiceNumber,
		NetAmount:       s.NetAmount,
		ItemCount:       len(s.Items),
	}
}
