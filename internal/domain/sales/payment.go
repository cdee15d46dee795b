package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a customer paid
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
	MethodMobile       PaymentMethod = "mobile"
)

// AllPaymentMethods lists methods for form dropdowns
var AllPaymentMethods = []PaymentMethod{MethodCash, MethodBankTransfer, MethodCheque, MethodMobile}

// IsValid reports whether the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheque, MethodMobile:
		return true
	}
	return false
}

// Payment is money received against a sale
type Payment struct {
	shared.BaseEntity
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null" json:"payment_method"`
	PaymentDate   time.Time       `gorm:"not null;index" json:"payment_date"`
	Reference     string          `gorm:"size:100" json:"reference"`
	ReceivedBy    uuid.UUID       `gorm:"type:uuid;not null;index" json:"received_by"`
	Notes         string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment validates a payment. The caller applies it to the sale.
func NewPayment(saleID uuid.UUID, amount decimal.Decimal, method PaymentMethod, reference string, by uuid.UUID, notes string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be greater than zero")
	}
	if method == "" {
		method = MethodCash
	}
	if !method.IsValid() {
		return nil, shared.Errorf(shared.CodeInvalidInput, "Unknown payment method %q", method)
	}
	return &Payment{
		BaseEntity:    shared.NewBaseEntity(),
		SaleID:        saleID,
		Amount:        amount,
		PaymentMethod: method,
		PaymentDate:   time.Now(),
		Reference:     strings.TrimSpace(reference),
		ReceivedBy:    by,
		Notes:         strings.TrimSpace(notes),
	}, nil
}

// PaymentRow is a payment joined with the receiving user
type PaymentRow struct {
	Payment
	ReceivedByName string `json:"received_by_name"`
}
