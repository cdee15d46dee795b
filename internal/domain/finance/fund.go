package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FundTransfer moves cash from one user to another
type FundTransfer struct {
	shared.BaseEntity
	FromUserID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"from_user_id"`
	ToUserID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"to_user_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Description  string          `gorm:"type:text" json:"description"`
	TransferDate time.Time       `gorm:"not null;index" json:"transfer_date"`
	CreatedBy    uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
}

// TableName returns the table name for GORM
func (FundTransfer) TableName() string {
	return "funds"
}

// NewFundTransfer validates the parties and amount
func NewFundTransfer(from, to uuid.UUID, amount decimal.Decimal, description string, by uuid.UUID) (*FundTransfer, error) {
	if from == uuid.Nil || to == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sender and receiver are required")
	}
	if from == to {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cannot transfer funds to the same user")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Amount must be greater than zero")
	}
	return &FundTransfer{
		BaseEntity:   shared.NewBaseEntity(),
		FromUserID:   from,
		ToUserID:     to,
		Amount:       amount,
		Description:  strings.TrimSpace(description),
		TransferDate: time.Now(),
		CreatedBy:    by,
	}, nil
}

// FundRow is a fund transfer joined with both parties
type FundRow struct {
	FundTransfer
	FromName string `json:"from_name"`
	FromRole string `json:"from_role"`
	ToName   string `json:"to_name"`
	ToRole   string `json:"to_role"`
}

// Balance is the cash a user holds
type Balance struct {
	UserID        uuid.UUID       `json:"user_id"`
	Received      decimal.Decimal `json:"received"`
	Sent          decimal.Decimal `json:"sent"`
	Purchases     decimal.Decimal `json:"purchases"`
	Manufacturing decimal.Decimal `json:"manufacturing"`
	Available     decimal.Decimal `json:"available"`
	CapitalSource bool            `json:"capital_source"`
}

// NewBalance derives the available amount from its parts
func NewBalance(userID uuid.UUID, received, sent, purchases, manufacturing decimal.Decimal) Balance {
	return Balance{
		UserID:        userID,
		Received:      received,
		Sent:          sent,
		Purchases:     purchases,
		Manufacturing: manufacturing,
		Available:     received.Sub(sent).Sub(purchases).Sub(manufacturing),
	}
}

// Covers reports whether the balance allows spending amount
func (b Balance) Covers(amount decimal.Decimal) bool {
	return b.CapitalSource || b.Available.GreaterThanOrEqual(amount)
}
