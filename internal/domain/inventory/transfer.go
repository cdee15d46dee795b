package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransferStatus of a recorded movement. Transfers are applied immediately so
// every stored transfer is completed.
type TransferStatus string

const TransferCompleted TransferStatus = "completed"

// Transfer is a recorded movement of stock between two locations
type Transfer struct {
	shared.BaseEntity
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	FromLocation Location        `gorm:"size:20;not null;index" json:"from_location"`
	ToLocation   Location        `gorm:"size:20;not null;index" json:"to_location"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Status       TransferStatus  `gorm:"size:20;not null" json:"status"`
	TransferDate time.Time       `gorm:"not null;index" json:"transfer_date"`
	InitiatedBy  uuid.UUID       `gorm:"type:uuid;not null;index" json:"initiated_by"`
	Notes        string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "inventory_transfers"
}

// NewTransfer validates a movement request
func NewTransfer(productID uuid.UUID, from, to Location, qty decimal.Decimal, by uuid.UUID, notes string) (*Transfer, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product is required")
	}
	if err := ValidateRoute(from, to); err != nil {
		return nil, err
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than zero")
	}
	return &Transfer{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		FromLocation: from,
		ToLocation:   to,
		Quantity:     qty,
		Status:       TransferCompleted,
		TransferDate: time.Now(),
		InitiatedBy:  by,
		Notes:        strings.TrimSpace(notes),
	}, nil
}

// TransferRow is a transfer joined with product and initiator for list pages
type TransferRow struct {
	Transfer
	ProductSKU      string `json:"product_sku"`
	ProductName     string `json:"product_name"`
	InitiatedByName string `json:"initiated_by_name"`
}

// EventTypeTransferCompleted is published after a transfer commits
const EventTypeTransferCompleted = "inventory.transfer.completed"

// TransferCompletedEvent carries what realtime subscribers need to push the
// notifications that were written inside the transfer transaction.
type TransferCompletedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	From        Location        `json:"from"`
	To          Location        `json:"to"`
	Quantity    decimal.Decimal `json:"quantity"`
	InitiatedBy uuid.UUID       `json:"initiated_by"`
}

// NewTransferCompletedEvent builds the event for a committed transfer
func NewTransferCompletedEvent(t *Transfer, productName string) *TransferCompletedEvent {
	return &TransferCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCompleted, "inventory_transfer", t.ID),
		ProductID:       t.ProductID,
		ProductName:     productName,
		From:            t.FromLocation,
		To:              t.ToLocation,
		Quantity:        t.Quantity,
		InitiatedBy:     t.InitiatedBy,
	}
}
