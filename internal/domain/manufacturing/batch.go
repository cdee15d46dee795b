package manufacturing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BatchStatus is a stage of the production pipeline
type BatchStatus string

const (
	StatusPending   BatchStatus = "pending"
	StatusCutting   BatchStatus = "cutting"
	StatusStitching BatchStatus = "stitching"
	StatusIroning   BatchStatus = "ironing"
	StatusPackaging BatchStatus = "packaging"
	StatusCompleted BatchStatus = "completed"
)

// Pipeline is the fixed stage order a batch moves through
var Pipeline = []BatchStatus{
	StatusPending,
	StatusCutting,
	StatusStitching,
	StatusIroning,
	StatusPackaging,
	StatusCompleted,
}

// Index returns the position of the status in the pipeline, or -1
func (s BatchStatus) Index() int {
	for i, p := range Pipeline {
		if p == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether the status is part of the pipeline
func (s BatchStatus) IsValid() bool {
	return s.Index() >= 0
}

// Next returns the following stage and false when the status is terminal
func (s BatchStatus) Next() (BatchStatus, bool) {
	i := s.Index()
	if i < 0 || i == len(Pipeline)-1 {
		return "", false
	}
	return Pipeline[i+1], true
}

// IsTerminal reports whether no further transition exists
func (s BatchStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// Batch is one production run of a product
type Batch struct {
	shared.BaseAggregateRoot
	BatchNumber            string          `gorm:"size:40;not null;uniqueIndex" json:"batch_number"`
	ProductID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	QuantityProduced       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_produced"`
	Status                 BatchStatus     `gorm:"size:20;not null;index" json:"status"`
	StartDate              time.Time       `gorm:"not null;index" json:"start_date"`
	ExpectedCompletionDate *time.Time      `json:"expected_completion_date,omitempty"`
	CompletionDate         *time.Time      `json:"completion_date,omitempty"`
	Notes                  string          `gorm:"type:text" json:"notes"`
	CreatedBy              uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "manufacturing_batches"
}

// NewBatch creates a pending batch
func NewBatch(number string, productID uuid.UUID, qty decimal.Decimal, start time.Time, expected *time.Time, notes string, by uuid.UUID) (*Batch, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Batch number is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product is required")
	}
	if !qty.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than zero")
	}
	if start.IsZero() {
		start = time.Now()
	}
	if expected != nil && expected.Before(start) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Expected completion cannot be before the start date")
	}
	return &Batch{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		BatchNumber:            number,
		ProductID:              productID,
		QuantityProduced:       qty,
		Status:                 StatusPending,
		StartDate:              start,
		ExpectedCompletionDate: expected,
		Notes:                  strings.TrimSpace(notes),
		CreatedBy:              by,
	}, nil
}

// BatchNumberPrefix is the B-YYYYMMDD- part shared by a day's generated numbers
func BatchNumberPrefix(day time.Time) string {
	return "B-" + day.Format("20060102") + "-"
}

// FormatBatchNumber builds B-YYYYMMDD-NNNN
func FormatBatchNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%04d", BatchNumberPrefix(day), seq)
}

// AdvanceTo moves the batch to the immediate next stage
func (b *Batch) AdvanceTo(next BatchStatus, at time.Time) error {
	if !next.IsValid() {
		return shared.Errorf(shared.CodeInvalidInput, "Unknown batch status %q", next)
	}
	if b.Status.IsTerminal() {
		return shared.Errorf(shared.CodeInvalidState, "Batch %s is already completed", b.BatchNumber)
	}
	expected, _ := b.Status.Next()
	if next != expected {
		return shared.Errorf(shared.CodeInvalidState,
			"Batch %s can only move from %s to %s", b.BatchNumber, b.Status, expected)
	}
	b.Status = next
	if next == StatusCompleted {
		b.CompletionDate = &at
	}
	b.Touch()
	return nil
}

// EnsureOpen rejects changes to a completed batch
func (b *Batch) EnsureOpen() error {
	if b.Status.IsTerminal() {
		return shared.Errorf(shared.CodeInvalidState, "Batch %s is completed and can no longer be changed", b.BatchNumber)
	}
	return nil
}

// BatchRow is a batch joined with its product for list pages
type BatchRow struct {
	Batch
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
}

// EventTypeBatchCompleted is published after a batch reaches the end of the pipeline
const EventTypeBatchCompleted = "manufacturing.batch.completed"

// BatchCompletedEvent reports the finished quantity credited to manufacturing stock
type BatchCompletedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string          `json:"batch_number"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewBatchCompletedEvent builds the event for a completed batch
func NewBatchCompletedEvent(b *Batch) *BatchCompletedEvent {
	return &BatchCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCompleted, "manufacturing_batch", b.ID),
		BatchNumber:     b.BatchNumber,
		ProductID:       b.ProductID,
		Quantity:        b.QuantityProduced,
	}
}
