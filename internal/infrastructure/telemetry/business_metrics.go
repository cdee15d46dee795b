package telemetry

import (
	"context"
	"errors"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics counts committed business operations. It subscribes to
// the event bus, so only committed work is counted.
type BusinessMetrics struct {
	transfers         metric.Int64Counter
	transferredUnits  metric.Float64Counter
	sales             metric.Int64Counter
	salesAmount       metric.Float64Counter
	batchesCompleted  metric.Int64Counter
	unitsManufactured metric.Float64Counter
}

// NewBusinessMetrics creates the business instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewBusinessMetrics: meter cannot be nil")
	}
	var (
		bm  BusinessMetrics
		err error
	)
	if bm.transfers, err = meter.Int64Counter("gms.inventory.transfers",
		metric.WithDescription("Completed inventory transfers"), metric.WithUnit("{transfer}")); err != nil {
		return nil, err
	}
	if bm.transferredUnits, err = meter.Float64Counter("gms.inventory.transferred_quantity",
		metric.WithDescription("Quantity moved between locations"), metric.WithUnit("{unit}")); err != nil {
		return nil, err
	}
	if bm.sales, err = meter.Int64Counter("gms.sales.created",
		metric.WithDescription("Sales recorded"), metric.WithUnit("{sale}")); err != nil {
		return nil, err
	}
	if bm.salesAmount, err = meter.Float64Counter("gms.sales.net_amount",
		metric.WithDescription("Net amount invoiced")); err != nil {
		return nil, err
	}
	if bm.batchesCompleted, err = meter.Int64Counter("gms.manufacturing.batches_completed",
		metric.WithDescription("Batches that reached the end of the pipeline"), metric.WithUnit("{batch}")); err != nil {
		return nil, err
	}
	if bm.unitsManufactured, err = meter.Float64Counter("gms.manufacturing.produced_quantity",
		metric.WithDescription("Quantity credited to manufacturing stock"), metric.WithUnit("{unit}")); err != nil {
		return nil, err
	}
	return &bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		inventory.EventTypeTransferCompleted,
		sales.EventTypeSaleCreated,
		manufacturing.EventTypeBatchCompleted,
	}
}

// Handle records the event in the matching instruments
func (bm *BusinessMetrics) Handle(ctx context.Context, e shared.DomainEvent) error {
	switch ev := e.(type) {
	case *inventory.TransferCompletedEvent:
		route := metric.WithAttributes(
			attribute.String("from", string(ev.From)),
			attribute.String("to", string(ev.To)),
		)
		bm.transfers.Add(ctx, 1, route)
		bm.transferredUnits.Add(ctx, ev.Quantity.InexactFloat64(), route)
	case *sales.SaleCreatedEvent:
		bm.sales.Add(ctx, 1)
		bm.salesAmount.Add(ctx, ev.NetAmount.InexactFloat64())
	case *manufacturing.BatchCompletedEvent:
		bm.batchesCompleted.Add(ctx, 1)
		bm.unitsManufactured.Add(ctx, ev.Quantity.InexactFloat64())
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
