// Package inventory moves finished goods between locations and reports stock levels.
package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	appnotification "github.com/iwaqasmaqbool/gms-sub002/internal/application/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferInput contains input for moving stock
type TransferInput struct {
	ProductID uuid.UUID
	From      inventory.Location
	To        inventory.Location
	Quantity  decimal.Decimal
	Notes     string
}

// StockOverview is the stock page: one row per product and location plus location totals
type StockOverview struct {
	Rows   shared.Paginated[inventory.StockRow] `json:"rows"`
	Totals []inventory.LocationTotal            `json:"totals"`
}

// InventoryService handles stock levels and transfers
type InventoryService struct {
	repos     transaction.Repositories
	scope     transaction.Scope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(repos transaction.Repositories, scope transaction.Scope, publisher shared.EventPublisher, logger *zap.Logger) *InventoryService {
	if publisher == nil {
		publisher = shared.NopEventPublisher{}
	}
	return &InventoryService{repos: repos, scope: scope, publisher: publisher, logger: logger}
}

// ListStock returns stock levels for the filter and the totals per location
func (s *InventoryService) ListStock(ctx context.Context, filter shared.Filter) (*StockOverview, error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Stock().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	totals, err := s.repos.Stock().TotalsByLocation(ctx)
	if err != nil {
		return nil, err
	}
	return &StockOverview{
		Rows:   shared.NewPaginated(items, total, filter.Page, filter.PageSize),
		Totals: totals,
	}, nil
}

// Transfer moves stock along manufacturing -> transit -> wholesale.
//
// The source is deducted only when enough is on hand, the destination is
// credited, and the transfer row, recipient notifications and activity entry
// are written in the same transaction. Events are published after commit.
func (s *InventoryService) Transfer(ctx context.Context, actor identity.Actor, input TransferInput) (*inventory.Transfer, error) {
	if err := inventory.ValidateRoute(input.From, input.To); err != nil {
		return nil, err
	}
	if !actor.HasAnyRole(inventory.RolesForRoute(input.From, input.To)...) {
		return nil, shared.Errorf(shared.CodeForbidden, "Your role cannot move stock from %s to %s", input.From, input.To)
	}
	transfer, err := inventory.NewTransfer(input.ProductID, input.From, input.To, input.Quantity, actor.UserID, input.Notes)
	if err != nil {
		return nil, err
	}

	var (
		productName string
		notified    []*notification.Notification
	)
	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		product, err := tx.Products().FindByID(ctx, transfer.ProductID)
		if err != nil {
			return err
		}
		productName = product.Name

		if err := tx.Stock().Deduct(ctx, product.ID, transfer.FromLocation, transfer.Quantity); err != nil {
			if errors.Is(err, shared.ErrInsufficientStock) {
				onHand, qerr := tx.Stock().Quantity(ctx, product.ID, transfer.FromLocation)
				if qerr != nil {
					return qerr
				}
				return shared.Errorf(shared.CodeInsufficientStock, "Only %s of %s available at %s",
					onHand.String(), product.Name, transfer.FromLocation)
			}
			return err
		}
		if err := tx.Stock().Credit(ctx, product.ID, transfer.ToLocation, transfer.Quantity); err != nil {
			return err
		}
		if err := tx.Transfers().Create(ctx, transfer); err != nil {
			return err
		}

		notified, err = appnotification.NotifyRoles(ctx, tx.Users(), tx.Notifications(), appnotification.Message{
			Type:      notification.TypeInventoryTransfer,
			Title:     "Stock moved to " + string(transfer.ToLocation),
			Body:      transfer.Quantity.String() + " x " + product.Name + " moved from " + string(transfer.FromLocation) + " by " + actor.Username,
			Link:      "/inventory/transfers",
			RelatedID: &transfer.ID,
		}, inventory.RecipientRoles(transfer.ToLocation)...)
		if err != nil {
			return err
		}

		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionTransfer, activity.ModuleInventory, &transfer.ID,
			"Transferred %s x %s from %s to %s", transfer.Quantity.String(), product.Name, transfer.FromLocation, transfer.ToLocation)
	})
	if err != nil {
		return nil, err
	}

	events := append([]shared.DomainEvent{inventory.NewTransferCompletedEvent(transfer, productName)}, notification.Events(notified)...)
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish transfer events", zap.String("transfer_id", transfer.ID.String()), zap.Error(err))
	}

	s.logger.Info("Stock transferred",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("from", string(transfer.FromLocation)),
		zap.String("to", string(transfer.ToLocation)),
		zap.String("quantity", transfer.Quantity.String()),
	)
	return transfer, nil
}

// ListTransfers returns a page of transfers
func (s *InventoryService) ListTransfers(ctx context.Context, filter shared.Filter) (shared.Paginated[inventory.TransferRow], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Transfers().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[inventory.TransferRow]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// TotalsByLocation returns the quantity held at each location
func (s *InventoryService) TotalsByLocation(ctx context.Context) ([]inventory.LocationTotal, error) {
	return s.repos.Stock().TotalsByLocation(ctx)
}
