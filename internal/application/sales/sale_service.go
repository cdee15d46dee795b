// Package sales records wholesale sales and the payments against them.
package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

var sellerRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleShopkeeper}

// SaleService handles sales and payments
type SaleService struct {
	repos     transaction.Repositories
	scope     transaction.Scope
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(repos transaction.Repositories, scope transaction.Scope, publisher shared.EventPublisher, logger *zap.Logger) *SaleService {
	if publisher == nil {
		publisher = shared.NopEventPublisher{}
	}
	return &SaleService{repos: repos, scope: scope, publisher: publisher, logger: logger, now: time.Now}
}

// Create records a sale, deducting every line from wholesale stock. Any line
// short on stock fails the whole sale.
func (s *SaleService) Create(ctx context.Context, actor identity.Actor, input CreateSaleInput) (*sales.Sale, error) {
	if err := actor.Require(sellerRoles...); err != nil {
		return nil, err
	}

	today := s.now()
	sale, err := sales.NewSale("", input.CustomerName, input.CustomerPhone, input.Items, input.Discount, actor.UserID, input.Notes)
	if err != nil {
		return nil, err
	}
	if !input.SaleDate.IsZero() {
		sale.SaleDate = input.SaleDate
	}

	var payment *sales.Payment
	if input.InitialPayment.IsPositive() {
		payment, err = sales.NewPayment(sale.ID, input.InitialPayment, input.PaymentMethod, "", actor.UserID, "Initial payment")
		if err != nil {
			return nil, err
		}
		if err := sale.ApplyPayment(payment.Amount); err != nil {
			return nil, err
		}
	}

	err = transaction.RetryOnConflict(ctx, s.scope, transaction.NumberingAttempts, func(tx transaction.Repositories) error {
		seq, err := tx.Sales().NextSequence(ctx, today)
		if err != nil {
			return err
		}
		sale.InvoiceNumber = sales.FormatInvoiceNumber(today, seq)

		for _, item := range sale.Items {
			if err := tx.Stock().Deduct(ctx, item.ProductID, inventory.LocationWholesale, item.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return s.shortage(ctx, tx, item)
				}
				return err
			}
		}
		if err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}
		if payment != nil {
			if err := tx.Payments().Create(ctx, payment); err != nil {
				return err
			}
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionSale, activity.ModuleSales, &sale.ID,
			"Sale %s to %s for %s (%s)", sale.InvoiceNumber, sale.CustomerName, sale.NetAmount.StringFixed(2), sale.PaymentStatus)
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, sales.NewSaleCreatedEvent(sale)); err != nil {
		s.logger.Warn("Failed to publish sale event", zap.String("sale_id", sale.ID.String()), zap.Error(err))
	}
	s.logger.Info("Sale recorded",
		zap.String("invoice", sale.InvoiceNumber),
		zap.String("net", sale.NetAmount.StringFixed(2)),
		zap.String("status", string(sale.PaymentStatus)),
	)
	return sale, nil
}

func (s *SaleService) shortage(ctx context.Context, tx transaction.Repositories, item sales.SaleItem) error {
	name := item.ProductID.String()
	if p, err := tx.Products().FindByID(ctx, item.ProductID); err == nil {
		name = p.Name
	}
	onHand, err := tx.Stock().Quantity(ctx, item.ProductID, inventory.LocationWholesale)
	if err != nil {
		return err
	}
	return shared.Errorf(shared.CodeInsufficientStock, "Only %s of %s available at wholesale", onHand.String(), name)
}

// RecordPayment applies a payment to a sale
func (s *SaleService) RecordPayment(ctx context.Context, actor identity.Actor, saleID uuid.UUID, input RecordPaymentInput) (*sales.Payment, error) {
	if err := actor.Require(sellerRoles...); err != nil {
		return nil, err
	}
	payment, err := sales.NewPayment(saleID, input.Amount, input.Method, input.Reference, actor.UserID, input.Notes)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		sale, err := tx.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := sale.ApplyPayment(payment.Amount); err != nil {
			return err
		}
		if err := tx.Payments().Create(ctx, payment); err != nil {
			return err
		}
		if err := tx.Sales().Update(ctx, sale); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionPayment, activity.ModuleSales, &sale.ID,
			"Payment of %s (%s) on %s, now %s", payment.Amount.StringFixed(2), payment.PaymentMethod, sale.InvoiceNumber, sale.PaymentStatus)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// List returns a page of sales
func (s *SaleService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[sales.SaleRow], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Sales().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[sales.SaleRow]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Get returns a sale with its items and payments
func (s *SaleService) Get(ctx context.Context, id uuid.UUID) (*SaleDetail, error) {
	sale, err := s.repos.Sales().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.Sales().FindItems(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments().FindBySale(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SaleDetail{Sale: *sale, Items: items, Payments: payments}, nil
}
