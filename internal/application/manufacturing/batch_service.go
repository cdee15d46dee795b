// Package manufacturing runs production batches through the stage pipeline
// and rolls up their costs.
package manufacturing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	appnotification "github.com/iwaqasmaqbool/gms-sub002/internal/application/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"go.uber.org/zap"
)

var productionRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleIncharge}

// BatchService handles batches, their costs and material allocations
type BatchService struct {
	repos     transaction.Repositories
	scope     transaction.Scope
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBatchService creates a new BatchService
func NewBatchService(repos transaction.Repositories, scope transaction.Scope, publisher shared.EventPublisher, logger *zap.Logger) *BatchService {
	if publisher == nil {
		publisher = shared.NopEventPublisher{}
	}
	return &BatchService{repos: repos, scope: scope, publisher: publisher, logger: logger, now: time.Now}
}

// Create starts a pending batch, numbering it B-YYYYMMDD-NNNN when no number is given
func (s *BatchService) Create(ctx context.Context, actor identity.Actor, input CreateBatchInput) (*manufacturing.Batch, error) {
	if err := actor.Require(productionRoles...); err != nil {
		return nil, err
	}

	var batch *manufacturing.Batch
	create := func(tx transaction.Repositories) error {
		product, err := tx.Products().FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		number := input.BatchNumber
		if number == "" {
			today := s.now()
			seq, err := tx.Batches().NextSequence(ctx, today)
			if err != nil {
				return err
			}
			number = manufacturing.FormatBatchNumber(today, seq)
		}

		batch, err = manufacturing.NewBatch(number, product.ID, input.Quantity, input.StartDate, input.ExpectedCompletionDate, input.Notes, actor.UserID)
		if err != nil {
			return err
		}
		exists, err := tx.Batches().ExistsByNumber(ctx, batch.BatchNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.Errorf(shared.CodeAlreadyExists, "Batch %s already exists", batch.BatchNumber)
		}
		if err := tx.Batches().Create(ctx, batch); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionCreate, activity.ModuleManufacturing, &batch.ID,
			"Started batch %s: %s x %s", batch.BatchNumber, batch.QuantityProduced.String(), product.Name)
	}

	attempts := 1
	if input.BatchNumber == "" {
		attempts = transaction.NumberingAttempts
	}
	if err := transaction.RetryOnConflict(ctx, s.scope, attempts, create); err != nil {
		return nil, err
	}
	return batch, nil
}

// List returns a page of batches
func (s *BatchService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[manufacturing.BatchRow], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Batches().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[manufacturing.BatchRow]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Detail loads a batch with its costs, materials and cost rollup
func (s *BatchService) Detail(ctx context.Context, id uuid.UUID) (*BatchDetail, error) {
	row, err := s.repos.Batches().FindRowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	costs, err := s.repos.Costs().FindByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	materials, err := s.repos.BatchMaterials().FindByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	costing, err := s.costing(ctx, s.repos, row)
	if err != nil {
		return nil, err
	}
	next, _ := row.Status.Next()
	return &BatchDetail{Batch: *row, Costs: costs, Materials: materials, Costing: costing, Next: next}, nil
}

// Costing returns the cost rollup of a batch
func (s *BatchService) Costing(ctx context.Context, id uuid.UUID) (*manufacturing.BatchCosting, error) {
	row, err := s.repos.Batches().FindRowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.costing(ctx, s.repos, row)
}

func (s *BatchService) costing(ctx context.Context, repos transaction.Repositories, row *manufacturing.BatchRow) (*manufacturing.BatchCosting, error) {
	materials, err := repos.BatchMaterials().SumByStage(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	costs, err := repos.Costs().SumByStage(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	types, err := repos.Costs().SumByType(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return manufacturing.BuildCosting(row, materials, costs, types), nil
}

// UpdateStatus advances a batch by exactly one stage. Completing a batch
// credits its quantity to manufacturing stock and notifies owners and admins.
func (s *BatchService) UpdateStatus(ctx context.Context, actor identity.Actor, id uuid.UUID, next manufacturing.BatchStatus) (*manufacturing.Batch, error) {
	if err := actor.Require(productionRoles...); err != nil {
		return nil, err
	}

	var (
		batch    *manufacturing.Batch
		previous manufacturing.BatchStatus
		notified []*notification.Notification
	)
	err := s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		var err error
		batch, err = tx.Batches().FindByID(ctx, id)
		if err != nil {
			return err
		}
		previous = batch.Status
		if err := batch.AdvanceTo(next, s.now()); err != nil {
			return err
		}
		if err := tx.Batches().Update(ctx, batch); err != nil {
			return err
		}

		if batch.Status == manufacturing.StatusCompleted {
			if err := tx.Stock().Credit(ctx, batch.ProductID, inventory.LocationManufacturing, batch.QuantityProduced); err != nil {
				return err
			}
			notified, err = appnotification.NotifyRoles(ctx, tx.Users(), tx.Notifications(), appnotification.Message{
				Type:      notification.TypeBatchCompleted,
				Title:     "Batch " + batch.BatchNumber + " completed",
				Body:      batch.QuantityProduced.String() + " units added to manufacturing stock",
				Link:      "/batches/" + batch.ID.String(),
				RelatedID: &batch.ID,
			}, identity.RoleOwner, identity.RoleAdmin)
			if err != nil {
				return err
			}
		}

		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionStatusChange, activity.ModuleManufacturing, &batch.ID,
			"Batch %s moved from %s to %s", batch.BatchNumber, previous, batch.Status)
	})
	if err != nil {
		return nil, err
	}

	if batch.Status == manufacturing.StatusCompleted {
		events := append([]shared.DomainEvent{manufacturing.NewBatchCompletedEvent(batch)}, notification.Events(notified)...)
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish batch completion", zap.String("batch_id", batch.ID.String()), zap.Error(err))
		}
	}
	return batch, nil
}

// RecordCost charges a labor or overhead cost to the batch's current stage
func (s *BatchService) RecordCost(ctx context.Context, actor identity.Actor, batchID uuid.UUID, input RecordCostInput) (*manufacturing.ManufacturingCost, error) {
	if err := actor.Require(productionRoles...); err != nil {
		return nil, err
	}

	var cost *manufacturing.ManufacturingCost
	err := s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		batch, err := tx.Batches().FindByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		cost, err = manufacturing.NewManufacturingCost(batch, input.CostType, input.Amount, input.Description, input.CostDate, actor.UserID)
		if err != nil {
			return err
		}
		if err := tx.Costs().Create(ctx, cost); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionRecordCost, activity.ModuleManufacturing, &batch.ID,
			"Recorded %s cost of %s on batch %s (%s)", cost.CostType, cost.Amount.StringFixed(2), batch.BatchNumber, cost.Stage)
	})
	if err != nil {
		return nil, err
	}
	return cost, nil
}

// AllocateMaterial consumes raw material stock in a batch at the material's average purchase cost
func (s *BatchService) AllocateMaterial(ctx context.Context, actor identity.Actor, batchID uuid.UUID, input AllocateMaterialInput) (*manufacturing.BatchMaterial, error) {
	if err := actor.Require(productionRoles...); err != nil {
		return nil, err
	}

	var allocation *manufacturing.BatchMaterial
	err := s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		batch, err := tx.Batches().FindByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		material, err := tx.Materials().FindByID(ctx, input.MaterialID)
		if err != nil {
			return err
		}
		unitCost, err := tx.Purchases().AverageUnitCost(ctx, material.ID)
		if err != nil {
			return err
		}
		allocation, err = manufacturing.NewBatchMaterial(batch, material.ID, input.Quantity, unitCost, actor.UserID)
		if err != nil {
			return err
		}
		if err := tx.Materials().DeductStock(ctx, material.ID, allocation.QuantityUsed); err != nil {
			if errors.Is(err, shared.ErrInsufficientStock) {
				return shared.Errorf(shared.CodeInsufficientStock, "Only %s %s of %s in stock",
					material.StockQuantity.String(), material.Unit, material.Name)
			}
			return err
		}
		if err := tx.BatchMaterials().Create(ctx, allocation); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionAllocate, activity.ModuleManufacturing, &batch.ID,
			"Allocated %s %s of %s to batch %s", allocation.QuantityUsed.String(), material.Unit, material.Name, batch.BatchNumber)
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}

// CountByStatus returns how many batches sit in each stage
func (s *BatchService) CountByStatus(ctx context.Context) (map[manufacturing.BatchStatus]int64, error) {
	return s.repos.Batches().CountByStatus(ctx)
}
