// Package dashboard assembles the summary cards of the landing page.
package dashboard

import (
	"context"
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecentNotifications is how many notifications the dashboard lists
const RecentNotifications = 5

// Summarizer computes the financial summary
type Summarizer interface {
	Summary(ctx context.Context, actor identity.Actor, filter shared.Filter) (finance.FinancialSummary, error)
}

// BatchCount is the number of batches at one pipeline stage
type BatchCount struct {
	Status manufacturing.BatchStatus
	Count  int64
}

// Overview is everything the dashboard renders
type Overview struct {
	Stock             []inventory.LocationTotal
	Batches           []BatchCount
	OpenBatches       int64
	LowStockMaterials int64
	SalesToday        decimal.Decimal
	Notifications     []notification.Notification
	UnreadCount       int64

	// Finance is only set for roles that may read the financial summary
	Finance *finance.FinancialSummary
}

// DashboardService builds the dashboard overview
type DashboardService struct {
	repos   transaction.Repositories
	summary Summarizer
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repos transaction.Repositories, summary Summarizer, logger *zap.Logger) *DashboardService {
	return &DashboardService{repos: repos, summary: summary, logger: logger, now: time.Now}
}

// Overview runs the dashboard queries for the actor
func (s *DashboardService) Overview(ctx context.Context, actor identity.Actor) (*Overview, error) {
	out := &Overview{}

	totals, err := s.repos.Stock().TotalsByLocation(ctx)
	if err != nil {
		return nil, err
	}
	out.Stock = fillLocations(totals)

	counts, err := s.repos.Batches().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, status := range manufacturing.Pipeline {
		n := counts[status]
		out.Batches = append(out.Batches, BatchCount{Status: status, Count: n})
		if status != manufacturing.StatusCompleted {
			out.OpenBatches += n
		}
	}

	low := shared.DefaultFilter()
	low.PageSize = 1
	low.Filters["low_stock"] = "1"
	if _, out.LowStockMaterials, err = s.repos.Materials().FindAll(ctx, low); err != nil {
		return nil, err
	}

	today := s.now()
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	rng := shared.DefaultFilter()
	rng.DateFrom, rng.DateTo = &day, &day
	if out.SalesToday, err = s.repos.Sales().SumNet(ctx, rng); err != nil {
		return nil, err
	}

	if actor.HasAnyRole(identity.RoleAdmin, identity.RoleOwner) {
		sum, err := s.summary.Summary(ctx, actor, shared.DefaultFilter())
		if err != nil {
			return nil, err
		}
		out.Finance = &sum
	}

	recent := shared.DefaultFilter()
	recent.PageSize = RecentNotifications
	if out.Notifications, _, err = s.repos.Notifications().FindForUser(ctx, actor.UserID, recent); err != nil {
		return nil, err
	}
	if out.UnreadCount, err = s.repos.Notifications().CountUnread(ctx, actor.UserID); err != nil {
		return nil, err
	}
	return out, nil
}

// fillLocations returns one total per location in flow order, zero when empty
func fillLocations(totals []inventory.LocationTotal) []inventory.LocationTotal {
	byLocation := make(map[inventory.Location]decimal.Decimal, len(totals))
	for _, t := range totals {
		byLocation[t.Location] = t.Quantity
	}
	out := make([]inventory.LocationTotal, 0, len(inventory.AllLocations))
	for _, loc := range inventory.AllLocations {
		q, ok := byLocation[loc]
		if !ok {
			q = decimal.Zero
		}
		out = append(out, inventory.LocationTotal{Location: loc, Quantity: q})
	}
	return out
}
