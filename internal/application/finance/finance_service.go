// Package finance moves cash between users and summarises the books.
package finance

import (
	"context"

	"github.com/google/uuid"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	appnotification "github.com/iwaqasmaqbool/gms-sub002/internal/application/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	fundRoles    = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleIncharge}
	summaryRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner}
)

// TransferFundsInput contains input for a fund transfer. A nil FromUserID sends from the actor.
type TransferFundsInput struct {
	FromUserID  *uuid.UUID
	ToUserID    uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// FinanceService handles fund transfers, balances and the financial summary
type FinanceService struct {
	repos     transaction.Repositories
	scope     transaction.Scope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewFinanceService creates a new FinanceService
func NewFinanceService(repos transaction.Repositories, scope transaction.Scope, publisher shared.EventPublisher, logger *zap.Logger) *FinanceService {
	if publisher == nil {
		publisher = shared.NopEventPublisher{}
	}
	return &FinanceService{repos: repos, scope: scope, publisher: publisher, logger: logger}
}

// TransferFunds records cash handed from one user to another. Admins and
// owners are capital sources; anyone else can only send what they hold.
func (s *FinanceService) TransferFunds(ctx context.Context, actor identity.Actor, input TransferFundsInput) (*finance.FundTransfer, error) {
	if err := actor.Require(fundRoles...); err != nil {
		return nil, err
	}
	from := actor.UserID
	if input.FromUserID != nil && *input.FromUserID != uuid.Nil {
		from = *input.FromUserID
	}
	if from != actor.UserID && !actor.Role.IsCapitalSource() {
		return nil, shared.NewDomainError(shared.CodeForbidden, "You can only send funds from your own balance")
	}
	fund, err := finance.NewFundTransfer(from, input.ToUserID, input.Amount, input.Description, actor.UserID)
	if err != nil {
		return nil, err
	}

	var notified []*notification.Notification
	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		// the sender row lock serializes transfers out of the same balance
		sender, err := tx.Users().FindByIDForUpdate(ctx, fund.FromUserID)
		if err != nil {
			return err
		}
		receiver, err := tx.Users().FindByID(ctx, fund.ToUserID)
		if err != nil {
			return err
		}
		if !receiver.IsActive {
			return shared.Errorf(shared.CodeInvalidState, "%s is inactive and cannot receive funds", receiver.FullName)
		}

		if !sender.Role.IsCapitalSource() {
			balance, err := balanceOf(ctx, tx, sender)
			if err != nil {
				return err
			}
			if !balance.Covers(fund.Amount) {
				return shared.Errorf(shared.CodeInsufficientBalance, "%s has only %s available",
					sender.FullName, balance.Available.StringFixed(2))
			}
		}

		if err := tx.Funds().Create(ctx, fund); err != nil {
			return err
		}
		notified, err = appnotification.NotifyUsers(ctx, tx.Notifications(), appnotification.Message{
			Type:      notification.TypeFundTransfer,
			Title:     "Funds received",
			Body:      fund.Amount.StringFixed(2) + " received from " + sender.FullName,
			Link:      "/funds",
			RelatedID: &fund.ID,
		}, receiver.ID)
		if err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionFundTransfer, activity.ModuleFinance, &fund.ID,
			"Transferred %s from %s to %s", fund.Amount.StringFixed(2), sender.Username, receiver.Username)
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, notification.Events(notified)...); err != nil {
		s.logger.Warn("Failed to publish fund notifications", zap.String("fund_id", fund.ID.String()), zap.Error(err))
	}
	return fund, nil
}

// Balance returns the cash position of a user
func (s *FinanceService) Balance(ctx context.Context, userID uuid.UUID) (finance.Balance, error) {
	u, err := s.repos.Users().FindByID(ctx, userID)
	if err != nil {
		return finance.Balance{}, err
	}
	return balanceOf(ctx, s.repos, u)
}

func balanceOf(ctx context.Context, repos transaction.Repositories, u *identity.User) (finance.Balance, error) {
	received, err := repos.Funds().SumReceived(ctx, u.ID)
	if err != nil {
		return finance.Balance{}, err
	}
	sent, err := repos.Funds().SumSent(ctx, u.ID)
	if err != nil {
		return finance.Balance{}, err
	}
	byUser := shared.DefaultFilter()
	byUser.Filters["user_id"] = u.ID.String()
	purchases, err := repos.Purchases().SumTotal(ctx, byUser)
	if err != nil {
		return finance.Balance{}, err
	}
	costs, err := repos.Costs().SumTotal(ctx, byUser)
	if err != nil {
		return finance.Balance{}, err
	}
	b := finance.NewBalance(u.ID, received, sent, purchases, costs)
	b.CapitalSource = u.Role.IsCapitalSource()
	return b, nil
}

// ListFunds returns a page of fund transfers
func (s *FinanceService) ListFunds(ctx context.Context, filter shared.Filter) (shared.Paginated[finance.FundRow], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Funds().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[finance.FundRow]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Summary computes the financial summary over the filter's date range. Each
// part is its own aggregate query; derived totals are computed from the parts.
func (s *FinanceService) Summary(ctx context.Context, actor identity.Actor, filter shared.Filter) (finance.FinancialSummary, error) {
	if err := actor.Require(summaryRoles...); err != nil {
		return finance.FinancialSummary{}, err
	}

	// only the date range applies to the summary
	rng := shared.DefaultFilter()
	rng.DateFrom, rng.DateTo = filter.DateFrom, filter.DateTo

	var (
		parts finance.SummaryParts
		err   error
	)
	if parts.TotalSales, err = s.repos.Sales().SumNet(ctx, rng); err != nil {
		return finance.FinancialSummary{}, err
	}
	if parts.TotalReceived, err = s.repos.Payments().SumAmount(ctx, rng); err != nil {
		return finance.FinancialSummary{}, err
	}
	if parts.Receivables, err = s.repos.Sales().SumOutstanding(ctx, rng); err != nil {
		return finance.FinancialSummary{}, err
	}
	if parts.TotalPurchases, err = s.repos.Purchases().SumTotal(ctx, rng); err != nil {
		return finance.FinancialSummary{}, err
	}
	if parts.TotalManufacturingCosts, err = s.repos.Costs().SumTotal(ctx, rng); err != nil {
		return finance.FinancialSummary{}, err
	}
	if parts.FundsTransferred, err = s.repos.Funds().SumTotal(ctx, rng); err != nil {
		return finance.FinancialSummary{}, err
	}

	monthlySales, err := s.repos.Monthly().MonthlySales(ctx, rng)
	if err != nil {
		return finance.FinancialSummary{}, err
	}
	monthlyPurchases, err := s.repos.Monthly().MonthlyPurchases(ctx, rng)
	if err != nil {
		return finance.FinancialSummary{}, err
	}
	monthlyCosts, err := s.repos.Monthly().MonthlyManufacturingCosts(ctx, rng)
	if err != nil {
		return finance.FinancialSummary{}, err
	}

	return finance.NewFinancialSummary(rng.DateFrom, rng.DateTo, parts,
		finance.MergeMonthly(monthlySales, monthlyPurchases, monthlyCosts)), nil
}
