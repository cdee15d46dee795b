package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appfinance "github.com/iwaqasmaqbool/gms-sub002/internal/application/finance"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// FinanceHandler serves fund transfers and the financial summary
type FinanceHandler struct {
	BaseHandler
	finance *appfinance.FinanceService
	users   *appidentity.UserService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(base BaseHandler, svc *appfinance.FinanceService, users *appidentity.UserService) *FinanceHandler {
	return &FinanceHandler{BaseHandler: base, finance: svc, users: users}
}

type fundsView struct {
	Balance finance.Balance
	Users   []appidentity.UserDTO
	Funds   shared.Paginated[finance.FundRow]
}

type summaryView struct {
	Summary finance.FinancialSummary
}

type fundTransferForm struct {
	FromUserID  string `form:"from_user_id" binding:"omitempty,uuid"`
	ToUserID    string `form:"to_user_id" binding:"required,uuid"`
	Amount      string `form:"amount" binding:"required,positive"`
	Description string `form:"description" binding:"omitempty,max=500"`
}

// Funds renders the actor's balance and the transfer history
func (h *FinanceHandler) Funds(c *gin.Context) {
	ctx := c.Request.Context()
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	var view fundsView
	if view.Balance, err = h.finance.Balance(ctx, actor(c).UserID); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Users, err = h.users.ListActive(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	if view.Funds, err = h.finance.ListFunds(ctx, filter); err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "funds", "Funds", "funds", view)
}

// Transfer records cash handed between users. A blank sender means the actor.
func (h *FinanceHandler) Transfer(c *gin.Context) {
	var form fundTransferForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/funds")
		return
	}
	input := appfinance.TransferFundsInput{
		ToUserID:    uuid.MustParse(form.ToUserID),
		Amount:      decimalOr(form.Amount),
		Description: form.Description,
	}
	if form.FromUserID != "" {
		from := uuid.MustParse(form.FromUserID)
		input.FromUserID = &from
	}
	t, err := h.finance.TransferFunds(c.Request.Context(), actor(c), input)
	if err != nil {
		h.fail(c, err, "/funds")
		return
	}
	h.succeed(c, "/funds", "Transferred "+t.Amount.StringFixed(2))
}

// Summary renders sales, expenses and profit over the selected range
func (h *FinanceHandler) Summary(c *gin.Context) {
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	summary, err := h.finance.Summary(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "finance_summary", "Financial Summary", "finance_summary", summaryView{Summary: summary})
}
