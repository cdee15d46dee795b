package finance

import (
	"context"
	"testing"
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence/persistencetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type testEnv struct {
	svc      *FinanceService
	fx       *persistencetest.Fixtures
	owner    *identity.User
	incharge *identity.User
	shop     *identity.User
}

func newTestEnv(t *testing.T) *testEnv {
	db := persistencetest.NewDB(t)
	fx := persistencetest.NewFixtures(t, db)
	return &testEnv{
		svc:      NewFinanceService(persistence.NewGormRepositories(db), persistence.NewGormTransactionScope(db), nil, zap.NewNop()),
		fx:       fx,
		owner:    fx.User("owner", identity.RoleOwner),
		incharge: fx.User("incharge", identity.RoleIncharge),
		shop:     fx.User("shop", identity.RoleShopkeeper),
	}
}

func TestFinanceService_TransferFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.fx.Actor(env.owner)
	incharge := env.fx.Actor(env.incharge)

	t.Run("owner is a capital source", func(t *testing.T) {
		_, err := env.svc.TransferFunds(ctx, owner, TransferFundsInput{ToUserID: env.incharge.ID, Amount: d("1000")})
		require.NoError(t, err)

		n, err := env.fx.Repos().Notifications().CountUnread(ctx, env.incharge.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("spending reduces the balance", func(t *testing.T) {
		m := env.fx.Material("CLOTH", decimal.Zero)
		p, err := catalog.NewPurchase(m.ID, "Mill", d("10"), d("30"), time.Now(), "", env.incharge.ID, "")
		require.NoError(t, err)
		require.NoError(t, env.fx.Repos().Purchases().Create(ctx, p))

		b, err := env.svc.Balance(ctx, env.incharge.ID)
		require.NoError(t, err)
		assert.Equal(t, "700.00", b.Available.StringFixed(2))
		assert.False(t, b.CapitalSource)
	})

	t.Run("incharge cannot overspend", func(t *testing.T) {
		_, err := env.svc.TransferFunds(ctx, incharge, TransferFundsInput{ToUserID: env.shop.ID, Amount: d("700.01")})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

		_, err = env.svc.TransferFunds(ctx, incharge, TransferFundsInput{ToUserID: env.shop.ID, Amount: d("700")})
		require.NoError(t, err)
	})

	t.Run("incharge cannot send from someone else", func(t *testing.T) {
		from := env.owner.ID
		_, err := env.svc.TransferFunds(ctx, incharge, TransferFundsInput{FromUserID: &from, ToUserID: env.shop.ID, Amount: d("1")})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("same user and non-positive amounts", func(t *testing.T) {
		_, err := env.svc.TransferFunds(ctx, owner, TransferFundsInput{ToUserID: env.owner.ID, Amount: d("1")})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		_, err = env.svc.TransferFunds(ctx, owner, TransferFundsInput{ToUserID: env.shop.ID, Amount: d("0")})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("shopkeeper cannot transfer", func(t *testing.T) {
		_, err := env.svc.TransferFunds(ctx, env.fx.Actor(env.shop), TransferFundsInput{ToUserID: env.owner.ID, Amount: d("1")})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("user filter matches either side", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["user_id"] = env.incharge.ID.String()
		page, err := env.svc.ListFunds(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})
}

func TestFinanceService_SummaryTotalsMatchParts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	repos := env.fx.Repos()
	product := env.fx.Product("SUM-1")

	march := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{march, april} {
		s, err := sales.NewSale(sales.FormatInvoiceNumber(at, int64(i+1)), "Retail", "", []sales.ItemInput{
			{ProductID: product.ID, Quantity: d("4"), UnitPrice: d("100")},
		}, d("0"), env.shop.ID, "")
		require.NoError(t, err)
		s.SaleDate = at
		require.NoError(t, s.ApplyPayment(d("150")))
		require.NoError(t, repos.Sales().Create(ctx, s))

		pay, err := sales.NewPayment(s.ID, d("150"), sales.MethodCash, "", env.shop.ID, "")
		require.NoError(t, err)
		pay.PaymentDate = at
		require.NoError(t, repos.Payments().Create(ctx, pay))
	}
	m := env.fx.Material("SUM-M", decimal.Zero)
	p, err := catalog.NewPurchase(m.ID, "Mill", d("5"), d("20"), march, "", env.incharge.ID, "")
	require.NoError(t, err)
	require.NoError(t, repos.Purchases().Create(ctx, p))

	summary, err := env.svc.Summary(ctx, env.fx.Actor(env.owner), shared.DefaultFilter())
	require.NoError(t, err)

	assert.Equal(t, "800.00", summary.TotalSales.StringFixed(2))
	assert.Equal(t, "300.00", summary.TotalReceived.StringFixed(2))
	assert.Equal(t, "500.00", summary.Receivables.StringFixed(2))
	assert.Equal(t, "100.00", summary.TotalPurchases.StringFixed(2))
	assert.True(t, summary.TotalExpenses.Equal(summary.TotalPurchases.Add(summary.TotalManufacturingCosts)))
	assert.True(t, summary.GrossProfit.Equal(summary.TotalSales.Sub(summary.TotalExpenses)))
	assert.True(t, summary.NetCashFlow.Equal(summary.TotalReceived.Sub(summary.TotalExpenses)))

	require.Len(t, summary.Monthly, 2)
	assert.Equal(t, "2024-03", summary.Monthly[0].Month)
	monthlySales := decimal.Zero
	for _, row := range summary.Monthly {
		monthlySales = monthlySales.Add(row.Sales)
	}
	assert.True(t, monthlySales.Equal(summary.TotalSales))

	t.Run("date range narrows every part", func(t *testing.T) {
		from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
		f := shared.DefaultFilter()
		f.DateFrom, f.DateTo = &from, &to
		april, err := env.svc.Summary(ctx, env.fx.Actor(env.owner), f)
		require.NoError(t, err)
		assert.Equal(t, "400.00", april.TotalSales.StringFixed(2))
		assert.True(t, april.TotalPurchases.IsZero())
		assert.Len(t, april.Monthly, 1)
	})

	t.Run("incharge cannot view", func(t *testing.T) {
		_, err := env.svc.Summary(ctx, env.fx.Actor(env.incharge), shared.DefaultFilter())
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}
