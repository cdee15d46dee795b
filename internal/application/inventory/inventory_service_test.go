package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence/persistencetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type testEnv struct {
	db  *gorm.DB
	svc *InventoryService
	fx  *persistencetest.Fixtures
	pub *capturePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	db := persistencetest.NewDB(t)
	pub := &capturePublisher{}
	return &testEnv{
		db:  db,
		svc: NewInventoryService(persistence.NewGormRepositories(db), persistence.NewGormTransactionScope(db), pub, zap.NewNop()),
		fx:  persistencetest.NewFixtures(t, db),
		pub: pub,
	}
}

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestInventoryService_Transfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incharge := env.fx.Actor(env.fx.User("incharge", identity.RoleIncharge))
	shopUser := env.fx.User("shop", identity.RoleShopkeeper)
	shop := env.fx.Actor(shopUser)
	owner := env.fx.User("owner", identity.RoleOwner)
	p := env.fx.Product("TSH-1")
	env.fx.Stock(p.ID, inventory.LocationManufacturing, qty(10))

	t.Run("manufacturing to transit", func(t *testing.T) {
		tr, err := env.svc.Transfer(ctx, incharge, TransferInput{ProductID: p.ID, From: inventory.LocationManufacturing, To: inventory.LocationTransit, Quantity: qty(4)})
		require.NoError(t, err)
		assert.Equal(t, inventory.TransferCompleted, tr.Status)
		assert.Equal(t, "6", env.fx.Quantity(p.ID, inventory.LocationManufacturing).String())
		assert.Equal(t, "4", env.fx.Quantity(p.ID, inventory.LocationTransit).String())

		for _, u := range []*identity.User{shopUser, owner} {
			n, err := env.fx.Repos().Notifications().CountUnread(ctx, u.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n, "recipient %s", u.Username)
		}
		require.NotEmpty(t, env.pub.events)
		assert.Equal(t, inventory.EventTypeTransferCompleted, env.pub.events[0].EventType())
		assert.Equal(t, notification.EventTypeCreated, env.pub.events[len(env.pub.events)-1].EventType())
	})

	t.Run("incharge cannot move transit to wholesale", func(t *testing.T) {
		_, err := env.svc.Transfer(ctx, incharge, TransferInput{ProductID: p.ID, From: inventory.LocationTransit, To: inventory.LocationWholesale, Quantity: qty(1)})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("invalid route", func(t *testing.T) {
		_, err := env.svc.Transfer(ctx, incharge, TransferInput{ProductID: p.ID, From: inventory.LocationWholesale, To: inventory.LocationManufacturing, Quantity: qty(1)})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := env.svc.Transfer(ctx, shop, TransferInput{ProductID: p.ID, From: inventory.LocationTransit, To: inventory.LocationWholesale, Quantity: qty(0)})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("insufficient source changes nothing", func(t *testing.T) {
		_, err := env.svc.Transfer(ctx, shop, TransferInput{ProductID: p.ID, From: inventory.LocationTransit, To: inventory.LocationWholesale, Quantity: qty(5)})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "Only 4")
		assert.Equal(t, "4", env.fx.Quantity(p.ID, inventory.LocationTransit).String())
		assert.True(t, env.fx.Quantity(p.ID, inventory.LocationWholesale).IsZero())

		page, err := env.svc.ListTransfers(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("stock overview", func(t *testing.T) {
		overview, err := env.svc.ListStock(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), overview.Rows.Total)
		assert.NotEmpty(t, overview.Totals)
	})
}

// failingScope runs fn inside a real transaction and then fails, so every
// statement fn issued must be rolled back.
type failingScope struct {
	inner transaction.Scope
}

var errInjected = errors.New("injected failure")

func (s failingScope) Execute(ctx context.Context, fn func(transaction.Repositories) error) error {
	return s.inner.Execute(ctx, func(tx transaction.Repositories) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errInjected
	})
}

func TestInventoryService_TransferIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	incharge := env.fx.Actor(env.fx.User("incharge", identity.RoleIncharge))
	env.fx.User("shop", identity.RoleShopkeeper)
	p := env.fx.Product("TSH-2")
	env.fx.Stock(p.ID, inventory.LocationManufacturing, qty(10))

	svc := NewInventoryService(persistence.NewGormRepositories(env.db),
		failingScope{inner: persistence.NewGormTransactionScope(env.db)}, env.pub, zap.NewNop())

	_, err := svc.Transfer(ctx, incharge, TransferInput{ProductID: p.ID, From: inventory.LocationManufacturing, To: inventory.LocationTransit, Quantity: qty(3)})
	require.ErrorIs(t, err, errInjected)

	assert.Equal(t, "10", env.fx.Quantity(p.ID, inventory.LocationManufacturing).String())
	assert.True(t, env.fx.Quantity(p.ID, inventory.LocationTransit).IsZero())

	transfers, total, err := env.fx.Repos().Transfers().FindAll(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, transfers)
	assert.Zero(t, total)

	f := shared.DefaultFilter()
	f.Filters["action"] = activity.ActionTransfer
	_, logs, err := env.fx.Repos().ActivityLogs().FindAll(ctx, f)
	require.NoError(t, err)
	assert.Zero(t, logs)
	assert.Empty(t, env.pub.events)
}
