package manufacturing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence/persistencetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type testEnv struct {
	svc      *BatchService
	fx       *persistencetest.Fixtures
	pub      *recordingPublisher
	incharge identity.Actor
	product  *catalog.Product
}

func newTestEnv(t *testing.T) *testEnv {
	db := persistencetest.NewDB(t)
	pub := &recordingPublisher{}
	fx := persistencetest.NewFixtures(t, db)
	svc := NewBatchService(persistence.NewGormRepositories(db), persistence.NewGormTransactionScope(db), pub, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) }
	return &testEnv{
		svc:      svc,
		fx:       fx,
		pub:      pub,
		incharge: fx.Actor(fx.User("incharge", identity.RoleIncharge)),
		product:  fx.Product("TSH-1"),
	}
}

func (e *testEnv) batch(t *testing.T, qty int64) *manufacturing.Batch {
	b, err := e.svc.Create(context.Background(), e.incharge, CreateBatchInput{ProductID: e.product.ID, Quantity: decimal.NewFromInt(qty)})
	require.NoError(t, err)
	return b
}

func TestBatchService_CreateNumbersSequentially(t *testing.T) {
	env := newTestEnv(t)

	first := env.batch(t, 10)
	second := env.batch(t, 20)
	assert.Equal(t, "B-20240506-0001", first.BatchNumber)
	assert.Equal(t, "B-20240506-0002", second.BatchNumber)
	assert.Equal(t, manufacturing.StatusPending, first.Status)

	_, err := env.svc.Create(context.Background(), env.incharge, CreateBatchInput{
		BatchNumber: "b-20240506-0001", ProductID: env.product.ID, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	shop := env.fx.Actor(env.fx.User("shop", identity.RoleShopkeeper))
	_, err = env.svc.Create(context.Background(), shop, CreateBatchInput{ProductID: env.product.ID, Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestBatchService_CreateNumbersAfterManualEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, number := range []string{"B-20240506-0002", "B-20240506-RUSH"} {
		_, err := env.svc.Create(ctx, env.incharge, CreateBatchInput{
			BatchNumber: number, ProductID: env.product.ID, Quantity: decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}

	next := env.batch(t, 5)
	assert.Equal(t, "B-20240506-0003", next.BatchNumber)
}

func TestBatchService_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.fx.User("owner", identity.RoleOwner)
	b := env.batch(t, 50)

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		_, err := env.svc.UpdateStatus(ctx, env.incharge, b.ID, manufacturing.StatusStitching)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("walks the pipeline and credits stock on completion", func(t *testing.T) {
		for _, next := range manufacturing.Pipeline[1:] {
			_, err := env.svc.UpdateStatus(ctx, env.incharge, b.ID, next)
			require.NoError(t, err, "moving to %s", next)
		}
		assert.Equal(t, "50", env.fx.Quantity(env.product.ID, inventory.LocationManufacturing).String())

		stored, err := env.fx.Repos().Batches().FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, manufacturing.StatusCompleted, stored.Status)
		assert.NotNil(t, stored.CompletionDate)

		unread, err := env.fx.Repos().Notifications().CountUnread(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), unread)
		assert.Contains(t, env.pub.types(), manufacturing.EventTypeBatchCompleted)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		_, err := env.svc.UpdateStatus(ctx, env.incharge, b.ID, manufacturing.StatusCompleted)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		_, err = env.svc.RecordCost(ctx, env.incharge, b.ID, RecordCostInput{CostType: manufacturing.CostLabor, Amount: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestBatchService_AllocateMaterial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.batch(t, 10)
	m := env.fx.Material("FAB", decimal.Zero)

	p, err := catalog.NewPurchase(m.ID, "Mill", decimal.NewFromInt(20), decimal.NewFromInt(8), time.Now(), "", env.incharge.UserID, "")
	require.NoError(t, err)
	require.NoError(t, env.fx.Repos().Purchases().Create(ctx, p))
	require.NoError(t, env.fx.Repos().Materials().AddStock(ctx, m.ID, p.Quantity))

	t.Run("priced at average cost and deducted", func(t *testing.T) {
		a, err := env.svc.AllocateMaterial(ctx, env.incharge, b.ID, AllocateMaterialInput{MaterialID: m.ID, Quantity: decimal.NewFromInt(15)})
		require.NoError(t, err)
		assert.Equal(t, "120.00", a.TotalCost.StringFixed(2))
		assert.Equal(t, manufacturing.StatusPending, a.Stage)

		stored, err := env.fx.Repos().Materials().FindByID(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, "5", stored.StockQuantity.String())
	})

	t.Run("insufficient stock rolls back", func(t *testing.T) {
		_, err := env.svc.AllocateMaterial(ctx, env.incharge, b.ID, AllocateMaterialInput{MaterialID: m.ID, Quantity: decimal.NewFromInt(6)})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		rows, err := env.fx.Repos().BatchMaterials().FindByBatch(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}

func TestBatchService_Costing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.batch(t, 4)
	m := env.fx.Material("THR", decimal.NewFromInt(10))

	// no purchases yet, so the allocation is priced at zero
	_, err := env.svc.AllocateMaterial(ctx, env.incharge, b.ID, AllocateMaterialInput{MaterialID: m.ID, Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err)

	_, err = env.svc.RecordCost(ctx, env.incharge, b.ID, RecordCostInput{CostType: manufacturing.CostLabor, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = env.svc.UpdateStatus(ctx, env.incharge, b.ID, manufacturing.StatusCutting)
	require.NoError(t, err)
	_, err = env.svc.RecordCost(ctx, env.incharge, b.ID, RecordCostInput{CostType: manufacturing.CostTransport, Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)

	c, err := env.svc.Costing(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", c.LaborCost.StringFixed(2))
	assert.Equal(t, "30.00", c.OverheadCost.StringFixed(2))
	assert.Equal(t, "130.00", c.TotalCost.StringFixed(2))
	assert.Equal(t, "32.50", c.CostPerUnit.StringFixed(2))
	require.Len(t, c.Stages, len(manufacturing.Pipeline))
	assert.Equal(t, "100.00", c.Stages[0].Total.StringFixed(2))
	assert.Equal(t, "30.00", c.Stages[1].Total.StringFixed(2))
	assert.True(t, c.Stages[1].Reached)
	assert.False(t, c.Stages[2].Reached)

	detail, err := env.svc.Detail(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Costs, 2)
	assert.Len(t, detail.Materials, 1)
	assert.Equal(t, manufacturing.StatusStitching, detail.Next)
}
