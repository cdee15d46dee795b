//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	appfinance "github.com/iwaqasmaqbool/gms-sub002/internal/application/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/manufacturing"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway postgres container and applies the embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("gms_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_ConcurrentDeductNeverOversells(t *testing.T) {
	db := newPostgresDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()
	p := createProduct(t, repos, "SKU-PG")
	require.NoError(t, repos.Stock().Credit(ctx, p.ID, inventory.LocationManufacturing, dec("10")))

	scope := NewGormTransactionScope(db)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(ctx, func(tx transaction.Repositories) error {
				if err := tx.Stock().Deduct(ctx, p.ID, inventory.LocationManufacturing, dec("3")); err != nil {
					return err
				}
				return tx.Stock().Credit(ctx, p.ID, inventory.LocationTransit, dec("3"))
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, shared.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	left, err := repos.Stock().Quantity(ctx, p.ID, inventory.LocationManufacturing)
	require.NoError(t, err)
	moved, err := repos.Stock().Quantity(ctx, p.ID, inventory.LocationTransit)
	require.NoError(t, err)
	assert.Equal(t, "1", left.String())
	assert.Equal(t, "9", moved.String())
}

func TestPostgres_ConcurrentBatchCompletionCreditsOnce(t *testing.T) {
	db := newPostgresDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()
	user := createUser(t, repos, "incharge", identity.RoleIncharge)
	p := createProduct(t, repos, "SKU-PGB")

	b, err := manufacturing.NewBatch("B-PG-0001", p.ID, dec("40"), time.Now(), nil, "", user.ID)
	require.NoError(t, err)
	b.Status = manufacturing.StatusPackaging
	require.NoError(t, repos.Batches().Create(ctx, b))

	scope := NewGormTransactionScope(db)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(ctx, func(tx transaction.Repositories) error {
				batch, err := tx.Batches().FindByID(ctx, b.ID)
				if err != nil {
					return err
				}
				if err := batch.AdvanceTo(manufacturing.StatusCompleted, time.Now()); err != nil {
					return err
				}
				if err := tx.Batches().Update(ctx, batch); err != nil {
					return err
				}
				return tx.Stock().Credit(ctx, batch.ProductID, inventory.LocationManufacturing, batch.QuantityProduced)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, shared.ErrInvalidState)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	qty, err := repos.Stock().Quantity(ctx, p.ID, inventory.LocationManufacturing)
	require.NoError(t, err)
	assert.Equal(t, "40", qty.String())
}

func TestPostgres_ConcurrentFundTransfersRespectBalance(t *testing.T) {
	db := newPostgresDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()
	owner := createUser(t, repos, "owner", identity.RoleOwner)
	incharge := createUser(t, repos, "incharge", identity.RoleIncharge)
	shop := createUser(t, repos, "shop", identity.RoleShopkeeper)

	svc := appfinance.NewFinanceService(repos, NewGormTransactionScope(db), nil, zap.NewNop())
	actorOf := func(u *identity.User) identity.Actor {
		return identity.Actor{UserID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role}
	}
	_, err := svc.TransferFunds(ctx, actorOf(owner), appfinance.TransferFundsInput{ToUserID: incharge.ID, Amount: dec("100")})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TransferFunds(ctx, actorOf(incharge), appfinance.TransferFundsInput{ToUserID: shop.ID, Amount: dec("60")})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	sent, err := repos.Funds().SumSent(ctx, incharge.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.00", sent.StringFixed(2))
}

func TestPostgres_MonthlyAndCheckConstraints(t *testing.T) {
	db := newPostgresDB(t)
	repos := NewGormRepositories(db)
	ctx := context.Background()
	user := createUser(t, repos, "shop", identity.RoleShopkeeper)
	p := createProduct(t, repos, "SKU-PGM")

	s, err := sales.NewSale("INV-PG-1", "Customer", "", []sales.ItemInput{
		{ProductID: p.ID, Quantity: dec("2"), UnitPrice: dec("50")},
	}, dec("0"), user.ID, "")
	require.NoError(t, err)
	s.SaleDate = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Sales().Create(ctx, s))

	rows, err := repos.Monthly().MonthlySales(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03", rows[0].Month)

	err = db.Exec("UPDATE inventory SET quantity = -1").Error
	assert.NoError(t, err, "no rows yet, nothing to violate")
	require.NoError(t, repos.Stock().Credit(ctx, p.ID, inventory.LocationWholesale, dec("1")))
	err = db.Exec("UPDATE inventory SET quantity = -1").Error
	assert.Error(t, err, "quantity check constraint")
}
