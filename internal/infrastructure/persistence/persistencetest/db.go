// Package persistencetest provides an in-memory sqlite database and fixtures
// for service and handler tests.
package persistencetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
}

// NewDB opens a migrated in-memory sqlite database that is closed with the test
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, persistence.AutoMigrate(db))
	return db
}

// Fixtures creates rows directly through the repositories
type Fixtures struct {
	t     testing.TB
	repos *persistence.GormRepositories
}

// NewFixtures creates fixtures on db
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, repos: persistence.NewGormRepositories(db)}
}

// User inserts an active user with the role and password "password123"
func (f *Fixtures) User(username string, role identity.Role) *identity.User {
	f.t.Helper()
	u, err := identity.NewUser(username, "Test "+username, username+"@example.com", "password123", role)
	require.NoError(f.t, err)
	require.NoError(f.t, f.repos.Users().Create(context.Background(), u))
	return u
}

// Actor returns an actor for the user
func (f *Fixtures) Actor(u *identity.User) identity.Actor {
	return identity.Actor{UserID: u.ID, Username: u.Username, FullName: u.FullName, Role: u.Role, IPAddress: "127.0.0.1", UserAgent: "test"}
}

// Product inserts an active product
func (f *Fixtures) Product(sku string) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(sku, "Product "+sku, "shirts", "", decimal.NewFromInt(100))
	require.NoError(f.t, err)
	require.NoError(f.t, f.repos.Products().Create(context.Background(), p))
	return p
}

// Material inserts a raw material with stock on hand
func (f *Fixtures) Material(code string, stock decimal.Decimal) *catalog.RawMaterial {
	f.t.Helper()
	m, err := catalog.NewRawMaterial(code, "Material "+code, catalog.UnitMeter, decimal.NewFromInt(5))
	require.NoError(f.t, err)
	require.NoError(f.t, f.repos.Materials().Create(context.Background(), m))
	if stock.IsPositive() {
		require.NoError(f.t, f.repos.Materials().AddStock(context.Background(), m.ID, stock))
	}
	return m
}

// Stock credits qty of the product at the location
func (f *Fixtures) Stock(productID uuid.UUID, loc inventory.Location, qty decimal.Decimal) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Stock().Credit(context.Background(), productID, loc, qty))
}

// Quantity reads the on-hand quantity
func (f *Fixtures) Quantity(productID uuid.UUID, loc inventory.Location) decimal.Decimal {
	f.t.Helper()
	q, err := f.repos.Stock().Quantity(context.Background(), productID, loc)
	require.NoError(f.t, err)
	return q
}

// Repos exposes the fixture repositories
func (f *Fixtures) Repos() *persistence.GormRepositories {
	return f.repos
}
