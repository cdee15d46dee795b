package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/inventory"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	return openMockDatabase(t, mockDB, mock)
}

// newPingMonitoredDatabase is newMockDatabase with ping expectations enabled.
// The ping gorm.Open issues is already consumed when it returns.
func newPingMonitoredDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	return openMockDatabase(t, mockDB, mock)
}

func openMockDatabase(t *testing.T, mockDB *sql.DB, mock sqlmock.Sqlmock) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB, Driver: config.DriverPostgres}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newPingMonitoredDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()
		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure", func(t *testing.T) {
		db, mock, mockDB := newPingMonitoredDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(sql.ErrConnDone)
		err := db.Ping()
		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.Equal(t, config.DriverSQLite, db.Driver)
	require.NoError(t, AutoMigrate(db.DB))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_foreign_keys=on", sqliteDSN(""))
	assert.Equal(t, "gms.db?_foreign_keys=on", sqliteDSN("gms.db"))
	assert.Equal(t, "gms.db?cache=shared&_foreign_keys=on", sqliteDSN("gms.db?cache=shared"))
}

func TestGormStockRepository_Deduct_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormStockRepository(db.DB)
	productID := uuid.New()

	t.Run("conditional update succeeds", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "inventory" SET .*"quantity"=quantity - \$1.* WHERE product_id = \$3 AND location = \$4 AND quantity >= \$5`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Deduct(context.Background(), productID, inventory.LocationManufacturing, decimal.NewFromInt(5))
		assert.NoError(t, err)
	})

	t.Run("no row matched means insufficient stock", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "inventory" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Deduct(context.Background(), productID, inventory.LocationTransit, decimal.NewFromInt(5))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "transit")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTransactionScope_RollbackOnError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	ctx := context.Background()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "inventory" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "inventory" SET`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	scope := NewGormTransactionScope(db.DB)
	err := scope.Execute(ctx, func(repos transaction.Repositories) error {
		if err := repos.Stock().Deduct(ctx, productID, inventory.LocationManufacturing, decimal.NewFromInt(1)); err != nil {
			return err
		}
		return repos.Stock().Deduct(ctx, productID, inventory.LocationTransit, decimal.NewFromInt(1))
	})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
