package identity

import (
	"context"
	"testing"
	"time"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/auth"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	users *UserService
	auth  *AuthService
	fx    *persistencetest.Fixtures
	admin identity.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	db := persistencetest.NewDB(t)
	repos := persistence.NewGormRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	jwt := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", AccessTokenExpiration: time.Hour, Issuer: "gms-test"})
	fx := persistencetest.NewFixtures(t, db)
	admin := fx.User("admin", identity.RoleAdmin)
	return &testEnv{
		users: NewUserService(repos, scope, zap.NewNop()),
		auth:  NewAuthService(repos, scope, jwt, auth.NewInMemorySessionRevoker(), zap.NewNop()),
		fx:    fx,
		admin: fx.Actor(admin),
	}
}

func (e *testEnv) activityCount(t *testing.T, action string) int64 {
	f := shared.DefaultFilter()
	f.Filters["action"] = action
	_, total, err := e.fx.Repos().ActivityLogs().FindAll(context.Background(), f)
	require.NoError(t, err)
	return total
}

func validInput(username string) CreateUserInput {
	return CreateUserInput{
		Username: username,
		FullName: "Shop Keeper",
		Email:    username + "@example.com",
		Password: "s3cret-pass",
		Role:     identity.RoleShopkeeper,
	}
}

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("creates user and logs activity", func(t *testing.T) {
		dto, err := env.users.Create(ctx, env.admin, validInput("shop1"))
		require.NoError(t, err)
		assert.Equal(t, "shop1", dto.Username)
		assert.True(t, dto.IsActive)
		assert.Equal(t, int64(1), env.activityCount(t, activity.ActionCreate))
	})

	t.Run("duplicate username", func(t *testing.T) {
		in := validInput("shop1")
		in.Email = "other@example.com"
		_, err := env.users.Create(ctx, env.admin, in)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		in := validInput("shop2")
		in.Email = "SHOP1@example.com"
		_, err := env.users.Create(ctx, env.admin, in)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("only admins create users", func(t *testing.T) {
		owner := env.fx.Actor(env.fx.User("owner", identity.RoleOwner))
		_, err := env.users.Create(ctx, owner, validInput("shop3"))
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("short password", func(t *testing.T) {
		in := validInput("shop4")
		in.Password = "short"
		_, err := env.users.Create(ctx, env.admin, in)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestUserService_UpdateAndToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.users.Create(ctx, env.admin, validInput("shop1"))
	require.NoError(t, err)

	t.Run("update keeps password when blank", func(t *testing.T) {
		dto, err := env.users.Update(ctx, env.admin, created.ID, UpdateUserInput{
			FullName: "Renamed", Email: "shop1@example.com", Phone: "0300", Role: identity.RoleIncharge,
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", dto.FullName)
		assert.Equal(t, identity.RoleIncharge, dto.Role)

		_, err = env.auth.Login(ctx, LoginInput{Username: "shop1", Password: "s3cret-pass"})
		assert.NoError(t, err)
	})

	t.Run("admin cannot change own role", func(t *testing.T) {
		_, err := env.users.Update(ctx, env.admin, env.admin.UserID, UpdateUserInput{
			FullName: "Admin", Email: "admin@example.com", Role: identity.RoleOwner,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("toggle deactivates then activates", func(t *testing.T) {
		dto, err := env.users.ToggleActivation(ctx, env.admin, created.ID)
		require.NoError(t, err)
		assert.False(t, dto.IsActive)
		assert.Equal(t, int64(1), env.activityCount(t, activity.ActionDeactivate))

		dto, err = env.users.ToggleActivation(ctx, env.admin, created.ID)
		require.NoError(t, err)
		assert.True(t, dto.IsActive)
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		_, err := env.users.ToggleActivation(ctx, env.admin, env.admin.UserID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		got, err := env.users.GetByID(ctx, env.admin.UserID)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
	})
}

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"shop1", "shop2", "shop3"} {
		_, err := env.users.Create(ctx, env.admin, validInput(name))
		require.NoError(t, err)
	}

	f := shared.DefaultFilter()
	f.PageSize = 2
	f.Filters["role"] = string(identity.RoleShopkeeper)
	page, err := env.users.List(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNext())

	active, err := env.users.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 4)
}

func TestUserService_EnsureBootstrapAdmin(t *testing.T) {
	db := persistencetest.NewDB(t)
	repos := persistence.NewGormRepositories(db)
	svc := NewUserService(repos, persistence.NewGormTransactionScope(db), zap.NewNop())
	ctx := context.Background()

	created, err := svc.EnsureBootstrapAdmin(ctx, "admin", "admin@localhost.local", "")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureBootstrapAdmin(ctx, "admin", "admin@localhost.local", "")
	require.NoError(t, err)
	assert.False(t, created, "second start finds the admin")

	count, err := repos.Users().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
