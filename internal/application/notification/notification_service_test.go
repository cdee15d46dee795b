package notification

import (
	"context"
	"testing"

	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifyRoles_OnlyActiveRecipients(t *testing.T) {
	db := persistencetest.NewDB(t)
	fx := persistencetest.NewFixtures(t, db)
	repos := fx.Repos()
	ctx := context.Background()

	fx.User("owner", identity.RoleOwner)
	fx.User("admin", identity.RoleAdmin)
	fx.User("shop", identity.RoleShopkeeper)
	inactive := fx.User("owner2", identity.RoleOwner)
	require.NoError(t, inactive.ToggleActivation(""))
	require.NoError(t, repos.Users().Update(ctx, inactive))

	ns, err := NotifyRoles(ctx, repos.Users(), repos.Notifications(), Message{
		Type:  notification.TypeBatchCompleted,
		Title: "Batch completed",
		Body:  "B-1 is done",
	}, identity.RoleOwner, identity.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, ns, 2)
}

func TestNotificationService_ReadFlow(t *testing.T) {
	db := persistencetest.NewDB(t)
	fx := persistencetest.NewFixtures(t, db)
	repos := fx.Repos()
	ctx := context.Background()
	svc := NewNotificationService(repos.Notifications(), zap.NewNop())

	alice := fx.User("alice", identity.RoleShopkeeper)
	bob := fx.User("bob", identity.RoleShopkeeper)
	msg := Message{Type: notification.TypeInventoryTransfer, Title: "Stock arrived"}
	mine, err := NotifyUsers(ctx, repos.Notifications(), msg, alice.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1, "duplicate recipients collapse")
	_, err = NotifyUsers(ctx, repos.Notifications(), msg, alice.ID, bob.ID)
	require.NoError(t, err)

	aliceActor := fx.Actor(alice)
	count, err := svc.UnreadCount(ctx, aliceActor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	t.Run("other user cannot mark read", func(t *testing.T) {
		err := svc.MarkRead(ctx, fx.Actor(bob), mine[0].ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("owner marks one read", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, aliceActor, mine[0].ID))
		require.NoError(t, svc.MarkRead(ctx, aliceActor, mine[0].ID))
		count, err := svc.UnreadCount(ctx, aliceActor)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unread filter", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["unread"] = "1"
		page, err := svc.ListForUser(ctx, aliceActor, f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("mark all read", func(t *testing.T) {
		n, err := svc.MarkAllRead(ctx, aliceActor)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		count, err := svc.UnreadCount(ctx, fx.Actor(bob))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "bob is untouched")
	})
}
