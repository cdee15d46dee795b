package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/notification"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dial(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Connections(userID) > 0 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_PushesNotificationToRecipientOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	alice, bob := uuid.New(), uuid.New()
	aliceConn := dial(t, hub, alice)
	dial(t, hub, bob)

	n, err := notification.New(alice, notification.TypeInventoryTransfer, "Stock in transit", "10 shirts", "/inventory/transfers", nil)
	require.NoError(t, err)
	require.NoError(t, hub.Handle(context.Background(), notification.NewCreatedEvent(n)))

	_ = aliceConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := aliceConn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, 1, msg.UnreadDelta)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, "Stock in transit", msg.Notification.Title)
	assert.Equal(t, alice, msg.Notification.UserID)

	assert.Equal(t, 0, hub.SendToUser(uuid.New(), Message{Type: "ping"}))
}

func TestHub_IgnoresOtherEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	base := shared.NewBaseDomainEvent("sale.created", "sale", uuid.New())
	assert.NoError(t, hub.Handle(context.Background(), &base))
	assert.Equal(t, []string{notification.EventTypeCreated}, hub.EventTypes())
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	user := uuid.New()
	conn := dial(t, hub, user)
	assert.Equal(t, 1, hub.Connections(user))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections(user) == 0 }, 2*time.Second, 10*time.Millisecond)
}
