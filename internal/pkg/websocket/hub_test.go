package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, userID uuid.UUID) *Client {
	return &Client{hub: h, send: make(chan []byte, 4), userID: userID, logger: zerolog.Nop()}
}

func receive(t *testing.T, ch <-chan []byte) *Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubDeliversToEveryConnectionOfUser(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	userID := uuid.New()
	tab1, tab2 := newTestClient(h, userID), newTestClient(h, userID)
	other := newTestClient(h, uuid.New())
	h.register <- tab1
	h.register <- tab2
	h.register <- other

	require.Eventually(t, func() bool { return h.ConnectionCount(userID) == 2 }, time.Second, 10*time.Millisecond)
	assert.True(t, h.IsOnline(userID))

	h.PushToUser(userID, &Message{Type: MessageNotification, Payload: "hello"})

	assert.Equal(t, MessageNotification, receive(t, tab1.send).Type)
	assert.Equal(t, MessageNotification, receive(t, tab2.send).Type)
	assert.Empty(t, other.send)
}

func TestHubUnregisterAndShutdown(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	userID := uuid.New()
	c1, c2 := newTestClient(h, userID), newTestClient(h, userID)
	h.register <- c1
	h.register <- c2
	h.unregister <- c1

	require.Eventually(t, func() bool { return h.ConnectionCount(userID) == 1 }, time.Second, 10*time.Millisecond)
	_, open := <-c1.send
	assert.False(t, open)

	cancel()
	<-done
	_, open = <-c2.send
	assert.False(t, open)
	assert.False(t, h.IsOnline(userID))
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub(zerolog.Nop())
	userID := uuid.New()
	slow := &Client{hub: h, send: make(chan []byte), userID: userID, logger: zerolog.Nop()}
	h.registerClient(slow)

	h.deliverToUser(delivery{userID: userID, data: []byte(`{}`)})

	assert.Equal(t, 0, h.ConnectionCount(userID))
}

func TestPushToUserNeverBlocks(t *testing.T) {
	h := NewHub(zerolog.Nop())
	userID := uuid.New()

	for i := 0; i < cap(h.deliver)+10; i++ {
		h.PushToUser(userID, &Message{Type: MessageNotification})
	}
	assert.Len(t, h.deliver, cap(h.deliver))
}

type fakeMarker struct {
	marked   []uuid.UUID
	markAll  int
	unread   int64
	markErr  error
	countErr error
}

func (f *fakeMarker) MarkRead(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeMarker) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	f.markAll++
	return 3, nil
}

func (f *fakeMarker) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return f.unread, f.countErr
}

func nextDelivery(t *testing.T, h *Hub) (uuid.UUID, *Message) {
	t.Helper()
	select {
	case d := <-h.deliver:
		var msg Message
		require.NoError(t, json.Unmarshal(d.data, &msg))
		return d.userID, &msg
	case <-time.After(time.Second):
		t.Fatal("no delivery queued")
		return uuid.Nil, nil
	}
}

func TestMessageHandler(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	t.Run("mark read answers with unread count", func(t *testing.T) {
		h := NewHub(zerolog.Nop())
		marker := &fakeMarker{unread: 4}
		NewMessageHandler(marker, h, zerolog.Nop()).Handle(context.Background(),
			&Inbound{Type: InboundMarkRead, NotificationID: notificationID, UserID: userID})

		assert.Equal(t, []uuid.UUID{notificationID}, marker.marked)
		to, msg := nextDelivery(t, h)
		assert.Equal(t, userID, to)
		assert.Equal(t, MessageUnreadCount, msg.Type)
		assert.Equal(t, map[string]interface{}{"unread": float64(4)}, msg.Payload)
	})

	t.Run("mark all read", func(t *testing.T) {
		h := NewHub(zerolog.Nop())
		marker := &fakeMarker{}
		NewMessageHandler(marker, h, zerolog.Nop()).Handle(context.Background(),
			&Inbound{Type: InboundMarkAllRead, UserID: userID})

		assert.Equal(t, 1, marker.markAll)
		_, msg := nextDelivery(t, h)
		assert.Equal(t, MessageUnreadCount, msg.Type)
	})

	t.Run("failures are reported to the sender", func(t *testing.T) {
		h := NewHub(zerolog.Nop())
		marker := &fakeMarker{markErr: errors.New("notification not found")}
		NewMessageHandler(marker, h, zerolog.Nop()).Handle(context.Background(),
			&Inbound{Type: InboundMarkRead, NotificationID: notificationID, UserID: userID})

		_, msg := nextDelivery(t, h)
		assert.Equal(t, MessageError, msg.Type)
	})

	t.Run("unknown command", func(t *testing.T) {
		h := NewHub(zerolog.Nop())
		NewMessageHandler(&fakeMarker{}, h, zerolog.Nop()).Handle(context.Background(),
			&Inbound{Type: "subscribe", UserID: userID})

		_, msg := nextDelivery(t, h)
		assert.Equal(t, MessageError, msg.Type)
	})
}

func TestHandleConnectionStreamsPushes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	userID := uuid.New()
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}, NewHandler(h, zerolog.Nop()).HandleConnection)

	srv := httptest.NewServer(router)
	defer srv.Close()

	conn, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.IsOnline(userID) }, time.Second, 10*time.Millisecond)
	h.PushToUser(userID, &Message{Type: MessageNotification, Payload: map[string]string{"title": "Session starts soon"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageNotification, msg.Type)
}

func TestHandleConnectionRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", NewHandler(NewHub(zerolog.Nop()), zerolog.Nop()).HandleConnection)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
}
