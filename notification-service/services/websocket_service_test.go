package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinpd-backend/shared/database/models/notification"
)

func newTestManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *ClientConnection, 8),
		unregister: make(chan *ClientConnection, 8),
	}
}

// dialTestConn returns a live client-side connection against a
// throwaway server that holds its end open.
func dialTestConn(t *testing.T) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRegisterReplacesExistingConnection(t *testing.T) {
	wsm := newTestManager()
	userID := uuid.NewString()
	old := dialTestConn(t)
	replacement := dialTestConn(t)

	wsm.registerClient(&ClientConnection{UserID: userID, Connection: old})
	wsm.registerClient(&ClientConnection{UserID: userID, Connection: replacement})

	assert.Equal(t, 1, wsm.GetConnectionCount())
	assert.Error(t, old.WriteMessage(websocket.TextMessage, []byte("x")),
		"replaced connection must be closed")
}

func TestUnregisterStaleConnectionKeepsReplacement(t *testing.T) {
	wsm := newTestManager()
	userID := uuid.NewString()
	old := dialTestConn(t)
	replacement := dialTestConn(t)

	wsm.registerClient(&ClientConnection{UserID: userID, Connection: old})
	wsm.registerClient(&ClientConnection{UserID: userID, Connection: replacement})

	// The old connection's reader exits after the reconnect closed it;
	// its unregister must not evict the live replacement.
	wsm.unregisterClient(&ClientConnection{UserID: userID, Connection: old})

	assert.Equal(t, 1, wsm.GetConnectionCount())
	assert.NoError(t, wsm.SendToUser(userID, &notification.WebSocketMessage{
		Type:    "npd_verified",
		Message: "masih terhubung",
	}))
}

func TestUnregisterCurrentConnectionRemovesUser(t *testing.T) {
	wsm := newTestManager()
	userID := uuid.NewString()
	conn := dialTestConn(t)

	wsm.registerClient(&ClientConnection{UserID: userID, Connection: conn})
	wsm.unregisterClient(&ClientConnection{UserID: userID, Connection: conn})

	assert.Equal(t, 0, wsm.GetConnectionCount())
	assert.Error(t, wsm.SendToUser(userID, &notification.WebSocketMessage{
		Type:    "npd_verified",
		Message: "tidak terhubung",
	}))
}
