package realtime_test

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/app"
	"github.com/taskhive/taskhive/internal/config"
)

type wsFrame struct {
	ID    string          `json:"id"`
	Event string          `json:"event"`
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newRealtimeServer(t *testing.T) (*app.App, *httptest.Server) {
	t.Helper()

	cfg := &config.Config{
		AppName:           "taskhive-test",
		AppEnv:            "test",
		DBDriver:          "sqlite",
		DBConnection:      filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)",
		JWTSecret:         "test-secret",
		JWTExpiry:         24 * time.Hour,
		UploadDir:         t.TempDir(),
		UploadURLPrefix:   "/uploads",
		MaxUploadSize:     5 << 20,
		MaxFilesPerUpload: 10,
		StorageDriver:     "local",
	}

	a, err := app.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	server := httptest.NewServer(a.RealtimeHandler)
	t.Cleanup(server.Close)
	return a, server
}

func wsDial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame wsFrame
	require.NoError(t, json.Unmarshal(message, &frame), "frame: %s", message)
	return frame
}

// call sends one call frame and reads until its acknowledgement arrives,
// skipping any broadcasts interleaved with it.
func call(t *testing.T, conn *websocket.Conn, id, event, token string, data any) wsFrame {
	t.Helper()

	req := map[string]any{"id": id, "event": event}
	if token != "" {
		req["token"] = token
	}
	if data != nil {
		req["data"] = data
	}
	message, err := json.Marshal(req)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, message))

	for {
		frame := readFrame(t, conn)
		if frame.Event != "" {
			continue // broadcast
		}
		require.Equal(t, id, frame.ID)
		return frame
	}
}

// waitBroadcast reads until a broadcast with the given event name arrives.
func waitBroadcast(t *testing.T, conn *websocket.Conn, event string) wsFrame {
	t.Helper()

	for {
		frame := readFrame(t, conn)
		if frame.Event == event {
			return frame
		}
	}
}

func decodeData(t *testing.T, frame wsFrame, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(frame.Data, v))
}

func TestCallRoundTrip(t *testing.T) {
	_, server := newRealtimeServer(t)
	conn := wsDial(t, server, "")

	// Register returns the session token alongside the user
	ack := call(t, conn, "1", "auth:register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.True(t, ack.OK, "error: %+v", ack.Error)

	var registered struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	decodeData(t, ack, &registered)
	assert.Equal(t, "alice", registered.User["username"])
	assert.NotEmpty(t, registered.Token)
	assert.NotContains(t, registered.User, "passwordHash")

	// The connection remembers the session: no token on later frames
	ack = call(t, conn, "2", "auth:me", "", nil)
	require.True(t, ack.OK)

	ack = call(t, conn, "3", "tasks:create", "", map[string]string{"title": "Buy milk"})
	require.True(t, ack.OK, "error: %+v", ack.Error)

	var created struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Status string `json:"status"`
	}
	decodeData(t, ack, &created)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, "pending", created.Status)

	ack = call(t, conn, "4", "tasks:getById", "", map[string]int64{"id": created.ID})
	require.True(t, ack.OK)

	ack = call(t, conn, "5", "tasks:get", "", nil)
	require.True(t, ack.OK)
	var tasks []map[string]any
	decodeData(t, ack, &tasks)
	assert.Len(t, tasks, 1)

	ack = call(t, conn, "6", "tasks:update", "", map[string]any{
		"id":     created.ID,
		"status": "completed",
	})
	require.True(t, ack.OK, "error: %+v", ack.Error)

	ack = call(t, conn, "7", "tasks:delete", "", map[string]int64{"id": created.ID})
	require.True(t, ack.OK)

	ack = call(t, conn, "8", "tasks:getById", "", map[string]int64{"id": created.ID})
	require.False(t, ack.OK)
	require.NotNil(t, ack.Error)
	assert.Equal(t, "NOT_FOUND", ack.Error.Code)
}

func TestFrameAuthRequired(t *testing.T) {
	_, server := newRealtimeServer(t)
	conn := wsDial(t, server, "")

	for i, event := range []string{"auth:me", "tasks:get", "tasks:create", "tasks:delete"} {
		ack := call(t, conn, string(rune('a'+i)), event, "", nil)
		require.False(t, ack.OK, event)
		require.NotNil(t, ack.Error, event)
		assert.Equal(t, "AUTH_REQUIRED", ack.Error.Code, event)
	}
}

func TestFrameLoginFailure(t *testing.T) {
	_, server := newRealtimeServer(t)
	conn := wsDial(t, server, "")

	ack := call(t, conn, "1", "auth:login", "", map[string]string{
		"username": "nobody",
		"password": "whatever",
	})
	require.False(t, ack.OK)
	require.NotNil(t, ack.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", ack.Error.Code)
}

func TestFrameValidation(t *testing.T) {
	_, server := newRealtimeServer(t)
	conn := wsDial(t, server, "")

	ack := call(t, conn, "1", "auth:register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.True(t, ack.OK)

	// Empty title fails the same validation the HTTP route applies
	ack = call(t, conn, "2", "tasks:create", "", map[string]string{"title": ""})
	require.False(t, ack.OK)
	require.NotNil(t, ack.Error)
	assert.Equal(t, "VALIDATION_ERROR", ack.Error.Code)

	ack = call(t, conn, "3", "nosuch:event", "", nil)
	require.False(t, ack.OK)
	require.NotNil(t, ack.Error)
	assert.Equal(t, "VALIDATION_ERROR", ack.Error.Code)
}

func TestConnectionQueryToken(t *testing.T) {
	a, server := newRealtimeServer(t)

	user, err := a.AuthService.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	token, err := a.AuthService.GenerateJWT(user)
	require.NoError(t, err)

	conn := wsDial(t, server, "?token="+token)

	ack := call(t, conn, "1", "auth:me", "", nil)
	require.True(t, ack.OK, "error: %+v", ack.Error)

	var me map[string]any
	decodeData(t, ack, &me)
	assert.Equal(t, "alice", me["username"])
}

func TestBroadcastFanout(t *testing.T) {
	_, server := newRealtimeServer(t)

	actor := wsDial(t, server, "")
	observer := wsDial(t, server, "")

	// An ack round-trip proves the observer is registered with the hub
	// before any broadcast fires.
	sync := call(t, observer, "sync", "auth:me", "", nil)
	require.False(t, sync.OK)

	ack := call(t, actor, "1", "auth:register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.True(t, ack.OK)

	ack = call(t, actor, "2", "tasks:create", "", map[string]string{"title": "Buy milk"})
	require.True(t, ack.OK)
	var created struct {
		ID int64 `json:"id"`
	}
	decodeData(t, ack, &created)

	// Every connection hears about the mutation, even unauthenticated ones
	broadcast := waitBroadcast(t, observer, "tasks:created")
	var task map[string]any
	require.NoError(t, json.Unmarshal(broadcast.Data, &task))
	assert.Equal(t, "Buy milk", task["title"])

	// The actor hears its own broadcast too
	waitBroadcast(t, actor, "tasks:created")

	ack = call(t, actor, "3", "tasks:delete", "", map[string]int64{"id": created.ID})
	require.True(t, ack.OK)

	broadcast = waitBroadcast(t, observer, "tasks:deleted")
	var deleted struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(broadcast.Data, &deleted))
	assert.Equal(t, created.ID, deleted.ID)
}
