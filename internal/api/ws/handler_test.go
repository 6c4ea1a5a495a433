package ws

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers/session"
	"github.com/GriffinCanCode/SystemManager/backend/internal/shared/types"
)

func setup(t *testing.T) (*session.Manager, *httptest.Server) {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(zaptest.NewLogger(t), nil)
	t.Cleanup(manager.Shutdown)

	r := gin.New()
	r.GET("/sessions/:id/stream", NewHandler(manager, zaptest.NewLogger(t)).HandleSession)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return manager, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + sessionID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func start(t *testing.T, m *session.Manager, argv ...string) *session.Info {
	if _, err := exec.LookPath(argv[0]); err != nil {
		t.Skipf("%s not available", argv[0])
	}
	info, err := m.Create(session.Spec{Argv: argv, Label: "test"})
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	return info
}

func TestUnknownSession(t *testing.T) {
	_, srv := setup(t)

	resp, err := http.Get(srv.URL + "/sessions/sess_missing/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStreamEcho(t *testing.T) {
	m, srv := setup(t)
	info := start(t, m, "cat")

	conn := dial(t, srv, info.ID)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var attached map[string]interface{}
	require.NoError(t, conn.ReadJSON(&attached))
	assert.Equal(t, "attached", attached["type"])

	require.NoError(t, conn.WriteJSON(types.WSMessage{Type: "input", Data: "hello-ws\n"}))

	var out bytes.Buffer
	for !bytes.Contains(out.Bytes(), []byte("hello-ws")) {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		if kind == websocket.BinaryMessage {
			out.Write(data)
		}
	}
}

func TestStreamExit(t *testing.T) {
	m, srv := setup(t)
	info := start(t, m, "sh", "-c", "sleep 0.3; exit 3")

	conn := dial(t, srv, info.ID)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	for {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		if kind != websocket.TextMessage || !bytes.Contains(data, []byte(`"exit"`)) {
			continue
		}
		assert.Contains(t, string(data), `"exit_code":3`)
		return
	}
}

func TestStreamEndsWhenClientIgnoresClose(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := session.NewManager(zaptest.NewLogger(t), nil)
	t.Cleanup(m.Shutdown)

	handled := make(chan struct{})
	h := NewHandler(m, zaptest.NewLogger(t))
	r := gin.New()
	r.GET("/sessions/:id/stream", func(c *gin.Context) {
		defer close(handled)
		h.HandleSession(c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	info := start(t, m, "sh", "-c", "sleep 0.3; exit 0")
	conn := dial(t, srv, info.ID)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// read up to the exit frame, then stop reading so the close is never answered
	for {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		if kind == websocket.TextMessage && bytes.Contains(data, []byte(`"exit"`)) {
			break
		}
	}

	select {
	case <-handled:
	case <-time.After(exitWait + closeWait + 3*time.Second):
		t.Fatal("handler still running after the session ended")
	}
}
