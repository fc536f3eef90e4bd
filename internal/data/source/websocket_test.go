package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorderServer pushes each message to the first client, then waits for the
// client to hang up.
func recorderServer(t *testing.T, messages ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
}

func TestWebSocketSourceReceivesEvents(t *testing.T) {
	srv := recorderServer(t,
		`{"type":4,"timestamp":100}`,
		`[{"type":2,"timestamp":101},{"type":3,"timestamp":102}]`,
		`{"type":3,"timestamp":103}`+"\n"+`{"type":3,"timestamp":104}`,
	)

	ws, err := DialWebSocket(context.Background(), wsURL(srv), nil)
	require.NoError(t, err)
	defer ws.Close()

	var got []int64
	for i := 0; i < 5; i++ {
		ev := nextEvent(t, ws.Events())
		require.NoError(t, ev.Err)
		assert.Equal(t, wsURL(srv), ev.Source)
		got = append(got, ev.Event.Timestamp)
	}
	assert.Equal(t, []int64{100, 101, 102, 103, 104}, got)
}

func TestWebSocketSourceReportsInvalidRecords(t *testing.T) {
	srv := recorderServer(t,
		`{"type":3}`,
		`{"type":3,"timestamp":7}`,
	)

	ws, err := DialWebSocket(context.Background(), wsURL(srv), nil)
	require.NoError(t, err)
	defer ws.Close()

	ev := nextEvent(t, ws.Events())
	assert.ErrorIs(t, ev.Err, model.ErrInvalidArgument)

	ev = nextEvent(t, ws.Events())
	require.NoError(t, ev.Err)
	assert.Equal(t, int64(7), ev.Event.Timestamp)
}

func TestWebSocketSourceServerClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":4,"timestamp":1}`))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
	}))
	defer srv.Close()

	ws, err := DialWebSocket(context.Background(), wsURL(srv), nil)
	require.NoError(t, err)
	defer ws.Close()

	ev := nextEvent(t, ws.Events())
	require.NoError(t, ev.Err)

	_, ok := <-ws.Events()
	assert.False(t, ok)
}

func TestDialWebSocketFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := DialWebSocket(context.Background(), wsURL(srv), nil)
	assert.Error(t, err)
}

func TestSourcesImplementSource(t *testing.T) {
	var _ Source = (*FileTail)(nil)
	var _ Source = (*WebSocketSource)(nil)
}
