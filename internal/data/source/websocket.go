package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/data/parser"
	"github.com/penwyp/go-replay-player/internal/util"
)

const closeGracePeriod = time.Second

// WebSocketSource receives events pushed by a recorder over a websocket.
// A text message holds one event, a JSON array of events, or several
// events separated by newlines.
type WebSocketSource struct {
	url    string
	conn   *websocket.Conn
	events chan model.SourceEvent
	done   chan struct{}

	closeOnce sync.Once
}

// DialWebSocket connects to url and starts reading.
func DialWebSocket(ctx context.Context, url string, header http.Header) (*WebSocketSource, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial %s failed with status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}

	ws := &WebSocketSource{
		url:    url,
		conn:   conn,
		events: make(chan model.SourceEvent, eventBuffer),
		done:   make(chan struct{}),
	}
	util.LogInfof("Connected to live recording %s", url)

	go ws.readLoop()
	return ws, nil
}

func (ws *WebSocketSource) readLoop() {
	defer close(ws.events)

	for {
		mt, msg, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ws.closed() {
				util.LogInfof("Live recording %s closed", ws.url)
				return
			}
			ws.emit(model.SourceEvent{Source: ws.url, Err: err})
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		events, stats, err := parser.Parse(bytes.NewReader(msg))
		if err != nil {
			ws.emit(model.SourceEvent{Source: ws.url, Err: err})
			continue
		}
		for _, ev := range events {
			if !ws.emit(model.SourceEvent{Source: ws.url, Event: ev}) {
				return
			}
		}
		if stats.Skipped > 0 {
			ws.emit(model.SourceEvent{
				Source: ws.url,
				Err:    fmt.Errorf("%w: %d invalid records in message", model.ErrInvalidArgument, stats.Skipped),
			})
		}
	}
}

func (ws *WebSocketSource) emit(ev model.SourceEvent) bool {
	select {
	case ws.events <- ev:
		return true
	case <-ws.done:
		return false
	}
}

func (ws *WebSocketSource) closed() bool {
	select {
	case <-ws.done:
		return true
	default:
		return false
	}
}

func (ws *WebSocketSource) Events() <-chan model.SourceEvent {
	return ws.events
}

// Close sends a close frame and drops the connection.
func (ws *WebSocketSource) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		close(ws.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		werr := ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			util.LogDebugf("Websocket close frame: %v", werr)
		}
		err = ws.conn.Close()
	})
	return err
}
