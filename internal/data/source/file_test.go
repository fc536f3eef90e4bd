package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, events <-chan model.SourceEvent) model.SourceEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "source closed early")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for source event")
	}
	return model.SourceEvent{}
}

func appendTo(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestFileTailReadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"type":4,"timestamp":100}`+"\n"+
			`garbage`+"\n"+
			`{"type":2,"timestamp":110}`+"\n"+
			`{"type":3,"timest`), 0644))

	tail, err := NewFileTail(path)
	require.NoError(t, err)
	defer tail.Close()

	events, err := tail.ReadExisting()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(100), events[0].Timestamp)
	assert.Equal(t, int64(110), events[1].Timestamp)
	assert.Equal(t, []byte(`{"type":3,"timest`), tail.partial)
}

func TestFileTailFollowsAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":4,"timestamp":100}`+"\n"), 0644))

	tail, err := NewFileTail(path)
	require.NoError(t, err)
	defer tail.Close()

	existing, err := tail.ReadExisting()
	require.NoError(t, err)
	require.Len(t, existing, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, tail.Start(ctx))
	assert.Error(t, tail.Start(ctx))

	appendTo(t, path, `{"type":3,"timestamp":150}`+"\n"+`{"type":3,"time`)
	ev := nextEvent(t, tail.Events())
	require.NoError(t, ev.Err)
	assert.Equal(t, int64(150), ev.Event.Timestamp)
	assert.Equal(t, "file:"+path, ev.Source)

	appendTo(t, path, `stamp":160}`+"\n"+`not json`+"\n")
	ev = nextEvent(t, tail.Events())
	require.NoError(t, ev.Err)
	assert.Equal(t, int64(160), ev.Event.Timestamp)

	ev = nextEvent(t, tail.Events())
	assert.ErrorIs(t, ev.Err, model.ErrInvalidArgument)
}

func TestFileTailCloseEndsStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	tail, err := NewFileTail(path)
	require.NoError(t, err)
	require.NoError(t, tail.Start(context.Background()))
	require.NoError(t, tail.Close())
	require.NoError(t, tail.Close())

	select {
	case _, ok := <-tail.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestFileTailCloseBeforeStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	tail, err := NewFileTail(path)
	require.NoError(t, err)
	require.NoError(t, tail.Close())

	_, ok := <-tail.Events()
	assert.False(t, ok)
	assert.Error(t, tail.Start(context.Background()))
}

func TestNewFileTailMissingFile(t *testing.T) {
	_, err := NewFileTail(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}
