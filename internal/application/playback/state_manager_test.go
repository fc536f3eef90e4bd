package playback

import (
	"testing"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/dispatch"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestStateManagerMessages(t *testing.T) {
	bus := dispatch.NewDispatcher()
	sm := NewStateManager()
	sm.Subscribe(bus)
	assert.True(t, sm.TakeDirty())
	assert.False(t, sm.TakeDirty())

	_ = bus.Dispatch(dispatch.SkipStart, dispatch.SkipPayload{Speed: 8, From: 2 * time.Second, To: 20 * time.Second})
	assert.Equal(t, "Skipping inactivity 00:02 → 00:20 at 8x", sm.Message())
	assert.Equal(t, 1, sm.Skips())
	assert.True(t, sm.TakeDirty())

	_ = bus.Dispatch(dispatch.TagAdded, dispatch.TagPayload{Tag: model.Tag{Label: "bug", Time: 65 * time.Second}})
	assert.Equal(t, `Tagged "bug" at 01:05`, sm.Message())
	assert.Len(t, sm.Tags(), 1)

	_ = bus.Dispatch(dispatch.Resize, dispatch.ResizePayload{Width: 800, Height: 600})
	assert.Equal(t, "Viewport 800x600", sm.Message())
}

func TestStateManagerFinished(t *testing.T) {
	bus := dispatch.NewDispatcher()
	sm := NewStateManager()
	sm.Subscribe(bus)

	_ = bus.Dispatch(dispatch.Finish, dispatch.FinishPayload{})
	assert.True(t, sm.Finished())
	assert.Contains(t, sm.Message(), "Finished")

	_ = bus.Dispatch(dispatch.StateChange, dispatch.StatePayload{Status: model.StatusFinished})
	assert.True(t, sm.Finished())

	_ = bus.Dispatch(dispatch.StateChange, dispatch.StatePayload{Status: model.StatusPlaying})
	assert.False(t, sm.Finished())
}

func TestStateManagerUnsubscribe(t *testing.T) {
	bus := dispatch.NewDispatcher()
	sm := NewStateManager()
	for _, unsubscribe := range sm.Subscribe(bus) {
		unsubscribe()
	}
	sm.TakeDirty()

	_ = bus.Dispatch(dispatch.SkipStart, dispatch.SkipPayload{Speed: 1})
	assert.Empty(t, sm.Message())
	assert.False(t, sm.TakeDirty())
}
