package playback

import (
	"fmt"
	"sync"

	"github.com/penwyp/go-replay-player/internal/core/dispatch"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/util"
)

// StateManager keeps what the screen shows besides the player state itself:
// the last status message, tags and whether a redraw is due.
type StateManager struct {
	mu sync.RWMutex

	message  string
	tags     []model.Tag
	skips    int
	finished bool
	dirty    bool
}

func NewStateManager() *StateManager {
	return &StateManager{dirty: true}
}

// Subscribe registers the state manager on the player's notifications.
func (sm *StateManager) Subscribe(s dispatch.Subscriber) []dispatch.UnsubscribeFunc {
	return []dispatch.UnsubscribeFunc{
		dispatch.Listen(s, dispatch.SkipStart, func(p dispatch.SkipPayload) {
			sm.update(func() {
				sm.skips++
				sm.message = fmt.Sprintf("Skipping inactivity %s → %s at %s",
					util.FormatOffset(p.From), util.FormatOffset(p.To), util.FormatSpeed(p.Speed))
			})
		}),
		dispatch.Listen(s, dispatch.Finish, func(dispatch.FinishPayload) {
			sm.update(func() {
				sm.finished = true
				sm.message = "Finished. Press space to replay."
			})
		}),
		dispatch.Listen(s, dispatch.StateChange, func(p dispatch.StatePayload) {
			sm.update(func() {
				if p.Status != model.StatusFinished {
					sm.finished = false
				}
			})
		}),
		dispatch.Listen(s, dispatch.TagAdded, func(p dispatch.TagPayload) {
			sm.update(func() {
				sm.tags = append(sm.tags, p.Tag)
				sm.message = fmt.Sprintf("Tagged %q at %s", p.Tag.Label, util.FormatOffset(p.Tag.Time))
			})
		}),
		dispatch.Listen(s, dispatch.Resize, func(p dispatch.ResizePayload) {
			sm.update(func() {
				sm.message = fmt.Sprintf("Viewport %dx%d", p.Width, p.Height)
			})
		}),
		dispatch.Listen(s, dispatch.UIControls, func(dispatch.ControlsPayload) {
			sm.update(func() {})
		}),
		dispatch.Listen(s, dispatch.UIProgress, func(dispatch.ProgressPayload) {
			sm.update(func() {})
		}),
	}
}

func (sm *StateManager) update(fn func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	fn()
	sm.dirty = true
}

// SetMessage shows a status line until the next message.
func (sm *StateManager) SetMessage(msg string) {
	sm.update(func() { sm.message = msg })
}

func (sm *StateManager) Message() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.message
}

// Tags returns a copy of the tags added so far.
func (sm *StateManager) Tags() []model.Tag {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	tags := make([]model.Tag, len(sm.tags))
	copy(tags, sm.tags)
	return tags
}

func (sm *StateManager) Skips() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.skips
}

func (sm *StateManager) Finished() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.finished
}

// MarkDirty requests a redraw.
func (sm *StateManager) MarkDirty() {
	sm.update(func() {})
}

// TakeDirty reports whether a redraw is due and clears the flag.
func (sm *StateManager) TakeDirty() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	d := sm.dirty
	sm.dirty = false
	return d
}
