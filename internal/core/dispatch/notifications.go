package dispatch

import (
	"time"

	"github.com/penwyp/go-replay-player/internal/core/model"
)

// Notification names.
const (
	StateChange   = "state-change"
	Finish        = "finish"
	SkipStart     = "skip-start"
	SkipEnd       = "skip-end"
	EventCast     = "event-cast"
	Resize        = "resize"
	TagAdded      = "tag"
	UICurrentTime = "ui-update-current-time"
	UIProgress    = "ui-update-progress"
	UIPlayerState = "ui-update-player-state"
	UIControls    = "ui-update-controls"
)

type StatePayload struct {
	Status model.PlayerStatus `json:"status"`
}

type FinishPayload struct{}

// SkipPayload describes one inactivity jump [From, To) in playback offsets.
type SkipPayload struct {
	Speed float64       `json:"speed"`
	From  time.Duration `json:"from"`
	To    time.Duration `json:"to"`
}

type EventCastPayload struct {
	Event model.Event `json:"event"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type CurrentTimePayload struct {
	Offset time.Duration `json:"offset"`
}

type ProgressPayload struct {
	Percent float64 `json:"percent"`
}

type ControlsPayload struct {
	Controls model.ControlState `json:"controls"`
}

type TagPayload struct {
	Tag model.Tag `json:"tag"`
}
