package player

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penwyp/go-replay-player/internal/core/dispatch"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/core/store"
	"github.com/penwyp/go-replay-player/internal/core/timeline"
	"github.com/penwyp/go-replay-player/internal/util"
)

// Player is the host-facing control surface of one recording. It owns the
// event store, the timeline controller and the notification dispatcher.
//
// Like the controller, a Player must only be used from one goroutine.
type Player struct {
	id       string
	config   Config
	bus      *dispatch.Dispatcher
	ctrl     *timeline.Controller
	replayer timeline.Replayer
	controls model.ControlState
}

// New creates a paused-at-zero player over events. It does not start playback;
// call Start once listeners are registered.
func New(cfg Config, events []model.Event, replayer timeline.Replayer, timer timeline.Timer) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}

	bus := dispatch.NewDispatcher()
	ctrl, err := timeline.NewController(store.NewEventStore(events...), replayer, bus, timer, timeline.Options{
		Speed:               cfg.Speed,
		SkipInactive:        cfg.SkipInactive,
		InactivityThreshold: cfg.InactiveThreshold,
		LiveMode:            cfg.LiveMode,
	})
	if err != nil {
		return nil, err
	}
	if replayer == nil {
		replayer = timeline.NoopReplayer()
	}

	p := &Player{
		id:       uuid.NewString(),
		config:   cfg,
		bus:      bus,
		ctrl:     ctrl,
		replayer: replayer,
	}
	util.LogInfof("Player %s created with %d events (speed %s, skip inactive %v, live %v)",
		p.id, len(events), util.FormatSpeed(cfg.Speed), cfg.SkipInactive, cfg.LiveMode)
	return p, nil
}

// Start applies the autoPlay option: play from the beginning, or pause on the
// first frame.
func (p *Player) Start() {
	p.ctrl.Goto(0, p.config.AutoPlay)
}

func (p *Player) ID() string { return p.id }

// Config returns the validated options the player was created with.
func (p *Player) Config() Config { return p.config }

func (p *Player) State() model.PlaybackState { return p.ctrl.State() }

func (p *Player) Play()   { p.ctrl.Play() }
func (p *Player) Pause()  { p.ctrl.Pause() }
func (p *Player) Toggle() { p.ctrl.Toggle() }

// Tick advances playback by elapsed wall time.
func (p *Player) Tick(elapsed time.Duration) { p.ctrl.Tick(elapsed) }

func (p *Player) SetSpeed(speed float64) error {
	return p.ctrl.SetSpeed(speed)
}

// SetSpeedOption selects the i-th configured speed.
func (p *Player) SetSpeedOption(i int) error {
	if i < 0 || i >= len(p.config.SpeedOption) {
		return fmt.Errorf("%w: speed option %d of %d", model.ErrInvalidArgument, i, len(p.config.SpeedOption))
	}
	return p.ctrl.SetSpeed(p.config.SpeedOption[i])
}

func (p *Player) ToggleSkipInactive() bool {
	return p.ctrl.ToggleSkipInactive()
}

// Goto seeks to offset, then plays or pauses according to play.
func (p *Player) Goto(offset time.Duration, play bool) {
	p.ctrl.Goto(offset, play)
}

// GotoDefault seeks to offset keeping the current play/pause intent.
func (p *Player) GotoDefault(offset time.Duration) {
	p.ctrl.GotoDefault(offset)
}

// Seek moves relative to the current clock, keeping the play/pause intent.
func (p *Player) Seek(delta time.Duration) {
	p.ctrl.GotoDefault(p.ctrl.CurrentTime() + delta)
}

func (p *Player) AddEvent(ev model.Event) error {
	return p.ctrl.AddEvent(ev)
}

// GetMetaData returns the recording bounds derived from the store.
func (p *Player) GetMetaData() model.Metadata {
	return p.ctrl.Metadata()
}

// EventCount returns the number of events in the recording so far.
func (p *Player) EventCount() int {
	return p.ctrl.Store().Count()
}

// Segments returns the active/inactive classification of the recording.
func (p *Player) Segments() []model.Segment {
	return p.ctrl.Segments()
}

// Progress returns the clock position as a percentage of the recording.
func (p *Player) Progress() float64 {
	return p.ctrl.Progress()
}

func (p *Player) GetReplayer() timeline.Replayer { return p.replayer }

// GetMirror returns the replayer's mirror, or nil when it has none.
func (p *Player) GetMirror() timeline.Mirror {
	if mp, ok := p.replayer.(timeline.MirrorProvider); ok {
		return mp.Mirror()
	}
	return nil
}

// TriggerResize forwards the configured viewport to the replayer.
func (p *Player) TriggerResize() {
	w, h := p.config.Width, p.config.Height
	p.replayer.Resize(w, h)
	p.emit(dispatch.Resize, dispatch.ResizePayload{Width: w, Height: h})
}

// Resize records a new viewport and triggers a resize.
func (p *Player) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid viewport %dx%d", model.ErrInvalidArgument, width, height)
	}
	p.config.Width, p.config.Height = width, height
	p.TriggerResize()
	return nil
}

func (p *Player) Controls() model.ControlState { return p.controls }

func (p *Player) ToggleDisablePrevious() {
	p.controls.DisablePrevious = !p.controls.DisablePrevious
	p.emitControls()
}

func (p *Player) ToggleDisableNext() {
	p.controls.DisableNext = !p.controls.DisableNext
	p.emitControls()
}

// HiddenPopup toggles the visibility of the speed/options popup.
func (p *Player) HiddenPopup() {
	p.controls.PopupHidden = !p.controls.PopupHidden
	p.emitControls()
}

// ToggleHelp shows or hides the key binding help.
func (p *Player) ToggleHelp() {
	p.controls.ShowHelp = !p.controls.ShowHelp
	p.emitControls()
}

func (p *Player) emitControls() {
	p.emit(dispatch.UIControls, dispatch.ControlsPayload{Controls: p.controls})
}

// AddEventListener subscribes handler to the named notification.
func (p *Player) AddEventListener(name string, handler dispatch.Handler) dispatch.UnsubscribeFunc {
	return p.bus.AddEventListener(name, handler)
}

// AddTag marks the current clock position with label. The color comes from
// the tags option; unknown labels get no color.
func (p *Player) AddTag(label string) model.Tag {
	tag := model.Tag{
		Label: label,
		Color: p.config.Tags[label],
		Time:  p.ctrl.CurrentTime(),
	}
	p.emit(dispatch.TagAdded, dispatch.TagPayload{Tag: tag})
	return tag
}

func (p *Player) emit(name string, payload any) {
	_ = p.bus.Dispatch(name, payload)
}
