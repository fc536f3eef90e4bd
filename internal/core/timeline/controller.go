package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/dispatch"
	"github.com/penwyp/go-replay-player/internal/core/inactivity"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/core/store"
	"github.com/penwyp/go-replay-player/internal/util"
)

// Options configures a Controller.
type Options struct {
	Speed               float64
	SkipInactive        bool
	InactivityThreshold time.Duration

	// LiveMode keeps the clock running past the last event instead of
	// finishing, so appended events play as they arrive.
	LiveMode bool
}

// Controller owns the virtual playback clock of one recording.
//
// The clock is an offset from the first event's timestamp. Events whose
// offset is at or before the clock have been handed to the replayer; they
// occupy the sorted positions [0, next) of the store.
//
// Controller is not safe for concurrent use. The host calls every method,
// Tick included, from a single goroutine.
type Controller struct {
	store    *store.EventStore
	segments *inactivity.Index
	replayer Replayer
	notifier Notifier
	timer    Timer

	status       model.PlayerStatus
	clock        time.Duration
	speed        float64
	skipInactive bool
	liveMode     bool
	next         int

	// epoch changes whenever a status change or seek invalidates work that
	// is still in flight, e.g. a tick whose handler paused playback.
	epoch        uint64
	timerRunning bool
}

// NewController creates an idle controller over st. Nil collaborators are
// replaced by no-ops.
func NewController(st *store.EventStore, replayer Replayer, notifier Notifier, timer Timer, opts Options) (*Controller, error) {
	if st == nil {
		st = store.NewEventStore()
	}
	if replayer == nil {
		replayer = noopReplayer{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if timer == nil {
		timer = noopTimer{}
	}

	speed := opts.Speed
	if speed == 0 {
		speed = 1
	}
	if err := validateSpeed(speed); err != nil {
		return nil, err
	}

	detector := inactivity.NewDetector(opts.InactivityThreshold)

	return &Controller{
		store:        st,
		segments:     inactivity.NewIndex(detector, st),
		replayer:     replayer,
		notifier:     notifier,
		timer:        timer,
		status:       model.StatusIdle,
		speed:        speed,
		skipInactive: opts.SkipInactive,
		liveMode:     opts.LiveMode,
	}, nil
}

func validateSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return fmt.Errorf("%w: speed must be a positive number, got %v", model.ErrInvalidArgument, speed)
	}
	return nil
}

// State returns a snapshot of the playback state.
func (c *Controller) State() model.PlaybackState {
	return model.PlaybackState{
		Status:         c.status,
		VirtualTime:    c.clock,
		Speed:          c.speed,
		SkipInactive:   c.skipInactive,
		NextEventIndex: c.next,
	}
}

// Status returns the current state machine position.
func (c *Controller) Status() model.PlayerStatus {
	return c.status
}

// CurrentTime returns the virtual clock.
func (c *Controller) CurrentTime() time.Duration {
	return c.clock
}

// Duration returns the offset of the last event.
func (c *Controller) Duration() time.Duration {
	return model.MillisToOffset(c.store.Last() - c.store.First())
}

// Metadata returns the recording bounds.
func (c *Controller) Metadata() model.Metadata {
	return c.store.Metadata()
}

// Segments returns the current active/inactive classification.
func (c *Controller) Segments() []model.Segment {
	return c.segments.Segments()
}

// Store exposes the underlying event store for read access.
func (c *Controller) Store() *store.EventStore {
	return c.store
}

// Play starts or resumes playback. From finished it seeks back to the start,
// or to the current position when live events extended the recording.
func (c *Controller) Play() {
	switch c.status {
	case model.StatusPlaying:
		return
	case model.StatusFinished:
		target := c.clock
		if target >= c.Duration() {
			target = 0
		}
		c.Goto(target, true)
		return
	}
	c.setStatus(model.StatusPlaying)
}

// Pause freezes the clock. It does nothing unless playing.
func (c *Controller) Pause() {
	if c.status != model.StatusPlaying {
		return
	}
	c.setStatus(model.StatusPaused)
}

// Toggle pauses when playing and plays otherwise.
func (c *Controller) Toggle() {
	if c.status == model.StatusPlaying {
		c.Pause()
		return
	}
	c.Play()
}

// SetSpeed changes the clock multiplier. The clock position is kept.
func (c *Controller) SetSpeed(speed float64) error {
	if err := validateSpeed(speed); err != nil {
		return err
	}
	util.LogDebugf("Playback speed %.2f -> %.2f at %v", c.speed, speed, c.clock)
	c.speed = speed
	return nil
}

// Speed returns the clock multiplier.
func (c *Controller) Speed() float64 {
	return c.speed
}

// ToggleSkipInactive flips the skip policy. It applies from the next tick.
func (c *Controller) ToggleSkipInactive() bool {
	c.SetSkipInactive(!c.skipInactive)
	return c.skipInactive
}

// SetSkipInactive sets the skip policy.
func (c *Controller) SetSkipInactive(skip bool) {
	c.skipInactive = skip
}

// SkipInactive reports the skip policy.
func (c *Controller) SkipInactive() bool {
	return c.skipInactive
}

// SetInactivityThreshold changes the idle gap used for skipping.
func (c *Controller) SetInactivityThreshold(threshold time.Duration) error {
	return c.segments.Detector().SetThreshold(threshold)
}

// Goto moves the clock to offset, clamped to the recording bounds, then
// plays or pauses according to play.
//
// A seek that lands before events already delivered resets the replayer with
// a single seek batch holding every event up to the target. A forward seek
// only sends the events it jumped over.
func (c *Controller) Goto(offset time.Duration, play bool) {
	target := c.clamp(offset)

	oldNext := c.next
	newNext := c.store.FindIndexAtOrAfter(c.store.First() + ceilMillis(target))

	c.epoch++
	epoch := c.epoch
	c.clock = target
	c.next = newNext

	util.LogDebugf("Seek to %v (requested %v), next event %d -> %d", target, offset, oldNext, newNext)

	switch {
	case newNext < oldNext || oldNext == 0:
		c.deliverBatch(c.store.Slice(0, newNext), BatchSeek, epoch)
	case newNext > oldNext:
		c.deliverBatch(c.store.Slice(oldNext, newNext), BatchCatchUp, epoch)
	}
	if c.epoch != epoch {
		return
	}

	if play {
		c.setStatus(model.StatusPlaying)
	} else {
		c.setStatus(model.StatusPaused)
	}
	c.emitProgress()
}

// GotoDefault seeks while keeping the current play/pause intent.
func (c *Controller) GotoDefault(offset time.Duration) {
	c.Goto(offset, c.status == model.StatusPlaying)
}

func (c *Controller) clamp(offset time.Duration) time.Duration {
	total := c.Duration()
	target := offset
	if target < 0 {
		target = 0
	} else if target > total {
		target = total
	}
	if target != offset {
		util.LogDebugf("Seek target %v: %v, clamped to %v", offset, model.ErrOutOfRange, target)
	}
	return target
}

// Tick advances the clock by elapsed real time scaled by the speed and
// delivers every event the clock passes. It does nothing unless playing.
func (c *Controller) Tick(elapsed time.Duration) {
	if c.status != model.StatusPlaying {
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}

	epoch := c.epoch
	prev := c.clock
	c.clock = c.advance(elapsed)

	if c.skipInactive {
		if !c.skipIfInactive(prev, epoch) {
			return
		}
	}

	if !c.deliverUpTo(c.clock, epoch) {
		return
	}

	if !c.liveMode && c.next >= c.store.Count() {
		c.finish()
		return
	}
	c.emitProgress()
}

// advance returns the clock moved by elapsed scaled by the speed, saturating
// at the largest representable offset instead of wrapping around.
func (c *Controller) advance(elapsed time.Duration) time.Duration {
	step := float64(elapsed) * c.speed
	if step >= float64(math.MaxInt64-c.clock) {
		return math.MaxInt64
	}
	next := c.clock + time.Duration(step)
	if next < c.clock {
		return math.MaxInt64
	}
	return next
}

// skipIfInactive jumps the clock to the end of the inactive segment it landed
// in. It reports false when a handler invalidated the tick.
func (c *Controller) skipIfInactive(prev time.Duration, epoch uint64) bool {
	first := c.store.First()
	seg, ok := c.segments.InactiveAt(first + model.OffsetToMillis(c.clock))
	if !ok {
		return true
	}

	from := model.MillisToOffset(seg.Start - first)
	to := model.MillisToOffset(seg.End - first)
	if prev > from {
		from = prev
	}

	if !c.deliverUpTo(from, epoch) {
		return false
	}

	payload := dispatch.SkipPayload{Speed: c.speed, From: from, To: to}
	util.LogDebugf("Skipping inactive span %v -> %v", from, to)
	c.emit(dispatch.SkipStart, payload)
	if c.epoch != epoch {
		return false
	}

	c.clock = to
	if !c.deliverUpTo(to, epoch) {
		return false
	}

	c.emit(dispatch.SkipEnd, payload)
	return c.epoch == epoch
}

// deliverUpTo hands over pending events with offset <= limit, in order.
func (c *Controller) deliverUpTo(limit time.Duration, epoch uint64) bool {
	for c.next < c.store.Count() {
		ev := c.store.EventAt(c.next)
		if c.offsetOf(ev) > limit {
			break
		}
		c.next++
		c.replayer.Deliver(ev)
		c.emit(dispatch.EventCast, dispatch.EventCastPayload{Event: ev})
		if c.epoch != epoch {
			return false
		}
	}
	return true
}

func (c *Controller) deliverBatch(events []model.Event, reason BatchReason, epoch uint64) {
	c.replayer.DeliverBatch(events, reason)
	for _, ev := range events {
		c.emit(dispatch.EventCast, dispatch.EventCastPayload{Event: ev})
		if c.epoch != epoch {
			return
		}
	}
}

func (c *Controller) finish() {
	if total := c.Duration(); c.clock > total {
		c.clock = total
	}
	util.LogDebugf("Playback finished at %v", c.clock)
	c.setStatus(model.StatusFinished)
	c.emit(dispatch.Finish, dispatch.FinishPayload{})
	c.emitProgress()
}

// AddEvent appends ev to the recording.
//
// An event landing among already delivered events, or behind the clock while
// playing, is delivered at once and counted as delivered, so the next index
// keeps pointing at the same upcoming event. Anything else waits for the clock.
func (c *Controller) AddEvent(ev model.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	hadEvents := c.store.Count() > 0
	prevFirst := c.store.First()
	pos := c.store.Append(ev)

	// An event before the first one moves the origin; keep the absolute
	// position the clock pointed at. The first event of an empty recording
	// defines the origin.
	if !hadEvents {
		c.clock = 0
	} else if ev.Timestamp < prevFirst {
		c.clock += model.MillisToOffset(prevFirst - ev.Timestamp)
	}

	late := pos < c.next ||
		(pos == c.next && c.status == model.StatusPlaying && c.offsetOf(ev) <= c.clock)
	if !late {
		return nil
	}

	util.LogDebugf("Late event at %d (position %d, next %d), delivering now", ev.Timestamp, pos, c.next)
	c.next++
	c.replayer.Deliver(ev)
	c.emit(dispatch.EventCast, dispatch.EventCastPayload{Event: ev})
	return nil
}

func (c *Controller) offsetOf(ev model.Event) time.Duration {
	return model.MillisToOffset(ev.Timestamp - c.store.First())
}

// setStatus is the only place the timer is started or stopped.
func (c *Controller) setStatus(status model.PlayerStatus) {
	if c.status == status {
		return
	}
	util.LogDebugf("Player status %s -> %s", c.status, status)
	c.status = status
	c.epoch++

	if status == model.StatusPlaying {
		if !c.timerRunning {
			c.timerRunning = true
			c.timer.Start()
		}
	} else if c.timerRunning {
		c.timerRunning = false
		c.timer.Stop()
	}

	payload := dispatch.StatePayload{Status: status}
	c.emit(dispatch.StateChange, payload)
	c.emit(dispatch.UIPlayerState, payload)
}

func (c *Controller) emitProgress() {
	c.emit(dispatch.UICurrentTime, dispatch.CurrentTimePayload{Offset: c.clock})
	c.emit(dispatch.UIProgress, dispatch.ProgressPayload{Percent: c.Progress()})
}

// Progress returns the clock position as a percentage of the recording.
func (c *Controller) Progress() float64 {
	total := c.Duration()
	if total <= 0 {
		if c.status == model.StatusFinished {
			return 100
		}
		return 0
	}
	percent := float64(c.clock) / float64(total) * 100
	if percent > 100 {
		percent = 100
	}
	return percent
}

func (c *Controller) emit(name string, payload any) {
	// Faults are isolated and logged by the dispatcher.
	_ = c.notifier.Dispatch(name, payload)
}

func ceilMillis(d time.Duration) int64 {
	ms := int64(d / time.Millisecond)
	if d%time.Millisecond > 0 {
		ms++
	}
	return ms
}
