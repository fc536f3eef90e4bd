package timeline

import "github.com/penwyp/go-replay-player/internal/core/model"

// BatchReason tags a DeliverBatch call.
type BatchReason string

const (
	// BatchSeek asks the replayer to flush and rebuild from the first event.
	BatchSeek BatchReason = "seek"
	// BatchCatchUp carries events skipped over by a forward seek.
	BatchCatchUp BatchReason = "catch-up"
)

// Replayer renders delivered events. Calls arrive in playback order and are
// expected to be applied idempotently.
type Replayer interface {
	// Deliver applies a single event during normal playback
	Deliver(ev model.Event)
	// DeliverBatch applies several events synchronously
	DeliverBatch(events []model.Event, reason BatchReason)
	// Resize adapts the replayer viewport
	Resize(width, height int)
}

// Timer is the host scheduling primitive that calls Tick while playing.
// The controller starts it when playback begins and stops it on every
// transition out of playing.
type Timer interface {
	Start()
	Stop()
}

// Notifier publishes controller notifications.
type Notifier interface {
	Dispatch(name string, payload any) error
}

type noopTimer struct{}

func (noopTimer) Start() {}
func (noopTimer) Stop()  {}

type noopNotifier struct{}

func (noopNotifier) Dispatch(string, any) error { return nil }

// NoopReplayer returns a replayer that discards everything.
func NoopReplayer() Replayer { return noopReplayer{} }

type noopReplayer struct{}

func (noopReplayer) Deliver(model.Event)                    {}
func (noopReplayer) DeliverBatch([]model.Event, BatchReason) {}
func (noopReplayer) Resize(int, int)                         {}

// Mirror is a replayer's reconstructed view. The controller never reads it.
type Mirror interface {
	// Size returns the number of nodes or records the mirror tracks
	Size() int
}

// MirrorProvider is implemented by replayers that expose their mirror.
type MirrorProvider interface {
	Mirror() Mirror
}
