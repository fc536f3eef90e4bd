package playback

import "time"

// FrameTimer drives Tick at a fixed frame rate while playback runs. The
// controller starts and stops it; the run loop selects on C.
type FrameTimer struct {
	interval time.Duration
	ticker   *time.Ticker
	last     time.Time
	now      func() time.Time
}

func NewFrameTimer(fps float64) *FrameTimer {
	if fps <= 0 {
		fps = 60
	}
	return &FrameTimer{
		interval: time.Duration(float64(time.Second) / fps),
		now:      time.Now,
	}
}

func (t *FrameTimer) Start() {
	if t.ticker != nil {
		return
	}
	t.ticker = time.NewTicker(t.interval)
	t.last = t.now()
}

func (t *FrameTimer) Stop() {
	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	t.ticker = nil
}

// Running reports whether the timer is started.
func (t *FrameTimer) Running() bool {
	return t.ticker != nil
}

// C is nil while stopped, so a select on it blocks.
func (t *FrameTimer) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C
}

// Elapsed returns the wall time since the previous frame (or Start).
func (t *FrameTimer) Elapsed(at time.Time) time.Duration {
	d := at.Sub(t.last)
	t.last = at
	if d < 0 {
		return 0
	}
	return d
}
