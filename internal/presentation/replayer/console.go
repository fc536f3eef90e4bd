package replayer

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/muesli/reflow/truncate"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/core/timeline"
	"github.com/penwyp/go-replay-player/internal/util"
)

const (
	defaultLineWidth = 120
	defaultHistory   = 200
)

// Mirror is the console replayer's reconstructed state: how many events of
// each kind have been applied since the last full rebuild.
type Mirror struct {
	Applied   int
	ByType    map[model.EventType]int
	LastEvent int64
	Width     int
	Height    int
}

// Size returns the number of applied events.
func (m *Mirror) Size() int { return m.Applied }

// Console renders events as text lines. Lines go to an optional writer and
// into a bounded history the terminal display reads from.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	width   int
	history []string
	maxHist int
	mirror  Mirror
}

// NewConsole creates a console replayer. out may be nil.
func NewConsole(out io.Writer, lineWidth int) *Console {
	if lineWidth <= 0 {
		lineWidth = defaultLineWidth
	}
	return &Console{
		out:     out,
		width:   lineWidth,
		maxHist: defaultHistory,
		mirror:  Mirror{ByType: make(map[model.EventType]int)},
	}
}

func (c *Console) Deliver(ev model.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(ev)
}

// DeliverBatch applies a batch. A seek batch rebuilds the mirror from scratch
// and only logs a summary line, none when it is empty.
func (c *Console) DeliverBatch(events []model.Event, reason timeline.BatchReason) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reason == timeline.BatchSeek {
		w, h := c.mirror.Width, c.mirror.Height
		c.mirror = Mirror{ByType: make(map[model.EventType]int), Width: w, Height: h}
		for _, ev := range events {
			c.record(ev)
		}
		if len(events) > 0 {
			c.writeLine(fmt.Sprintf("── rebuilt from %d events ──", len(events)))
		}
		return
	}

	for _, ev := range events {
		c.apply(ev)
	}
}

func (c *Console) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror.Width, c.mirror.Height = width, height
	util.LogDebugf("Console replayer viewport %dx%d", width, height)
}

// SetLineWidth changes the truncation width for future lines.
func (c *Console) SetLineWidth(width int) {
	if width <= 0 {
		return
	}
	c.mu.Lock()
	c.width = width
	c.mu.Unlock()
}

func (c *Console) Mirror() timeline.Mirror {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.mirror
	snapshot.ByType = make(map[model.EventType]int, len(c.mirror.ByType))
	for k, v := range c.mirror.ByType {
		snapshot.ByType[k] = v
	}
	return &snapshot
}

// History returns up to n of the most recent lines, oldest first.
func (c *Console) History(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || n > len(c.history) {
		n = len(c.history)
	}
	out := make([]string, n)
	copy(out, c.history[len(c.history)-n:])
	return out
}

func (c *Console) apply(ev model.Event) {
	c.record(ev)
	c.writeLine(FormatEvent(ev))
}

func (c *Console) record(ev model.Event) {
	c.mirror.Applied++
	c.mirror.ByType[ev.Type]++
	c.mirror.LastEvent = ev.Timestamp
}

func (c *Console) writeLine(line string) {
	line = truncate.StringWithTail(line, uint(c.width), "…")

	c.history = append(c.history, line)
	if len(c.history) > c.maxHist {
		c.history = append(c.history[:0:0], c.history[len(c.history)-c.maxHist:]...)
	}
	if c.out != nil {
		fmt.Fprintln(c.out, line)
	}
}

// FormatEvent renders one event as "hh:mm:ss.mmm kind data".
func FormatEvent(ev model.Event) string {
	ts := time.UnixMilli(ev.Timestamp).UTC().Format("15:04:05.000")
	data := strings.Join(strings.Fields(string(ev.Data)), " ")
	if data == "" {
		return fmt.Sprintf("%s %s", ts, ev.Type)
	}
	return fmt.Sprintf("%s %-20s %s", ts, ev.Type, data)
}
