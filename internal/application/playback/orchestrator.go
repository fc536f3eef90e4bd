package playback

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/data/parser"
	"github.com/penwyp/go-replay-player/internal/data/scanner"
	"github.com/penwyp/go-replay-player/internal/data/source"
	"github.com/penwyp/go-replay-player/internal/player"
	"github.com/penwyp/go-replay-player/internal/presentation/display"
	"github.com/penwyp/go-replay-player/internal/presentation/interaction"
	"github.com/penwyp/go-replay-player/internal/presentation/layout"
	"github.com/penwyp/go-replay-player/internal/presentation/replayer"
	"github.com/penwyp/go-replay-player/internal/util"
)

const (
	uiRefreshInterval = 100 * time.Millisecond
	// previousGrace lets a second "previous" press go further back instead of
	// landing on the segment that just started.
	previousGrace = time.Second
	defaultTag    = "mark"
)

// Orchestrator coordinates all components for the play command
type Orchestrator struct {
	config   *PlayConfig
	screen   *os.File
	headless bool

	player  *player.Player
	console *replayer.Console
	timer   *FrameTimer
	state   *StateManager

	// UI components, nil when headless
	display  *display.TerminalDisplay
	sizer    *layout.Sizer
	keyboard *interaction.KeyboardReader

	// Live sources
	follow   *source.FileTail
	sources  []source.Source
	open     int
	incoming chan model.SourceEvent
	ended    chan struct{}
	quit     chan struct{}
	wg       sync.WaitGroup

	closeOnce sync.Once
}

// NewOrchestrator loads the recordings and builds the player.
func NewOrchestrator(config *PlayConfig) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	screen, ok := config.Output.(*os.File)
	headless := config.Headless || !ok || !isTerminal(screen) || !isTerminal(config.Input)

	o := &Orchestrator{
		config:   config,
		screen:   screen,
		headless: headless,
		timer:    NewFrameTimer(config.FrameRate),
		state:    NewStateManager(),
		incoming: make(chan model.SourceEvent, 256),
		ended:    make(chan struct{}),
		quit:     make(chan struct{}),
	}

	events, err := o.loadEvents()
	if err != nil {
		return nil, err
	}

	if headless {
		o.console = replayer.NewConsole(config.Output, 0)
	} else {
		o.sizer = layout.DetectSizer(int(screen.Fd()))
		o.console = replayer.NewConsole(nil, o.sizer.Width)
		o.display = display.NewTerminalDisplay(config.Output, o.sizer)
	}

	p, err := player.New(config.Player, events, o.console, o.timer)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	o.player = p
	o.state.Subscribe(p)
	return o, nil
}

func (o *Orchestrator) loadEvents() ([]model.Event, error) {
	if o.config.Follow {
		tail, err := source.NewFileTail(o.config.Recordings[0])
		if err != nil {
			return nil, err
		}
		events, err := tail.ReadExisting()
		if err != nil {
			_ = tail.Close()
			return nil, err
		}
		o.follow = tail
		return events, nil
	}
	if len(o.config.Recordings) == 0 {
		return nil, nil
	}
	files, err := scanner.ResolveRecordings(o.config.Recordings)
	if err != nil {
		return nil, err
	}
	events, err := parser.NewParser(o.config.Concurrency).LoadAll(files)
	if err != nil {
		return nil, fmt.Errorf("failed to load recordings: %w", err)
	}
	return events, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Player exposes the underlying player.
func (o *Orchestrator) Player() *player.Player { return o.player }

// Headless reports whether the run renders plain lines instead of the
// interactive screen.
func (o *Orchestrator) Headless() bool { return o.headless }

// Run plays until the user quits, the context is cancelled, or, when
// headless, the recording finishes and every live source has closed.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting replay player...")
	defer o.Close()

	if err := o.startSources(ctx); err != nil {
		return err
	}

	var keys <-chan interaction.KeyEvent
	var resized <-chan os.Signal
	if !o.headless {
		keyboard, err := interaction.NewKeyboardReaderFrom(o.config.Input)
		if err != nil {
			return fmt.Errorf("failed to initialize keyboard: %w", err)
		}
		o.keyboard = keyboard
		keys = keyboard.Events()

		sig, stop := resizeSignals()
		defer stop()
		resized = sig

		o.display.EnterAlternateScreen()
		defer o.display.ExitAlternateScreen()
	}

	o.player.TriggerResize()
	o.player.Start()
	if o.headless && o.player.State().Status != model.StatusPlaying {
		o.player.Play()
	}
	o.render()

	uiTicker := time.NewTicker(uiRefreshInterval)
	defer uiTicker.Stop()

	for {
		if o.done() {
			util.LogInfof("Replay finished after %d skips", o.state.Skips())
			return nil
		}

		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down replay player...")
			return nil

		case now := <-o.timer.C():
			o.player.Tick(o.timer.Elapsed(now))
			o.render()

		case <-uiTicker.C:
			if o.state.TakeDirty() {
				o.draw()
			}

		case ev := <-o.incoming:
			o.handleSourceEvent(ev)

		case <-o.ended:
			o.open--
			util.LogInfof("Live source closed, %d still open", o.open)

		case key := <-keys:
			if o.handleCommand(interaction.Resolve(key)) {
				return nil
			}
			o.render()

		case <-resized:
			o.handleResize()
		}
	}
}

// done is only true for headless runs with nothing left to receive and
// nothing left to play. A live player never finishes, so once its sources
// are gone it is done when every event has been delivered.
func (o *Orchestrator) done() bool {
	if !o.headless || o.open > 0 || len(o.incoming) > 0 {
		return false
	}
	state := o.player.State()
	if state.Status == model.StatusFinished {
		return true
	}
	return o.config.Player.LiveMode && state.NextEventIndex >= o.player.EventCount()
}

func (o *Orchestrator) startSources(ctx context.Context) error {
	if o.follow != nil {
		if err := o.follow.Start(ctx); err != nil {
			return fmt.Errorf("failed to follow %s: %w", o.config.Recordings[0], err)
		}
		o.addSource(o.follow)
	}
	if o.config.LiveURL != "" {
		ws, err := source.DialWebSocket(ctx, o.config.LiveURL, nil)
		if err != nil {
			return err
		}
		o.addSource(ws)
	}
	return nil
}

func (o *Orchestrator) addSource(s source.Source) {
	o.sources = append(o.sources, s)
	o.open++
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range s.Events() {
			select {
			case o.incoming <- ev:
			case <-o.quit:
				return
			}
		}
		select {
		case o.ended <- struct{}{}:
		case <-o.quit:
		}
	}()
}

func (o *Orchestrator) handleSourceEvent(ev model.SourceEvent) {
	if ev.Err != nil {
		util.LogWarn("Live source error", util.Field{Key: "source", Value: ev.Source}, util.Field{Key: "error", Value: ev.Err.Error()})
		o.state.SetMessage(fmt.Sprintf("%s: %v", ev.Source, ev.Err))
		return
	}
	if err := o.player.AddEvent(ev.Event); err != nil {
		util.LogWarnf("Dropping event from %s: %v", ev.Source, err)
		return
	}
	o.state.MarkDirty()
}

// handleCommand applies a key command and reports whether to quit.
func (o *Orchestrator) handleCommand(cmd interaction.Command) bool {
	p := o.player
	switch cmd.Action {
	case interaction.ActionQuit:
		return true
	case interaction.ActionToggle:
		p.Toggle()
	case interaction.ActionSeekBack:
		p.Seek(-o.config.SeekStep)
	case interaction.ActionSeekForward:
		p.Seek(o.config.SeekStep)
	case interaction.ActionSpeedOption:
		if err := p.SetSpeedOption(cmd.Index); err != nil {
			o.state.SetMessage(fmt.Sprintf("No speed option %d", cmd.Index+1))
			return false
		}
		o.state.SetMessage("Speed " + util.FormatSpeed(p.State().Speed))
	case interaction.ActionToggleSkip:
		if p.ToggleSkipInactive() {
			o.state.SetMessage("Skipping inactive periods")
		} else {
			o.state.SetMessage("Playing inactive periods")
		}
	case interaction.ActionPrevious:
		if p.Controls().DisablePrevious {
			return false
		}
		p.GotoDefault(o.previousActivity())
	case interaction.ActionNext:
		if p.Controls().DisableNext {
			return false
		}
		p.GotoDefault(o.nextActivity())
	case interaction.ActionTogglePrevious:
		p.ToggleDisablePrevious()
	case interaction.ActionToggleNext:
		p.ToggleDisableNext()
	case interaction.ActionPopup:
		p.HiddenPopup()
	case interaction.ActionHelp:
		p.ToggleHelp()
	case interaction.ActionTag:
		p.AddTag(o.tagLabel())
	}
	o.state.MarkDirty()
	return false
}

// nextActivity is the start of the first active segment after the clock, or
// the end of the recording.
func (o *Orchestrator) nextActivity() time.Duration {
	meta := o.player.GetMetaData()
	clock := o.player.State().VirtualTime
	for _, seg := range o.player.Segments() {
		if seg.Kind != model.SegmentActive {
			continue
		}
		if off := model.MillisToOffset(seg.Start - meta.StartTime); off > clock {
			return off
		}
	}
	return meta.TotalTime
}

// previousActivity is the start of the last active segment before the clock,
// or the beginning of the recording.
func (o *Orchestrator) previousActivity() time.Duration {
	meta := o.player.GetMetaData()
	limit := o.player.State().VirtualTime - previousGrace
	var target time.Duration
	for _, seg := range o.player.Segments() {
		if seg.Kind != model.SegmentActive {
			continue
		}
		off := model.MillisToOffset(seg.Start - meta.StartTime)
		if off >= limit {
			break
		}
		target = off
	}
	return target
}

// tagLabel cycles through the configured tag labels.
func (o *Orchestrator) tagLabel() string {
	tags := o.player.Config().Tags
	if len(tags) == 0 {
		return defaultTag
	}
	labels := make([]string, 0, len(tags))
	for label := range tags {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels[len(o.state.Tags())%len(labels)]
}

func (o *Orchestrator) handleResize() {
	o.sizer = layout.DetectSizer(int(o.screen.Fd()))
	o.display.SetSizer(o.sizer)
	o.console.SetLineWidth(o.sizer.Width)
	util.LogDebugf("Terminal resized to %dx%d", o.sizer.Width, o.sizer.Height)
	o.state.MarkDirty()
}

// render draws immediately in interactive mode.
func (o *Orchestrator) render() {
	if o.display == nil {
		return
	}
	o.state.TakeDirty()
	o.draw()
}

func (o *Orchestrator) draw() {
	if o.display == nil {
		return
	}
	o.display.Render(o.buildFrame())
}

func (o *Orchestrator) buildFrame() display.Frame {
	p := o.player
	cfg := p.Config()
	meta := p.GetMetaData()
	rows := layout.DefaultHeight
	if o.sizer != nil {
		rows = o.sizer.LogRows(cfg.ShowController)
	}
	return display.Frame{
		State:          p.State(),
		Duration:       meta.TotalTime,
		Progress:       p.Progress(),
		Origin:         meta.StartTime,
		Segments:       p.Segments(),
		Controls:       p.Controls(),
		SpeedOptions:   cfg.SpeedOption,
		ShowController: cfg.ShowController,
		Log:            o.console.History(rows),
		Message:        o.state.Message(),
	}
}

// Close stops the timer, live sources and the keyboard. It is safe to call
// more than once.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		close(o.quit)
		o.timer.Stop()
		for _, s := range o.sources {
			if err := s.Close(); err != nil {
				util.LogDebugf("Closing source: %v", err)
			}
		}
		if o.follow != nil {
			_ = o.follow.Close()
		}
		if o.keyboard != nil {
			_ = o.keyboard.Close()
		}
		o.wg.Wait()
	})
}
