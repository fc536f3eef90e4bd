package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/data/parser"
	"github.com/penwyp/go-replay-player/internal/util"
)

// FileTail follows a JSON-lines recording that another process appends to.
//
// ReadExisting consumes what is already on disk; Start then watches the
// file and emits every complete line written afterwards. A trailing line
// without a newline is held back until it is completed.
type FileTail struct {
	path    string
	name    string
	watcher *fsnotify.Watcher
	events  chan model.SourceEvent
	done    chan struct{}

	offset  int64
	partial []byte

	mu        sync.Mutex
	started   bool
	closeOnce sync.Once
}

// NewFileTail prepares a tail of path. Nothing is read until ReadExisting
// or Start is called.
func NewFileTail(path string) (*FileTail, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileTail{
		path:    abs,
		name:    "file:" + path,
		watcher: watcher,
		events:  make(chan model.SourceEvent, eventBuffer),
		done:    make(chan struct{}),
	}, nil
}

// ReadExisting returns the events currently in the file. Invalid lines are
// skipped. It must be called before Start.
func (ft *FileTail) ReadExisting() ([]model.Event, error) {
	var events []model.Event
	err := ft.readNew(func(ev model.Event, err error) {
		if err != nil {
			util.LogDebugf("Skip invalid line in %s - %v", ft.path, err)
			return
		}
		events = append(events, ev)
	})
	return events, err
}

// Start watches the file until ctx is done or Close is called.
func (ft *FileTail) Start(ctx context.Context) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.started {
		return errors.New("file tail already started")
	}
	select {
	case <-ft.done:
		return errors.New("file tail closed")
	default:
	}

	// Watch the directory so the tail survives the file being replaced.
	if err := ft.watcher.Add(filepath.Dir(ft.path)); err != nil {
		return err
	}
	ft.started = true

	go ft.processEvents(ctx)
	return nil
}

func (ft *FileTail) processEvents(ctx context.Context) {
	defer close(ft.events)

	// Catch writes that happened before the watch was in place.
	ft.read()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ft.done:
			return

		case event, ok := <-ft.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != ft.path {
				continue
			}

			switch {
			case event.Has(fsnotify.Create):
				util.LogDebugf("Recording %s recreated, reading from start", ft.path)
				ft.offset = 0
				ft.partial = nil
				ft.read()
			case event.Has(fsnotify.Write):
				ft.read()
			}

		case err, ok := <-ft.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Recording watch error: " + err.Error())
			ft.emit(model.Event{}, err)
		}
	}
}

func (ft *FileTail) read() {
	if err := ft.readNew(ft.emit); err != nil {
		ft.emit(model.Event{}, err)
	}
}

// readNew reads from the last offset to EOF and reports each complete line.
// Only one goroutine may call it at a time.
func (ft *FileTail) readNew(report func(model.Event, error)) error {
	file, err := os.Open(ft.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < ft.offset {
		util.LogWarnf("Recording %s shrank from %d to %d bytes, reading from start", ft.path, ft.offset, info.Size())
		ft.offset = 0
		ft.partial = nil
	}

	if _, err := file.Seek(ft.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	ft.offset += int64(len(data))

	buf := append(ft.partial, data...)
	for {
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimSpace(buf[:idx])
		buf = buf[idx+1:]
		if len(line) == 0 {
			continue
		}
		ev, err := parser.ParseLine(line)
		if err != nil {
			report(model.Event{}, fmt.Errorf("%s: %w", ft.path, err))
			continue
		}
		report(ev, nil)
	}
	ft.partial = append([]byte(nil), buf...)
	return nil
}

func (ft *FileTail) emit(ev model.Event, err error) {
	select {
	case ft.events <- model.SourceEvent{Source: ft.name, Event: ev, Err: err}:
	case <-ft.done:
	}
}

func (ft *FileTail) Events() <-chan model.SourceEvent {
	return ft.events
}

func (ft *FileTail) Close() error {
	var err error
	ft.closeOnce.Do(func() {
		close(ft.done)
		err = ft.watcher.Close()

		ft.mu.Lock()
		if !ft.started {
			close(ft.events)
		}
		ft.mu.Unlock()
	})
	return err
}
