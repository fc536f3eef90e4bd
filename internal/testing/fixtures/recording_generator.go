package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-replay-player/internal/core/model"
)

// TestDataGenerator writes recordings for tests
type TestDataGenerator struct {
	baseDir string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{
		baseDir: baseDir,
	}
}

// Events builds a recording starting at start: a meta event followed by
// incremental snapshots, one per offset.
func Events(start time.Time, offsets ...time.Duration) []model.Event {
	origin := start.UnixMilli()
	events := make([]model.Event, 0, len(offsets))
	for i, off := range offsets {
		typ := model.EventIncrementalSnapshot
		data := fmt.Sprintf(`{"source":2,"id":%d}`, i)
		if i == 0 {
			typ = model.EventMeta
			data = `{"href":"https://example.com/","width":1024,"height":576}`
		}
		events = append(events, model.Event{
			Type:      typ,
			Data:      []byte(data),
			Timestamp: origin + model.OffsetToMillis(off),
		})
	}
	return events
}

// GenerateSession writes a JSONL recording with events at the given offsets
func (g *TestDataGenerator) GenerateSession(name string, start time.Time, offsets ...time.Duration) (string, error) {
	return g.WriteJSONL(name, Events(start, offsets...))
}

// GenerateIdleSession writes a recording with two bursts of activity, 0-2s
// and 20-25s, separated by 18s without events.
func (g *TestDataGenerator) GenerateIdleSession(name string, start time.Time) (string, error) {
	return g.GenerateSession(name, start,
		0, time.Second, 2*time.Second, 20*time.Second, 25*time.Second)
}

// GenerateLargeRecording writes count events spaced by interval
func (g *TestDataGenerator) GenerateLargeRecording(name string, start time.Time, count int, interval time.Duration) (string, error) {
	offsets := make([]time.Duration, count)
	for i := range offsets {
		offsets[i] = time.Duration(i) * interval
	}
	return g.GenerateSession(name, start, offsets...)
}

// GenerateChunks splits a recording into numbered JSON array files under dir,
// perChunk events each, one second apart.
func (g *TestDataGenerator) GenerateChunks(dir string, start time.Time, chunks, perChunk int) ([]string, error) {
	offsets := make([]time.Duration, chunks*perChunk)
	for i := range offsets {
		offsets[i] = time.Duration(i) * time.Second
	}
	events := Events(start, offsets...)

	paths := make([]string, 0, chunks)
	for c := 0; c < chunks; c++ {
		name := filepath.Join(dir, fmt.Sprintf("chunk-%03d.json", c+1))
		path, err := g.WriteJSONArray(name, events[c*perChunk:(c+1)*perChunk])
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSONL writes one event per line
func (g *TestDataGenerator) WriteJSONL(filename string, events []model.Event) (string, error) {
	var data []byte
	for _, ev := range events {
		line, err := sonic.Marshal(ev)
		if err != nil {
			return "", err
		}
		data = append(data, line...)
		data = append(data, '\n')
	}
	return g.write(filename, data)
}

// WriteJSONArray writes the events as one JSON array
func (g *TestDataGenerator) WriteJSONArray(filename string, events []model.Event) (string, error) {
	data, err := sonic.Marshal(events)
	if err != nil {
		return "", err
	}
	return g.write(filename, data)
}

func (g *TestDataGenerator) write(filename string, data []byte) (string, error) {
	path := filepath.Join(g.baseDir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// GetBaseDir returns the base directory
func (g *TestDataGenerator) GetBaseDir() string {
	return g.baseDir
}
