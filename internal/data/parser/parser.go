package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/util"
)

const maxLineSize = 16 * 1024 * 1024

// Parser reads recordings. A recording is either a JSON array of events or
// one JSON event per line. Parsed files are cached by path.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string][]model.Event
}

// Stats counts what a parse saw.
type Stats struct {
	Records int
	Valid   int
	Skipped int
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File   string
	Events []model.Event
	Error  error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string][]model.Event),
	}
}

// ParseLine decodes a single event record.
func ParseLine(line []byte) (model.Event, error) {
	var wire model.WireEvent
	if err := sonic.Unmarshal(line, &wire); err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}
	return wire.ToEvent()
}

// Parse reads a recording from r. Records that fail to decode or validate
// are skipped and counted; only read errors are returned.
func Parse(r io.Reader) ([]model.Event, Stats, error) {
	br := bufio.NewReader(r)

	first, err := firstNonSpace(br)
	if err == io.EOF {
		return nil, Stats{}, nil
	}
	if err != nil {
		return nil, Stats{}, err
	}

	if first == '[' {
		return parseArray(br)
	}
	return parseLines(br)
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func parseArray(r io.Reader) ([]model.Event, Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Stats{}, err
	}

	var records []json.RawMessage
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, Stats{}, fmt.Errorf("%w: malformed event array: %v", model.ErrInvalidArgument, err)
	}

	var stats Stats
	events := make([]model.Event, 0, len(records))
	for i, rec := range records {
		stats.Records++
		ev, err := ParseLine(rec)
		if err != nil {
			util.LogDebugf("Skip invalid event %d - %v", i, err)
			stats.Skipped++
			continue
		}
		events = append(events, ev)
		stats.Valid++
	}
	return events, stats, nil
}

func parseLines(r io.Reader) ([]model.Event, Stats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var stats Stats
	var events []model.Event
	lineCount := 0
	for scanner.Scan() {
		lineCount++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Records++
		ev, err := ParseLine(line)
		if err != nil {
			util.LogDebugf("Skip invalid line %d - %v", lineCount, err)
			stats.Skipped++
			continue
		}
		events = append(events, ev)
		stats.Valid++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, err
	}
	return events, stats, nil
}

// ParseFile parses the recording at path.
func (p *Parser) ParseFile(path string) ([]model.Event, error) {
	p.mu.Lock()
	if cached, ok := p.cache[path]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	util.LogDebugf("Start parsing recording: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	events, stats, err := Parse(file)
	if err != nil {
		util.LogDebugf("Error reading recording: %s - %v", path, err)
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if stats.Skipped > 0 {
		util.LogWarnf("Skipped %d of %d records in %s", stats.Skipped, stats.Records, path)
	}

	p.mu.Lock()
	p.cache[path] = events
	p.mu.Unlock()

	return events, nil
}

// ParseFiles parses recording chunks concurrently. Results arrive in
// completion order; the channel closes when every file is done.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	util.LogDebugf("Start parsing %d recording files, concurrency: %d", len(files), p.concurrency)

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			events, err := p.ParseFile(f)
			results <- ParseResult{File: f, Events: events, Error: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebugf("Recording parsing finished in %v", time.Since(start))
	}()

	return results
}

// LoadAll parses every file and concatenates their events. The first
// failing file aborts the load.
func (p *Parser) LoadAll(files []string) ([]model.Event, error) {
	byFile := make(map[string][]model.Event, len(files))
	var firstErr error
	for res := range p.ParseFiles(files) {
		if res.Error != nil && firstErr == nil {
			firstErr = res.Error
		}
		byFile[res.File] = res.Events
	}
	if firstErr != nil {
		return nil, firstErr
	}

	var events []model.Event
	for _, f := range files {
		events = append(events, byFile[f]...)
	}
	return events, nil
}
