package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func timestamps(events []model.Event) []int64 {
	out := make([]int64, len(events))
	for i, ev := range events {
		out[i] = ev.Timestamp
	}
	return out
}

func TestNewParser(t *testing.T) {
	parser := NewParser(4)
	assert.Equal(t, 4, parser.concurrency)
	assert.Empty(t, parser.cache)

	assert.Equal(t, 1, NewParser(0).concurrency)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    model.Event
		wantErr bool
	}{
		{
			name: "full snapshot",
			line: `{"type":2,"data":{"node":{"id":1}},"timestamp":1700000000000}`,
			want: model.Event{Type: model.EventFullSnapshot, Data: []byte(`{"node":{"id":1}}`), Timestamp: 1700000000000},
		},
		{
			name: "zero type and timestamp are present values",
			line: `{"type":0,"timestamp":0}`,
			want: model.Event{Type: model.EventDomContentLoaded},
		},
		{name: "missing timestamp", line: `{"type":3}`, wantErr: true},
		{name: "missing type", line: `{"timestamp":5}`, wantErr: true},
		{name: "negative timestamp", line: `{"type":3,"timestamp":-5}`, wantErr: true},
		{name: "unknown type", line: `{"type":42,"timestamp":5}`, wantErr: true},
		{name: "not json", line: `hello`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseLine([]byte(tt.line))
			if tt.wantErr {
				assert.True(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Type, ev.Type)
			assert.Equal(t, tt.want.Timestamp, ev.Timestamp)
			if tt.want.Data != nil {
				assert.JSONEq(t, string(tt.want.Data), string(ev.Data))
			}
		})
	}
}

func TestParseJSONLines(t *testing.T) {
	input := `{"type":4,"data":{"href":"https://example.com","width":1024,"height":576},"timestamp":1000}

{"type":2,"data":{},"timestamp":1010}
invalid json line here
{"type":3,"data":{"source":1},"timestamp":1500}
{incomplete json`

	events, stats, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []int64{1000, 1010, 1500}, timestamps(events))
	assert.Equal(t, Stats{Records: 5, Valid: 3, Skipped: 2}, stats)
}

func TestParseJSONArray(t *testing.T) {
	input := `
  [
	{"type":4,"data":{},"timestamp":1000},
	{"type":99,"timestamp":1001},
	{"type":3,"data":{"source":2},"timestamp":1200}
  ]`

	events, stats, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []int64{1000, 1200}, timestamps(events))
	assert.Equal(t, Stats{Records: 3, Valid: 2, Skipped: 1}, stats)
}

func TestParseMalformedArray(t *testing.T) {
	_, _, err := Parse(strings.NewReader(`[{"type":3,"timestamp":1}`))
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))
}

func TestParseEmpty(t *testing.T) {
	events, stats, err := Parse(strings.NewReader("  \n\t"))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, Stats{}, stats)
}

func TestParserParseFileNonExistent(t *testing.T) {
	parser := NewParser(1)
	_, err := parser.ParseFile(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestParserParseFileCache(t *testing.T) {
	parser := NewParser(1)
	path := writeFile(t, t.TempDir(), "rec.jsonl", `{"type":4,"timestamp":1}`)

	first, err := parser.ParseFile(path)
	require.NoError(t, err)

	// Cached result survives the file changing
	require.NoError(t, os.WriteFile(path, []byte(`{"type":4,"timestamp":2}`), 0644))
	second, err := parser.ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []int64{1}, timestamps(second))
}

func TestParserLoadAllKeepsFileOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i := 0; i < 5; i++ {
		content := fmt.Sprintf(`{"type":3,"timestamp":%d}`+"\n"+`{"type":3,"timestamp":%d}`, i*10, i*10+1)
		files = append(files, writeFile(t, dir, fmt.Sprintf("chunk-%d.jsonl", i), content))
	}

	parser := NewParser(3)
	events, err := parser.LoadAll(files)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 10, 11, 20, 21, 30, 31, 40, 41}, timestamps(events))
}

func TestParserLoadAllFailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "ok.jsonl", `{"type":3,"timestamp":1}`),
		filepath.Join(dir, "missing.jsonl"),
	}

	_, err := NewParser(2).LoadAll(files)
	assert.Error(t, err)
}

func TestParserParseFilesEmptyList(t *testing.T) {
	results := NewParser(2).ParseFiles(nil)
	count := 0
	for range results {
		count++
	}
	assert.Zero(t, count)
}

func TestParserLargeLine(t *testing.T) {
	big := strings.Repeat("x", 2*1024*1024)
	content := fmt.Sprintf(`{"type":2,"data":{"blob":"%s"},"timestamp":7}`, big)
	path := writeFile(t, t.TempDir(), "big.jsonl", content)

	events, err := NewParser(1).ParseFile(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].Timestamp)
}
