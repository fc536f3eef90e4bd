package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-replay-player/internal/util"
)

// ChunkScanner finds recording chunks below a directory.
type ChunkScanner struct {
	baseDir    string
	extensions []string
}

// NewChunkScanner creates a scanner for .json and .jsonl chunks.
func NewChunkScanner(baseDir string) *ChunkScanner {
	return &ChunkScanner{
		baseDir:    baseDir,
		extensions: []string{".json", ".jsonl"},
	}
}

// Scan returns the chunk paths in lexical order, which is the order chunks
// are played in.
func (s *ChunkScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirCount := 0
	totalCount := 0

	util.LogDebugf("Start scanning recording directory: %s", s.baseDir)

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.baseDir {
				return err
			}
			util.LogDebugf("Skip file (error): %s - %v", path, err)
			return nil
		}

		if d.IsDir() {
			dirCount++
			return nil
		}

		totalCount++
		if s.matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.baseDir, err)
	}
	sort.Strings(files)

	util.LogDebugf("Recording scan completed: duration %v, scanned %d directories, %d files, found %d chunks",
		time.Since(start), dirCount, totalCount, len(files))
	return files, nil
}

func (s *ChunkScanner) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range s.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// ResolveRecordings expands directories in paths into their chunks. Plain
// files are kept as given, in order.
func ResolveRecordings(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		chunks, err := NewChunkScanner(path).Scan()
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			return nil, fmt.Errorf("no .json or .jsonl recordings in %s", path)
		}
		files = append(files, chunks...)
	}
	return files, nil
}
