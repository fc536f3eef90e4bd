package model

import (
	"fmt"
	"time"
)

// PlayerStatus is the controller's state machine position.
type PlayerStatus string

const (
	StatusIdle     PlayerStatus = "idle"
	StatusPlaying  PlayerStatus = "playing"
	StatusPaused   PlayerStatus = "paused"
	StatusFinished PlayerStatus = "finished"
)

// PlaybackState is a snapshot of the controller.
type PlaybackState struct {
	Status         PlayerStatus  `json:"status"`
	VirtualTime    time.Duration `json:"virtualTime"` // offset from the first event
	Speed          float64       `json:"speed"`
	SkipInactive   bool          `json:"skipInactive"`
	NextEventIndex int           `json:"nextEventIndex"`
}

// Metadata summarizes the recording bounds.
type Metadata struct {
	StartTime int64         `json:"startTime"` // Unix milliseconds
	EndTime   int64         `json:"endTime"`
	TotalTime time.Duration `json:"totalTime"`
}

// SegmentKind classifies a span of the recording.
type SegmentKind string

const (
	SegmentActive   SegmentKind = "active"
	SegmentInactive SegmentKind = "inactive"
)

// Segment is a half-open span [Start, End) of absolute timestamps. StartIndex
// and EndIndex are the sorted event positions bounding it.
type Segment struct {
	Kind       SegmentKind `json:"kind"`
	Start      int64       `json:"start"`
	End        int64       `json:"end"`
	StartIndex int         `json:"startIndex"`
	EndIndex   int         `json:"endIndex"`
}

// Duration returns the wall length of the segment.
func (s Segment) Duration() time.Duration {
	return time.Duration(s.End-s.Start) * time.Millisecond
}

// Contains reports whether ts falls inside the segment.
func (s Segment) Contains(ts int64) bool {
	return ts >= s.Start && ts < s.End
}

func (s Segment) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.Kind, s.Start, s.End)
}

// Tag is a host-provided annotation; the core only carries it around.
type Tag struct {
	Label string        `json:"label"`
	Color string        `json:"color,omitempty"`
	Time  time.Duration `json:"time"`
}

// OffsetToMillis converts a playback offset to whole milliseconds.
func OffsetToMillis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}

// MillisToOffset converts milliseconds to a playback offset.
func MillisToOffset(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
