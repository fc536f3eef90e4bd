package formatter

import (
	"io"
	"sort"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/model"
)

// Formatter writes an inspection report.
type Formatter interface {
	Format(w io.Writer, report Report) error
}

// Report summarises a recording for the inspect command.
type Report struct {
	Source     string           `json:"source"`
	StartTime  int64            `json:"startTime"`
	EndTime    int64            `json:"endTime"`
	TotalTime  time.Duration    `json:"totalTime"`
	EventCount int              `json:"eventCount"`
	ByType     []TypeCount      `json:"byType"`
	Threshold  time.Duration    `json:"inactiveThreshold"`
	Active     time.Duration    `json:"activeTime"`
	Inactive   time.Duration    `json:"inactiveTime"`
	Segments   []SegmentSummary `json:"segments"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// SegmentSummary is a segment expressed in offsets from the recording start.
type SegmentSummary struct {
	Kind     string        `json:"kind"`
	Start    time.Duration `json:"start"`
	End      time.Duration `json:"end"`
	Duration time.Duration `json:"duration"`
	Events   int           `json:"events"`
}

// NewReport builds a report from the recording's events and segments.
// events must be in timestamp order.
func NewReport(source string, events []model.Event, segments []model.Segment, threshold time.Duration) Report {
	r := Report{
		Source:     source,
		EventCount: len(events),
		Threshold:  threshold,
		ByType:     []TypeCount{},
		Segments:   []SegmentSummary{},
	}
	if len(events) == 0 {
		return r
	}

	first := events[0].Timestamp
	r.StartTime = first
	r.EndTime = events[len(events)-1].Timestamp
	r.TotalTime = model.MillisToOffset(r.EndTime - r.StartTime)

	counts := make(map[model.EventType]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	types := make([]model.EventType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		r.ByType = append(r.ByType, TypeCount{Type: t.String(), Count: counts[t]})
	}

	for _, seg := range segments {
		s := SegmentSummary{
			Kind:     string(seg.Kind),
			Start:    model.MillisToOffset(seg.Start - first),
			End:      model.MillisToOffset(seg.End - first),
			Duration: seg.Duration(),
			Events:   seg.EndIndex - seg.StartIndex,
		}
		if seg.Kind == model.SegmentInactive {
			r.Inactive += s.Duration
		} else {
			r.Active += s.Duration
		}
		r.Segments = append(r.Segments, s)
	}
	return r
}
