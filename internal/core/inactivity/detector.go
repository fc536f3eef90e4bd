package inactivity

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/util"
)

// DefaultThreshold is the idle gap above which a stretch counts as inactive.
const DefaultThreshold = 10 * time.Second

// Source is the read side of an event store, in timestamp order.
type Source interface {
	Count() int
	EventAt(i int) model.Event
}

// VersionedSource lets the index notice appends.
type VersionedSource interface {
	Source
	Version() uint64
}

// Detector classifies the gaps between consecutive events.
type Detector struct {
	threshold time.Duration
}

// NewDetector creates a detector. A non-positive threshold falls back to
// DefaultThreshold.
func NewDetector(threshold time.Duration) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Threshold returns the idle threshold.
func (d *Detector) Threshold() time.Duration {
	return d.threshold
}

// SetThreshold replaces the idle threshold.
func (d *Detector) SetThreshold(threshold time.Duration) error {
	if threshold <= 0 {
		return fmt.Errorf("%w: inactivity threshold must be positive, got %v", model.ErrInvalidArgument, threshold)
	}
	d.threshold = threshold
	return nil
}

// Scan returns the segments of src. Runs of gaps of the same class form one
// segment, so adjacent idle gaps merge into a single inactive span. The
// sequence rescans src on every iteration.
func (d *Detector) Scan(src Source) iter.Seq[model.Segment] {
	threshold := d.threshold
	return func(yield func(model.Segment) bool) {
		n := src.Count()
		if n < 2 {
			return
		}

		ts := func(i int) int64 { return src.EventAt(i).Timestamp }
		idle := func(gap int) bool {
			return model.MillisToOffset(ts(gap+1)-ts(gap)) > threshold
		}

		runStart := 0
		for k := 1; k <= n-1; k++ {
			if k < n-1 && idle(k) == idle(runStart) {
				continue
			}
			kind := model.SegmentActive
			if idle(runStart) {
				kind = model.SegmentInactive
			}
			seg := model.Segment{
				Kind:       kind,
				Start:      ts(runStart),
				End:        ts(k),
				StartIndex: runStart,
				EndIndex:   k,
			}
			if !yield(seg) {
				return
			}
			runStart = k
		}
	}
}

// Index caches the segments of a store and rebuilds them when the store
// grows or the threshold changes.
type Index struct {
	detector *Detector
	source   VersionedSource

	built     bool
	version   uint64
	threshold time.Duration
	segments  []model.Segment
	inactive  []model.Segment
}

// NewIndex creates a lazily built segment index over src.
func NewIndex(detector *Detector, src VersionedSource) *Index {
	return &Index{
		detector: detector,
		source:   src,
	}
}

// Detector returns the detector backing the index.
func (x *Index) Detector() *Detector {
	return x.detector
}

func (x *Index) refresh() {
	if x.built && x.version == x.source.Version() && x.threshold == x.detector.Threshold() {
		return
	}

	x.segments = x.segments[:0]
	x.inactive = x.inactive[:0]
	for seg := range x.detector.Scan(x.source) {
		x.segments = append(x.segments, seg)
		if seg.Kind == model.SegmentInactive {
			x.inactive = append(x.inactive, seg)
		}
	}

	x.built = true
	x.version = x.source.Version()
	x.threshold = x.detector.Threshold()
	util.LogDebugf("Rebuilt segment index: %d segments, %d inactive, threshold %v",
		len(x.segments), len(x.inactive), x.threshold)
}

// Segments returns a copy of all segments.
func (x *Index) Segments() []model.Segment {
	x.refresh()
	out := make([]model.Segment, len(x.segments))
	copy(out, x.segments)
	return out
}

// InactiveAt returns the inactive segment containing the absolute timestamp ts.
func (x *Index) InactiveAt(ts int64) (model.Segment, bool) {
	x.refresh()
	i := sort.Search(len(x.inactive), func(i int) bool {
		return x.inactive[i].End > ts
	})
	if i < len(x.inactive) && x.inactive[i].Contains(ts) {
		return x.inactive[i], true
	}
	return model.Segment{}, false
}
