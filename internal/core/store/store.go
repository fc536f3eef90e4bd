package store

import (
	"sort"

	"github.com/penwyp/go-replay-player/internal/core/model"
)

// EventStore is the append-only event buffer of a single recording.
//
// Events are kept in arrival order. A separate index holds arrival positions
// sorted by (timestamp, arrival), which every time-based lookup uses. The
// index is extended by insertion from the tail, so in-order appends are O(1)
// and a late event only pays for the distance it travels back.
//
// EventStore is not safe for concurrent use; the timeline controller owns it.
type EventStore struct {
	events  []model.Event
	sorted  []int
	version uint64
}

// NewEventStore creates a store seeded with events in the given order.
func NewEventStore(events ...model.Event) *EventStore {
	s := &EventStore{
		events: make([]model.Event, 0, len(events)),
		sorted: make([]int, 0, len(events)),
	}
	for _, ev := range events {
		s.Append(ev)
	}
	return s
}

// Append stores ev and returns the sorted position it landed at.
func (s *EventStore) Append(ev model.Event) int {
	arrival := len(s.events)
	s.events = append(s.events, ev)
	s.sorted = append(s.sorted, arrival)

	pos := len(s.sorted) - 1
	for pos > 0 && s.events[s.sorted[pos-1]].Timestamp > ev.Timestamp {
		s.sorted[pos] = s.sorted[pos-1]
		pos--
	}
	s.sorted[pos] = arrival
	s.version++
	return pos
}

// Count returns the number of stored events.
func (s *EventStore) Count() int {
	return len(s.events)
}

// EventAt returns the event at sorted position i.
func (s *EventStore) EventAt(i int) model.Event {
	return s.events[s.sorted[i]]
}

// Arrived returns the i-th event in arrival order.
func (s *EventStore) Arrived(i int) model.Event {
	return s.events[i]
}

// FindIndexAtOrAfter returns the first sorted position whose timestamp is at
// least ts, or Count() when there is none.
func (s *EventStore) FindIndexAtOrAfter(ts int64) int {
	return sort.Search(len(s.sorted), func(i int) bool {
		return s.events[s.sorted[i]].Timestamp >= ts
	})
}

// FindIndexAfter returns the first sorted position whose timestamp is
// strictly greater than ts, or Count() when there is none.
func (s *EventStore) FindIndexAfter(ts int64) int {
	return sort.Search(len(s.sorted), func(i int) bool {
		return s.events[s.sorted[i]].Timestamp > ts
	})
}

// First returns the earliest timestamp, or 0 for an empty store.
func (s *EventStore) First() int64 {
	if len(s.sorted) == 0 {
		return 0
	}
	return s.events[s.sorted[0]].Timestamp
}

// Last returns the latest timestamp, or 0 for an empty store.
func (s *EventStore) Last() int64 {
	if len(s.sorted) == 0 {
		return 0
	}
	return s.events[s.sorted[len(s.sorted)-1]].Timestamp
}

// Slice copies the events at sorted positions [from, to).
func (s *EventStore) Slice(from, to int) []model.Event {
	if from < 0 {
		from = 0
	}
	if to > len(s.sorted) {
		to = len(s.sorted)
	}
	if from >= to {
		return []model.Event{}
	}
	out := make([]model.Event, 0, to-from)
	for _, idx := range s.sorted[from:to] {
		out = append(out, s.events[idx])
	}
	return out
}

// Version increases on every append. Derived data compares it to decide
// whether a rebuild is due.
func (s *EventStore) Version() uint64 {
	return s.version
}

// Metadata derives the recording bounds.
func (s *EventStore) Metadata() model.Metadata {
	first, last := s.First(), s.Last()
	return model.Metadata{
		StartTime: first,
		EndTime:   last,
		TotalTime: model.MillisToOffset(last - first),
	}
}
