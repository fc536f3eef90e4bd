package model

import (
	"encoding/json"
	"fmt"
)

// EventType is the recorder's event kind.
type EventType int

const (
	EventDomContentLoaded EventType = iota
	EventLoad
	EventFullSnapshot
	EventIncrementalSnapshot
	EventMeta
	EventCustom
	EventPlugin
)

var eventTypeNames = map[EventType]string{
	EventDomContentLoaded:    "dom-content-loaded",
	EventLoad:                "load",
	EventFullSnapshot:        "full-snapshot",
	EventIncrementalSnapshot: "incremental-snapshot",
	EventMeta:                "meta",
	EventCustom:              "custom",
	EventPlugin:              "plugin",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// Valid reports whether t is a known recorder kind.
func (t EventType) Valid() bool {
	_, ok := eventTypeNames[t]
	return ok
}

// Event is a single recorded interaction. Data is carried through untouched.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

// Validate checks the fields the timeline depends on.
func (e Event) Validate() error {
	if e.Timestamp < 0 {
		return fmt.Errorf("%w: negative timestamp %d", ErrInvalidArgument, e.Timestamp)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown event type %d", ErrInvalidArgument, int(e.Type))
	}
	return nil
}

// WireEvent is the decoded form of a recorded line before validation.
// Pointer fields distinguish a missing value from a zero one.
type WireEvent struct {
	Type      *EventType      `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp *int64          `json:"timestamp"`
}

// ToEvent converts a decoded record into a validated Event.
func (w WireEvent) ToEvent() (Event, error) {
	if w.Timestamp == nil {
		return Event{}, fmt.Errorf("%w: event missing timestamp", ErrInvalidArgument)
	}
	if w.Type == nil {
		return Event{}, fmt.Errorf("%w: event missing type", ErrInvalidArgument)
	}
	ev := Event{
		Type:      *w.Type,
		Data:      w.Data,
		Timestamp: *w.Timestamp,
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}
