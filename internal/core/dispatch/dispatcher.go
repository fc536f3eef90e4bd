package dispatch

import (
	"errors"
	"fmt"

	"github.com/penwyp/go-replay-player/internal/util"
)

// ErrHandlerFault matches every *HandlerFault via errors.Is.
var ErrHandlerFault = errors.New("handler fault")

// Notification is what a handler receives.
type Notification struct {
	Name    string
	Payload any
}

// Handler reacts to a notification. A returned error is reported as a fault
// and does not stop delivery to the remaining handlers.
type Handler func(n Notification) error

// UnsubscribeFunc removes a previously added handler. Calling it twice is safe.
type UnsubscribeFunc func()

// HandlerFault describes one misbehaving handler.
type HandlerFault struct {
	Name     string
	Position int
	Err      error
	Panic    any
}

func (f *HandlerFault) Error() string {
	if f.Panic != nil {
		return fmt.Sprintf("handler %d for %q panicked: %v", f.Position, f.Name, f.Panic)
	}
	return fmt.Sprintf("handler %d for %q failed: %v", f.Position, f.Name, f.Err)
}

func (f *HandlerFault) Unwrap() error {
	return f.Err
}

func (f *HandlerFault) Is(target error) bool {
	return target == ErrHandlerFault
}

type subscription struct {
	id      uint64
	handler Handler
}

// Dispatcher maps notification names to ordered handler lists.
//
// Dispatch is synchronous and runs on the caller's goroutine. Handlers may
// subscribe or unsubscribe while a dispatch is running; the change applies to
// the next dispatch.
type Dispatcher struct {
	handlers map[string][]subscription
	nextID   uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]subscription),
	}
}

// AddEventListener appends handler to the list for name.
func (d *Dispatcher) AddEventListener(name string, handler Handler) UnsubscribeFunc {
	if handler == nil {
		return func() {}
	}
	d.nextID++
	id := d.nextID
	d.handlers[name] = append(d.handlers[name], subscription{id: id, handler: handler})

	return func() {
		subs := d.handlers[name]
		for i, sub := range subs {
			if sub.id == id {
				kept := make([]subscription, 0, len(subs)-1)
				kept = append(kept, subs[:i]...)
				kept = append(kept, subs[i+1:]...)
				d.handlers[name] = kept
				return
			}
		}
	}
}

// ListenerCount returns the number of handlers registered for name.
func (d *Dispatcher) ListenerCount(name string) int {
	return len(d.handlers[name])
}

// Dispatch invokes every handler for name in registration order. Faulty
// handlers are logged and collected into the returned error; they never
// prevent later handlers from running.
func (d *Dispatcher) Dispatch(name string, payload any) error {
	subs := d.handlers[name]
	if len(subs) == 0 {
		return nil
	}

	n := Notification{Name: name, Payload: payload}
	var faults []error
	for i, sub := range subs {
		if fault := invoke(sub.handler, n, i); fault != nil {
			util.LogWarnf("Dispatcher: %v", fault)
			faults = append(faults, fault)
		}
	}
	return errors.Join(faults...)
}

func invoke(handler Handler, n Notification, position int) (fault *HandlerFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &HandlerFault{Name: n.Name, Position: position, Panic: r}
		}
	}()

	if err := handler(n); err != nil {
		return &HandlerFault{Name: n.Name, Position: position, Err: err}
	}
	return nil
}

// Subscriber is anything that accepts listeners, the Dispatcher itself or a
// facade wrapping one.
type Subscriber interface {
	AddEventListener(name string, handler Handler) UnsubscribeFunc
}

// Listen registers a handler that only sees payloads of type T. Payloads of
// any other type are ignored.
func Listen[T any](s Subscriber, name string, fn func(T)) UnsubscribeFunc {
	return s.AddEventListener(name, func(n Notification) error {
		if payload, ok := n.Payload.(T); ok {
			fn(payload)
		}
		return nil
	})
}
