package events

import (
	"context"
	"log/slog"
	"sync"

	"HelpsResolver/internal/ports"
)

// ClickEvent is a click on some element of the rendered document.
type ClickEvent struct {
	Target string

	mu        sync.Mutex
	prevented bool
}

var _ ports.Event = (*ClickEvent)(nil)

// NewClick wraps the serialized markup of the clicked element.
func NewClick(targetHTML string) *ClickEvent {
	return &ClickEvent{Target: targetHTML}
}

func (e *ClickEvent) Name() string       { return "click" }
func (e *ClickEvent) TargetHTML() string { return e.Target }

func (e *ClickEvent) PreventDefault() {
	e.mu.Lock()
	e.prevented = true
	e.mu.Unlock()
}

// Prevented reports whether a handler suppressed the default navigation.
func (e *ClickEvent) Prevented() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prevented
}

type subscription struct {
	id      uint64
	handler ports.EventHandler
}

// Dispatcher is an in-process event source. Events are delivered to the
// handlers subscribed to their name, in subscription order.
type Dispatcher struct {
	logger *slog.Logger

	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]subscription

	stop chan struct{}
	done chan struct{}
}

var _ ports.EventSource = (*Dispatcher)(nil)

// NewDispatcher builds an empty dispatcher.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger:   log,
		handlers: make(map[string][]subscription),
	}
}

// Subscribe registers handler for eventName. The returned func removes it and
// is safe to call more than once.
func (d *Dispatcher) Subscribe(eventName string, handler ports.EventHandler) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.handlers[eventName] = append(d.handlers[eventName], subscription{id: id, handler: handler})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.unsubscribe(eventName, id) })
	}
}

func (d *Dispatcher) unsubscribe(eventName string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.handlers[eventName]
	for i, sub := range subs {
		if sub.id != id {
			continue
		}
		kept := make([]subscription, 0, len(subs)-1)
		kept = append(kept, subs[:i]...)
		kept = append(kept, subs[i+1:]...)
		if len(kept) == 0 {
			delete(d.handlers, eventName)
		} else {
			d.handlers[eventName] = kept
		}
		return
	}
}

// Dispatch delivers ev synchronously and returns the number of handlers run.
func (d *Dispatcher) Dispatch(ctx context.Context, ev ports.Event) int {
	d.mu.RLock()
	subs := d.handlers[ev.Name()]
	d.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(ctx, ev)
	}
	if len(subs) == 0 {
		d.debug("event without subscribers", "event", ev.Name())
	}
	return len(subs)
}

// Start pumps events from the channel until ctx ends, the channel closes or
// Stop is called.
func (d *Dispatcher) Start(ctx context.Context, in <-chan ports.Event) error {
	if in == nil {
		return nil
	}

	d.mu.Lock()
	if d.stop != nil {
		d.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop, d.done = stop, done
	d.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-in:
				if !ok {
					return
				}
				d.Dispatch(ctx, ev)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the pump started by Start and waits for it to exit.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
