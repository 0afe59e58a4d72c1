package event

import (
	"reflect"
	"sync"
)

// Bus is a double-buffered event bus. Events emitted during a frame land in
// the back buffer; the cleanup phase swaps buffers and dispatches them, so
// handlers always see a complete frame's worth of events and never run in the
// middle of a resolver's iteration.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T. Handlers run on
// the frame goroutine and must not block.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		if len(events) == 0 {
			continue
		}
		b.mu.Lock()
		handlers := b.handlers[t]
		b.mu.Unlock()
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
		b.front[t] = events[:0]
	}
}

// Flush swaps and dispatches in one step.
func (b *Bus) Flush() {
	b.SwapBuffers()
	b.DispatchAll()
}

// Reset drops every queued event without delivering it.
func (b *Bus) Reset() {
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
	for k := range b.front {
		b.front[k] = b.front[k][:0]
	}
}

// Clear detaches every handler.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[reflect.Type][]func(any))
}
