package eventbus

import (
	"sync"
	"time"
)

// Event is a named notification flowing between kernel components.
type Event struct {
	Name      string
	Source    string
	Timestamp time.Time
	Data      map[string]interface{}
}

type EventHandler interface {
	Handle(event Event)
	GetID() string
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc struct {
	ID string
	Fn func(event Event)
}

func (h HandlerFunc) Handle(event Event) { h.Fn(event) }

func (h HandlerFunc) GetID() string { return h.ID }

type Bus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	buffer      chan Event
	closed      bool
	wg          sync.WaitGroup
}

func NewBus(bufferSize int) *Bus {
	bus := &Bus{
		subscribers: make(map[string][]EventHandler),
		buffer:      make(chan Event, bufferSize),
	}

	bus.startWorker()
	return bus
}

// Publish enqueues the event. It never blocks: when the buffer is full the
// event is dropped so a slow subscriber cannot stall the kernel. Publishing
// after Shutdown is a no-op, so late goroutines cannot crash the bus.
func (b *Bus) Publish(event Event) {
	event.Timestamp = time.Now()

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	select {
	case b.buffer <- event:
	default:
	}
}

func (b *Bus) Subscribe(eventName string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventName] = append(b.subscribers[eventName], handler)
}

func (b *Bus) Unsubscribe(eventName string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventName]
	for i, h := range handlers {
		if h.GetID() == handler.GetID() {
			b.subscribers[eventName] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
}

// Shutdown stops intake, then waits for the worker to drain every event
// already buffered. Safe to call more than once.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.buffer)
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for event := range b.buffer {
			b.dispatchEvent(event)
		}
	}()
}

func (b *Bus) dispatchEvent(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.subscribers[event.Name]))
	copy(handlers, b.subscribers[event.Name])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h EventHandler) {
			defer func() {
				if r := recover(); r != nil {
					// A panicking subscriber must not take the bus down.
				}
			}()
			h.Handle(event)
		}(handler)
	}
}
