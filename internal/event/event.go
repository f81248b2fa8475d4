package event

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	defaultQueueSize = 1024
	defaultTimeout   = 30 * time.Second
)

type Event interface {
	Name() string
}

type Handler func(ctx context.Context, e Event) error

type envelope struct {
	ctx context.Context
	e   Event
}

// subscriber drains its own mailbox in order, so a slow handler only delays itself.
// A bounded subscriber drops events once limit are pending; an unbounded one keeps them all.
type subscriber struct {
	h     Handler
	limit int

	mu      sync.Mutex
	pending []envelope
	closed  bool
	ready   chan struct{}
}

func newSubscriber(h Handler, limit int) *subscriber {
	return &subscriber{h: h, limit: limit, ready: make(chan struct{}, 1)}
}

// push never blocks. It reports false when a bounded mailbox is full.
func (s *subscriber) push(env envelope) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return true
	}
	if s.limit > 0 && len(s.pending) >= s.limit {
		s.mu.Unlock()
		return false
	}
	s.pending = append(s.pending, env)
	s.mu.Unlock()
	s.signal()
	return true
}

// next blocks until events are pending and takes them all. ok is false once closed and drained.
func (s *subscriber) next() (batch []envelope, ok bool) {
	s.mu.Lock()
	for len(s.pending) == 0 && !s.closed {
		s.mu.Unlock()
		<-s.ready
		s.mu.Lock()
	}
	batch, s.pending = s.pending, nil
	closed := s.closed
	s.mu.Unlock()
	return batch, len(batch) > 0 || !closed
}

func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.signal()
}

func (s *subscriber) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Bus is an in-memory event bus. Publish never waits for handlers; each subscriber sees events
// in the order they were published.
type Bus struct {
	wg       *sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	subs     []*subscriber
	handlers map[string][]*subscriber
	size     int
}

// NewBus create a new event bus. Caller should call Stop for graceful shutdown the bus.
func NewBus() *Bus {
	return NewBusWithQueue(defaultQueueSize)
}

// NewBusWithQueue sets the per-subscriber queue size.
func NewBusWithQueue(size int) *Bus {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Bus{
		wg:       new(sync.WaitGroup),
		handlers: make(map[string][]*subscriber),
		size:     size,
	}
}

// Subscribe to an event
func (b *Bus) Subscribe(name string, h Handler) {
	b.SubscribeMany([]string{name}, h)
}

// SubscribeMany registers one handler for several events; the handler sees them in publish order.
// Events are dropped while the handler is more than the queue size behind.
func (b *Bus) SubscribeMany(names []string, h Handler) {
	b.subscribe(names, h, b.size)
}

// SubscribeAll is SubscribeMany for handlers that must see every event, such as persistence.
// Its mailbox grows instead of dropping.
func (b *Bus) SubscribeAll(names []string, h Handler) {
	b.subscribe(names, h, 0)
}

func (b *Bus) subscribe(names []string, h Handler, limit int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}

	s := newSubscriber(h, limit)
	for _, name := range names {
		b.handlers[name] = append(b.handlers[name], s)
	}
	b.subs = append(b.subs, s)

	b.wg.Add(1)
	go b.run(s)
}

// Publish an event
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.stopped {
		return
	}

	for _, s := range b.handlers[e.Name()] {
		if !s.push(envelope{ctx: context.WithoutCancel(ctx), e: e}) {
			slog.WarnContext(ctx, "event: subscriber queue full, dropping event",
				"event", e.Name(),
			)
		}
	}
}

func (b *Bus) run(s *subscriber) {
	defer b.wg.Done()
	for {
		batch, ok := s.next()
		if !ok {
			return
		}
		for _, env := range batch {
			b.dispatch(env.ctx, s.h, env.e)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "event: handler panic",
				"error", fmt.Errorf("%v, stack: %s", r, debug.Stack()),
			)
		}
		cancel()
	}()

	if err := h(ctx, e); err != nil {
		slog.ErrorContext(ctx, "event: handle event failed",
			"event", e.Name(),
			"error", err,
		)
	}
}

// Stop stops accepting events and waits for all queued events to be handled.
func (b *Bus) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	for _, s := range b.subs {
		s.close()
	}
	b.mu.Unlock()

	b.wg.Wait()
}
