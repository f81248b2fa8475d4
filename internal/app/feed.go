package app

import (
	"context"
	"sync"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
)

const feedBuffer = 32

// Feed fans the events of each game out to that game's subscribers.
type Feed struct {
	mu   sync.Mutex
	subs map[string]map[chan event.Event]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[chan event.Event]struct{})}
}

// Register subscribes the feed to game and host events on bus.
func (f *Feed) Register(bus *event.Bus) {
	names := append([]string{domain.EventNameHostLine, domain.EventNameHostAudio}, domain.GameEventNames...)
	bus.SubscribeMany(names, f.handle)
}

func (f *Feed) handle(_ context.Context, e event.Event) error {
	scoped, ok := e.(interface{ SessionID() string })
	if !ok {
		return nil
	}
	f.broadcast(scoped.SessionID(), e)
	return nil
}

func (f *Feed) Subscribe(gameID string) (<-chan event.Event, func()) {
	ch := make(chan event.Event, feedBuffer)

	f.mu.Lock()
	if f.subs[gameID] == nil {
		f.subs[gameID] = make(map[chan event.Event]struct{})
	}
	f.subs[gameID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[gameID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subs, gameID)
		}
	}
	return ch, cancel
}

func (f *Feed) broadcast(gameID string, e event.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[gameID] {
		select {
		case ch <- e:
		default:
			// a slow client loses its oldest event rather than blocking the bus
			select {
			case <-ch:
			default:
			}
			ch <- e
		}
	}
}
