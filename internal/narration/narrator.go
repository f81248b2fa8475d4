package narration

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
)

const speechTimeout = 30 * time.Second

// Players resolves the name the host addresses.
type Players interface {
	GetPlayer(ctx context.Context, id string) (domain.Player, error)
}

type inflight struct {
	id     uint64
	cancel context.CancelFunc
}

// Narrator listens to game events and publishes host lines. With a Speaker it also
// publishes the audio of each line; a newer line for the same game cancels older synthesis.
type Narrator struct {
	host    *Host
	players Players
	speaker *Speaker
	emit    game.Emitter

	mu       sync.Mutex
	names    map[string]string
	speaking map[string]inflight
	seq      uint64
	wg       sync.WaitGroup
}

// NewNarrator wires the host. players and speaker may be nil.
func NewNarrator(host *Host, players Players, speaker *Speaker, emit game.Emitter) *Narrator {
	return &Narrator{
		host:     host,
		players:  players,
		speaker:  speaker,
		emit:     emit,
		names:    make(map[string]string),
		speaking: make(map[string]inflight),
	}
}

// Register subscribes the narrator to every game event.
func (n *Narrator) Register(bus *event.Bus) {
	bus.SubscribeMany(domain.GameEventNames, n.Handle)
}

func (n *Narrator) Handle(ctx context.Context, e event.Event) error {
	scoped, ok := e.(interface{ SessionID() string })
	if !ok {
		return nil
	}
	gameID := scoped.SessionID()

	switch ev := e.(type) {
	case domain.EventGameStarted:
		n.remember(ctx, gameID, ev.PlayerID)
	case domain.EventGameEnded:
		n.mu.Lock()
		delete(n.names, gameID)
		n.mu.Unlock()
	}

	n.mu.Lock()
	name := n.names[gameID]
	n.mu.Unlock()

	kind, text, ok := n.host.Line(name, e)
	if !ok {
		return nil
	}
	n.emit.Publish(ctx, domain.EventHostLine{GameID: gameID, Kind: kind, Text: text})

	if n.speaker != nil {
		n.speak(ctx, gameID, kind, text)
	}
	return nil
}

// Wait blocks until in-flight synthesis has finished.
func (n *Narrator) Wait() {
	n.wg.Wait()
}

func (n *Narrator) remember(ctx context.Context, gameID, playerID string) {
	if n.players == nil {
		return
	}
	p, err := n.players.GetPlayer(ctx, playerID)
	if err != nil {
		slog.WarnContext(ctx, "narration: player lookup failed", "player_id", playerID, "error", err)
		return
	}
	n.mu.Lock()
	n.names[gameID] = p.FirstName
	n.mu.Unlock()
}

func (n *Narrator) speak(parent context.Context, gameID, kind, text string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), speechTimeout)

	n.mu.Lock()
	if prev, ok := n.speaking[gameID]; ok {
		prev.cancel()
	}
	n.seq++
	id := n.seq
	n.speaking[gameID] = inflight{id: id, cancel: cancel}
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			cancel()
			n.mu.Lock()
			if cur, ok := n.speaking[gameID]; ok && cur.id == id {
				delete(n.speaking, gameID)
			}
			n.mu.Unlock()
		}()

		url, err := n.speaker.Say(ctx, text)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			slog.WarnContext(ctx, "narration: speech failed", "game_id", gameID, "error", err)
			return
		}
		n.emit.Publish(ctx, domain.EventHostAudio{GameID: gameID, Kind: kind, Text: text, AudioURL: url})
	}()
}
