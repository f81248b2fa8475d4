package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
)

type PlayerReader interface {
	GetPlayer(ctx context.Context, id string) (domain.Player, error)
}

// GameService contains the game use cases: start, act, observe.
type GameService struct {
	sessions SessionRepository
	players  PlayerReader
	source   game.Source
	feed     *Feed
	cfg      game.Config
	deps     game.Deps

	startMu sync.Mutex
}

func NewGameService(sessions SessionRepository, players PlayerReader, source game.Source, feed *Feed, cfg game.Config, deps game.Deps) *GameService {
	if feed == nil {
		feed = NewFeed()
	}
	return &GameService{sessions: sessions, players: players, source: source, feed: feed, cfg: cfg, deps: deps}
}

// Start creates a game for the player and presents the first question. A player who already has
// a game in progress gets that game back; resumed reports which happened.
func (s *GameService) Start(ctx context.Context, playerID string) (snap game.Snapshot, resumed bool, err error) {
	if _, err := s.players.GetPlayer(ctx, playerID); err != nil {
		return game.Snapshot{}, false, err
	}

	s.startMu.Lock()
	if existing, ok := s.sessions.ActiveFor(playerID); ok {
		s.startMu.Unlock()
		return existing.Snapshot(), true, nil
	}
	session := game.NewSession(newID(), playerID, s.cfg, s.deps)
	s.sessions.Put(session)
	s.startMu.Unlock()

	session.Start(ctx)
	session.LoadQuestion(ctx, s.source)
	s.touch(ctx, session)

	slog.InfoContext(ctx, "game started", "game_id", session.ID(), "player_id", playerID)
	return session.Snapshot(), false, nil
}

// Act applies a player action. The returned bool is false when the action did not apply in the
// current phase; that is not an error.
func (s *GameService) Act(ctx context.Context, gameID string, action game.Action) (game.Snapshot, bool, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return game.Snapshot{}, false, domain.ErrGameNotFound
	}

	applied, err := session.Apply(ctx, action)
	if err != nil {
		return game.Snapshot{}, false, err
	}
	if applied && session.Phase() == game.PhaseAwaitingQuestion {
		session.LoadQuestion(ctx, s.source)
	}
	if applied {
		s.touch(ctx, session)
	}
	return session.Snapshot(), applied, nil
}

func (s *GameService) Snapshot(_ context.Context, gameID string) (game.Snapshot, error) {
	session, ok := s.sessions.Get(gameID)
	if !ok {
		return game.Snapshot{}, domain.ErrGameNotFound
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives the game's events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, gameID string) (<-chan event.Event, func(), error) {
	if _, ok := s.sessions.Get(gameID); !ok {
		return nil, nil, domain.ErrGameNotFound
	}
	ch, cancel := s.feed.Subscribe(gameID)
	return ch, cancel, nil
}

// ActiveGames counts games still being played.
func (s *GameService) ActiveGames() int {
	n := 0
	for _, session := range s.sessions.All() {
		if !session.Terminal() {
			n++
		}
	}
	return n
}

func (s *GameService) touch(ctx context.Context, session *game.Session) {
	t, ok := s.sessions.(sessionToucher)
	if !ok {
		return
	}
	if err := t.Touch(ctx, session); err != nil {
		slog.WarnContext(ctx, "session touch failed", "game_id", session.ID(), "error", err)
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
