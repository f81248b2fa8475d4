package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"millionaire-service/internal/game"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions own live timers, so they stay in a local map on the instance that runs them.
//   - Redis marks session liveness and which game a player is in, so other instances and
//     operators can see who is playing.
type SessionStore struct {
	client   redis.UniversalClient
	ttl      time.Duration
	keys     keyspace
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		keys:     newKeyspace(prefix),
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) Put(session *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session

	// best-effort liveness markers
	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.gameKey(session.ID()), session.PlayerID(), s.ttl)
	pipe.Set(ctx, s.playerKey(session.PlayerID()), session.ID(), s.ttl)
	_, _ = pipe.Exec(ctx)
}

func (s *SessionStore) Get(gameID string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[gameID]
	return session, ok
}

// ActiveFor finds the player's running session through the player marker.
func (s *SessionStore) ActiveFor(playerID string) (*game.Session, bool) {
	gameID, err := s.client.Get(context.Background(), s.playerKey(playerID)).Result()
	if err != nil {
		return nil, false
	}
	session, ok := s.Get(gameID)
	if !ok || session.Terminal() {
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[gameID]
	if !ok {
		return
	}
	delete(s.sessions, gameID)

	ctx := context.Background()
	_ = s.client.Del(ctx, s.gameKey(gameID)).Err()
	// Only clear the player marker if it still points at this game.
	if current, err := s.client.Get(ctx, s.playerKey(session.PlayerID())).Result(); err == nil && current == gameID {
		_ = s.client.Del(ctx, s.playerKey(session.PlayerID())).Err()
	}
}

func (s *SessionStore) All() []*game.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*game.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

// Touch extends the liveness markers of a session that is still being played.
func (s *SessionStore) Touch(ctx context.Context, session *game.Session) error {
	pipe := s.client.TxPipeline()
	pipe.Expire(ctx, s.gameKey(session.ID()), s.ttl)
	pipe.Expire(ctx, s.playerKey(session.PlayerID()), s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) gameKey(gameID string) string {
	return s.keys.key("game", gameID)
}

func (s *SessionStore) playerKey(playerID string) string {
	return s.keys.key("player", playerID, "game")
}
