package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"millionaire-service/internal/game"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), "millionaire", time.Minute)
	session := game.NewSession("game-1", "player-1", game.DefaultConfig(), game.Deps{})

	store.Put(session)
	if !mr.Exists("millionaire:game:game-1") {
		t.Fatalf("expected game key to be set")
	}
	if got, _ := mr.Get("millionaire:player:player-1:game"); got != "game-1" {
		t.Fatalf("expected player marker, got %q", got)
	}
	if mr.TTL("millionaire:game:game-1") != time.Minute {
		t.Fatalf("expected ttl on liveness key")
	}
	if active, ok := store.ActiveFor("player-1"); !ok || active != session {
		t.Fatalf("expected active session for player")
	}

	mr.FastForward(30 * time.Second)
	if err := store.Touch(context.Background(), session); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if mr.TTL("millionaire:game:game-1") != time.Minute {
		t.Fatalf("expected ttl refreshed")
	}

	store.Delete("game-1")
	if mr.Exists("millionaire:game:game-1") || mr.Exists("millionaire:player:player-1:game") {
		t.Fatalf("expected redis keys to be removed")
	}
	if _, ok := store.Get("game-1"); ok {
		t.Fatalf("expected session removed locally")
	}
}

func TestSessionStoreKeepsNewerPlayerMarker(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), "", time.Minute)
	store.Put(game.NewSession("game-1", "player-1", game.DefaultConfig(), game.Deps{}))
	store.Put(game.NewSession("game-2", "player-1", game.DefaultConfig(), game.Deps{}))

	store.Delete("game-1")
	if got, _ := mr.Get("millionaire:player:player-1:game"); got != "game-2" {
		t.Fatalf("player marker should still point at game-2, got %q", got)
	}
}
