package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

func TestWebSocketGameFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	player, err := s.players.Register(ctx, domain.Registration{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	snap, _, err := s.games.Start(ctx, player.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	conn := dial(t, s.URL, "/ws?gameId="+snap.GameID)

	// Expect the current state first.
	typ, payload := readNext(t, conn, "state")
	if payload["gameId"] != snap.GameID {
		t.Fatalf("expected state of %s, got %v (%s)", snap.GameID, payload["gameId"], typ)
	}

	send(t, conn, map[string]any{"type": "lifeline", "payload": map[string]any{"lifeline": "50-50"}})
	lifelineSeen, stateSeen := false, false
	for i := 0; i < 4 && !(lifelineSeen && stateSeen); i++ {
		typ, payload := readNext(t, conn, "")
		switch typ {
		case "lifeline":
			lifelineSeen = true
			if eliminated, _ := payload["eliminated"].([]any); len(eliminated) != 2 {
				t.Fatalf("expected two eliminated options, got %v", payload["eliminated"])
			}
		case "state":
			stateSeen = true
			if payload["applied"] != true {
				t.Fatalf("expected lifeline applied, got %v", payload)
			}
		}
	}
	if !lifelineSeen || !stateSeen {
		t.Fatalf("expected lifeline and state, got lifeline=%v state=%v", lifelineSeen, stateSeen)
	}

	answer := s.correct(snap.Question, snap.Level)
	send(t, conn, map[string]any{"type": string(game.ActionSelect), "payload": map[string]any{"answer": answer}})
	send(t, conn, map[string]any{"type": string(game.ActionLock)})
	if !waitFor(t, conn, "answerLocked", 8) {
		t.Fatalf("expected answerLocked")
	}

	send(t, conn, map[string]any{"type": "teleport"})
	if !waitFor(t, conn, "error", 8) {
		t.Fatalf("expected error for unknown action")
	}
}

func TestWebSocketUnknownGame(t *testing.T) {
	s := newTestServer(t)
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?gameId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp)
	}
}

func TestWebSocketLeaderboard(t *testing.T) {
	s := newTestServer(t)
	conn := dial(t, s.URL, "/ws/leaderboard?type=weekly")
	_, payload := readNext(t, conn, "leaderboard")
	if payload["type"] != string(domain.PeriodWeekly) {
		t.Fatalf("expected weekly board, got %v", payload["type"])
	}
}

func dial(t *testing.T, base, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(base, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func waitFor(t *testing.T, conn *websocket.Conn, typ string, max int) bool {
	t.Helper()
	for i := 0; i < max; i++ {
		if got, _ := readNext(t, conn, ""); got == typ {
			return true
		}
	}
	return false
}

func readNext(t *testing.T, conn *websocket.Conn, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
