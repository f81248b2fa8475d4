package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
)

type WSHandler struct {
	games       *app.GameService
	leaderboard *app.LeaderboardService
	upgrader    websocket.Upgrader
}

func NewWSHandler(games *app.GameService, leaderboard *app.LeaderboardService) *WSHandler {
	return &WSHandler{
		games:       games,
		leaderboard: leaderboard,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeGame upgrades to a websocket carrying one game: events out, player actions in.
func (h *WSHandler) ServeGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	updates, cancel, err := h.games.Subscribe(ctx, gameID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// the writer goroutine is the only one touching conn for writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.DebugContext(ctx, "ws write error", "game_id", gameID, "error", err)
				return
			}
		}
	}()

	// the current state goes out before any event
	if snap, err := h.games.Snapshot(ctx, gameID); err == nil {
		send <- outboundMessage{Type: "state", Payload: statePayload{Snapshot: snap, Applied: true}}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case e, ok := <-updates:
				if !ok {
					return
				}
				msg, ok := outbound(e)
				if !ok {
					continue
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		action, err := actionFrom(inbound)
		if err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid action payload"}}
			continue
		}
		snap, applied, err := h.games.Act(ctx, gameID, action)
		if err != nil {
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
			continue
		}
		send <- outboundMessage{Type: "state", Payload: statePayload{Snapshot: snap, Applied: applied}}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// ServeLeaderboard pushes the board of ?type= on connect and after every change.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period := domain.ParsePeriod(r.URL.Query().Get("type"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	boards, cancel := h.leaderboard.Subscribe(period)
	defer cancel()

	board, err := h.leaderboard.Get(ctx, period, app.DefaultLeaderboardLimit)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: "leaderboard unavailable"}})
		return
	}
	if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: board}); err != nil {
		return
	}

	// the client never sends anything useful; reading only detects the close
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case board, ok := <-boards:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "leaderboard", Payload: board}); err != nil {
				return
			}
		}
	}
}
