package app

import (
	"context"
	"log/slog"
	"time"
)

// Reaper drops finished sessions from memory and abandons sessions nobody is playing.
type Reaper struct {
	sessions  SessionRepository
	idle      time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewReaper abandons sessions idle for longer than idle. Finished sessions stay readable for
// retention so clients can fetch the final snapshot.
func NewReaper(sessions SessionRepository, idle, retention time.Duration) *Reaper {
	return &Reaper{sessions: sessions, idle: idle, retention: retention, now: time.Now}
}

// Sweep runs one pass and reports how many sessions were abandoned and dropped.
func (r *Reaper) Sweep(ctx context.Context) (abandoned, dropped int) {
	now := r.now()
	for _, session := range r.sessions.All() {
		idleFor := now.Sub(session.LastActivity())
		if !session.Terminal() {
			if r.idle <= 0 || idleFor < r.idle {
				continue
			}
			if session.Abandon(ctx) {
				abandoned++
				slog.InfoContext(ctx, "idle game abandoned", "game_id", session.ID(), "idle", idleFor.String())
			}
			continue
		}
		if record, ok := session.Record(); ok && now.Sub(record.EndedAt) >= r.retention {
			r.sessions.Delete(session.ID())
			dropped++
		}
	}
	return abandoned, dropped
}

// Run sweeps every interval until ctx is done.
func (r *Reaper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
