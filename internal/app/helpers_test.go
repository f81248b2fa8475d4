package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
	"millionaire-service/internal/infra/memory"
	"millionaire-service/internal/infra/store"
	"millionaire-service/internal/infra/store/migrations"
	"millionaire-service/internal/questions"
)

type testEnv struct {
	bus         *event.Bus
	store       *store.Store
	sessions    *memory.SessionStore
	players     *app.PlayerService
	games       *app.GameService
	leaderboard *app.LeaderboardService
	prizes      *app.PrizeService
	admin       *app.AdminService
	answers     map[string]string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, store.Options{SQLitePath: filepath.Join(t.TempDir(), "app.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Run(ctx, db.DB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	bank := questions.DefaultBank()
	answers := make(map[string]string, len(bank))
	for _, q := range bank {
		answers[q.ID] = q.CorrectAnswer
	}

	bus := event.NewBus()
	t.Cleanup(bus.Stop)

	sessions := memory.NewSessionStore()
	feed := app.NewFeed()
	feed.Register(bus)

	leaderboard := app.NewLeaderboardService(db, nil, bus)
	leaderboard.Register(bus)
	app.NewRecorder(db, db, leaderboard).Register(bus)

	source := questions.NewPool(memory.NewStaticBankLoader(bank), nil, game.NewRandom(7))
	cfg := game.Config{QuestionTime: time.Minute, SourceTimeout: time.Second, RevealDelay: 0}
	games := app.NewGameService(sessions, db, source, feed, cfg, game.Deps{Emitter: bus})

	return &testEnv{
		bus:         bus,
		store:       db,
		sessions:    sessions,
		players:     app.NewPlayerService(db),
		games:       games,
		leaderboard: leaderboard,
		prizes:      app.NewPrizeService(db, db, game.NewRandom(3)),
		admin:       app.NewAdminService(db, games),
		answers:     answers,
	}
}

func (e *testEnv) register(t *testing.T, email string) domain.Player {
	t.Helper()
	p, err := e.players.Register(context.Background(), domain.Registration{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Company:   "Analytical Engines",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return p
}

func (e *testEnv) correct(snap game.Snapshot) string {
	if snap.Question == nil {
		return ""
	}
	if a, ok := e.answers[snap.Question.ID]; ok {
		return a
	}
	return game.FallbackQuestion(snap.Level).CorrectAnswer
}

func (e *testEnv) wrong(snap game.Snapshot) string {
	right := e.correct(snap)
	for _, opt := range snap.Question.Options {
		if opt != right {
			return opt
		}
	}
	return ""
}

func (e *testEnv) act(t *testing.T, gameID string, a game.Action) game.Snapshot {
	t.Helper()
	snap, applied, err := e.games.Act(context.Background(), gameID, a)
	if err != nil {
		t.Fatalf("act %s: %v", a.Type, err)
	}
	if !applied {
		t.Fatalf("action %s was not applied in phase %s", a.Type, snap.Phase)
	}
	return snap
}

func (e *testEnv) answer(t *testing.T, gameID, answer string) game.Snapshot {
	t.Helper()
	e.act(t, gameID, game.Action{Type: game.ActionSelect, Answer: answer})
	e.act(t, gameID, game.Action{Type: game.ActionLock})
	return e.act(t, gameID, game.Action{Type: game.ActionConfirm})
}

// climb answers correctly until the game reaches level.
func (e *testEnv) climb(t *testing.T, snap game.Snapshot, level int) game.Snapshot {
	t.Helper()
	for snap.Level < level {
		snap = e.answer(t, snap.GameID, e.correct(snap))
	}
	return snap
}

// drain waits for every queued event to be handled.
func (e *testEnv) drain() {
	e.bus.Stop()
}
