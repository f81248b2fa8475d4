package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
	pgloader "millionaire-service/internal/infra/postgres"
	infraredis "millionaire-service/internal/infra/redis"
	"millionaire-service/internal/infra/store"
	"millionaire-service/internal/infra/store/migrations"
	"millionaire-service/internal/questions"
)

func TestWalkAwayEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db, err := store.Open(ctx, store.Options{PostgresURL: pgURL})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()
	if err := migrations.Run(ctx, db.DB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	bank := questions.DefaultBank()
	if _, err := db.ImportQuestions(ctx, bank); err != nil {
		t.Fatalf("import: %v", err)
	}
	answers := make(map[string]string, len(bank))
	for _, q := range bank {
		answers[q.ID] = q.CorrectAnswer
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	loader := pgloader.NewQuestionLoader(pool)
	easy, err := loader.LoadBank(ctx, domain.DifficultyEasy)
	if err != nil || len(easy) == 0 {
		t.Fatalf("expected easy questions from postgres, got %d (%v)", len(easy), err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	cached := infraredis.NewQuestionBank(redisClient, loader, "it", 5*time.Minute)
	source := questions.NewPool(cached, questions.Usages{cached, loader}, game.NewRandom(1))
	sessions := infraredis.NewSessionStore(redisClient, "it", 5*time.Minute)
	boards := infraredis.NewLeaderboard(redisClient, "it")
	notifier := infraredis.NewNotifier(redisClient, "it")

	bus := event.NewBus()
	feed := app.NewFeed()
	feed.Register(bus)
	leaderboard := app.NewLeaderboardService(boards, notifier, bus)
	leaderboard.Register(bus)
	app.NewRecorder(db, db, leaderboard).Register(bus)

	listenCtx, stopListening := context.WithCancel(ctx)
	defer stopListening()
	go func() {
		_ = notifier.Listen(listenCtx, func(ctx context.Context, n infraredis.Notification) {
			_ = leaderboard.Refresh(ctx, n.Period)
		})
	}()
	waitForSubscriber(t, ctx, redisClient, "it:*")
	updates, cancelUpdates := leaderboard.Subscribe(domain.PeriodAllTime)
	defer cancelUpdates()

	players := app.NewPlayerService(db)
	games := app.NewGameService(sessions, db, source, feed, game.DefaultConfig(), game.Deps{Emitter: bus})

	player, err := players.Register(ctx, domain.Registration{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Company: "Bletchley"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	snap, _, err := games.Start(ctx, player.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Fallback {
		t.Fatalf("expected a question from the bank, got the fallback")
	}

	for _, a := range []game.Action{
		{Type: game.ActionSelect, Answer: answers[snap.Question.ID]},
		{Type: game.ActionLock},
		{Type: game.ActionConfirm},
		{Type: game.ActionWalkAway},
	} {
		if snap, _, err = games.Act(ctx, snap.GameID, a); err != nil {
			t.Fatalf("%s: %v", a.Type, err)
		}
	}
	if snap.Status != domain.StatusWalkedAway || snap.FinalScore != 100 {
		t.Fatalf("expected walk away with 100, got %s %d", snap.Status, snap.FinalScore)
	}

	select {
	case board := <-updates:
		if len(board.Entries) != 1 || board.Entries[0].PlayerName != "Alan Turing" {
			t.Fatalf("unexpected board: %+v", board.Entries)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("no leaderboard update through redis pub/sub")
	}

	bus.Stop()
	rec, err := db.GetGame(ctx, snap.GameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if rec.Status != domain.StatusWalkedAway || rec.FinalScore != 100 || rec.QuestionsAnswered != 1 {
		t.Fatalf("unexpected stored game: %+v", rec)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "millionaire", "POSTGRES_PASSWORD": "millionaire", "POSTGRES_DB": "millionaire"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://millionaire:millionaire@%s:%s/millionaire?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func waitForSubscriber(t *testing.T, ctx context.Context, client *goredis.Client, pattern string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if channels, err := client.PubSubChannels(ctx, pattern).Result(); err == nil && len(channels) > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no subscriber on %s", pattern)
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
