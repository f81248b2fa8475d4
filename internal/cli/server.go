package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
	"millionaire-service/internal/infra/memory"
	"millionaire-service/internal/infra/openai"
	pgloader "millionaire-service/internal/infra/postgres"
	redisinfra "millionaire-service/internal/infra/redis"
	"millionaire-service/internal/infra/store"
	"millionaire-service/internal/infra/store/migrations"
	"millionaire-service/internal/narration"
	"millionaire-service/internal/questions"
	"millionaire-service/internal/telemetry"
	transport "millionaire-service/internal/transport/http"
)

const (
	defaultPort        = "8080"
	defaultRedisPrefix = "millionaire"
	reapInterval       = time.Minute
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migrations.Run(ctx, db.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := seedQuestions(ctx, db); err != nil {
		return err
	}

	var redisClient redis.UniversalClient
	if cfg.Redis.Addr != "" {
		redisClient, err = connectRedis(ctx, cfg)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
	}
	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	var loader questions.Bank = db
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		loader = pgloader.NewQuestionLoader(pool)
	}

	bankTTL := config.Duration(cfg.Questions.TTL, 10*time.Minute)
	var (
		bank  questions.Bank
		usage questions.Usages
	)
	if redisClient != nil {
		cached := redisinfra.NewQuestionBank(redisClient, loader, prefix, bankTTL)
		bank, usage = cached, questions.Usages{cached, db}
	} else {
		cached := memory.NewQuestionBank(loader, bankTTL)
		bank, usage = cached, questions.Usages{cached, db}
	}

	now := time.Now().UnixNano()
	picker := questions.NewPool(bank, usage, game.NewRandom(now))
	var source game.Source = picker

	ai := openai.NewClient(openai.Config{
		APIKey:   cfg.OpenAI.APIKey,
		BaseURL:  cfg.OpenAI.BaseURL,
		Model:    cfg.OpenAI.Model,
		TTSModel: cfg.OpenAI.TTSModel,
		Voice:    cfg.OpenAI.Voice,
		Timeout:  config.Duration(cfg.OpenAI.Timeout, 0),
	})
	if cfg.Questions.Generate {
		if ai.Configured() {
			source = questions.Chain{questions.NewGenerated(ai, db), picker}
		} else {
			slog.WarnContext(ctx, "question generation enabled without an openai api key; using the bank only")
		}
	}

	bus := event.NewBus()

	var sessions app.SessionRepository = memory.NewSessionStore()
	var (
		boards    app.LeaderboardRepository = db
		announcer app.Announcer
		notifier  *redisinfra.Notifier
	)
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, prefix, config.Duration(cfg.Redis.TTL, 2*time.Hour))
		boards = redisinfra.NewLeaderboard(redisClient, prefix)
		notifier = redisinfra.NewNotifier(redisClient, prefix)
		announcer = notifier
	}

	feed := app.NewFeed()
	feed.Register(bus)

	leaderboard := app.NewLeaderboardService(boards, announcer, bus)
	leaderboard.Register(bus)
	app.NewRecorder(db, db, leaderboard).Register(bus)

	gameCfg := game.Config{
		QuestionTime:  config.Duration(cfg.Game.QuestionTime, 60*time.Second),
		SourceTimeout: config.Duration(cfg.Game.QuestionTimeout, 5*time.Second),
		RevealDelay:   config.Duration(cfg.Game.RevealDelay, 3*time.Second),
	}
	games := app.NewGameService(sessions, db, source, feed, gameCfg, game.Deps{Emitter: bus})
	players := app.NewPlayerService(db)

	var speaker *narration.Speaker
	if ai.Configured() && cfg.Audio.Dir != "" {
		speaker, err = narration.NewSpeaker(ai, cfg.Audio.Dir, "/audio/")
		if err != nil {
			return err
		}
	}
	narrator := narration.NewNarrator(narration.NewHost(game.NewRandom(now+1)), db, speaker, bus)
	narrator.Register(bus)
	defer func() {
		bus.Stop()
		narrator.Wait()
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := telemetry.NewMetrics(reg, games.ActiveGames)
	if err != nil {
		return err
	}
	metrics.Register(bus)

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	reaper := app.NewReaper(sessions,
		config.Duration(cfg.Game.IdleTimeout, 30*time.Minute),
		config.Duration(cfg.Game.Retention, 10*time.Minute))
	go reaper.Run(bgCtx, reapInterval)

	if notifier != nil {
		go func() {
			err := notifier.Listen(bgCtx, func(ctx context.Context, n redisinfra.Notification) {
				if err := leaderboard.Refresh(ctx, n.Period); err != nil {
					slog.WarnContext(ctx, "leaderboard refresh failed", "period", n.Period, "error", err)
				}
			})
			if err != nil {
				slog.ErrorContext(bgCtx, "leaderboard notifications stopped", "error", err)
			}
		}()
	}

	audioDir := ""
	if speaker != nil {
		audioDir = speaker.Dir()
	}
	router := transport.NewRouter(transport.RouterConfig{
		API: transport.NewAPI(transport.APIConfig{
			Players:           players,
			Games:             games,
			Leaderboard:       leaderboard,
			Prizes:            app.NewPrizeService(db, db, game.NewRandom(now+2)),
			Admin:             app.NewAdminService(db, games),
			AdminPasswordHash: cfg.Admin.PasswordHash,
			BaseURL:           cfg.Server.BaseURL,
		}),
		WS:       transport.NewWSHandler(games, leaderboard),
		Gatherer: reg,
		AudioDir: audioDir,
		Profile:  opts.profile,
	})

	port := opts.port
	if port == "" {
		port = cfg.Server.Port
	}
	if port == "" {
		port = defaultPort
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "starting millionaire service", "port", port, "redis", redisClient != nil, "generate", cfg.Questions.Generate)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down server...")
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func connectRedis(ctx context.Context, cfg config.Config) (redis.UniversalClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.Redis.Addr},
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := telemetry.MonitorRedis(client); err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// seedQuestions loads the built-in bank into an empty database.
func seedQuestions(ctx context.Context, db *store.Store) error {
	counts, err := db.CountQuestions(ctx)
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		return nil
	}
	n, err := db.ImportQuestions(ctx, questions.DefaultBank())
	if err != nil {
		return fmt.Errorf("seed question bank: %w", err)
	}
	slog.InfoContext(ctx, "question bank seeded", "count", n)
	return nil
}
