package app

import (
	"context"
	"log/slog"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
)

// Recorder persists game progress from session events. Failures are logged and never reach the
// player; a game's outcome is written at most once.
type Recorder struct {
	games       GameRepository
	players     PlayerRepository
	leaderboard *LeaderboardService
}

func NewRecorder(games GameRepository, players PlayerRepository, leaderboard *LeaderboardService) *Recorder {
	return &Recorder{games: games, players: players, leaderboard: leaderboard}
}

func (r *Recorder) Register(bus *event.Bus) {
	bus.SubscribeAll([]string{
		domain.EventNameGameStarted,
		domain.EventNameResolved,
		domain.EventNameGameEnded,
	}, r.Handle)
}

func (r *Recorder) Handle(ctx context.Context, e event.Event) error {
	switch ev := e.(type) {
	case domain.EventGameStarted:
		if err := r.games.StartGame(ctx, ev.GameID, ev.PlayerID, ev.StartedAt); err != nil {
			slog.ErrorContext(ctx, "record game start", "game_id", ev.GameID, "error", err)
		}
	case domain.EventResolved:
		if err := r.games.SaveQuestionResult(ctx, ev.Result); err != nil {
			slog.ErrorContext(ctx, "record question result", "game_id", ev.GameID, "question", ev.Level, "error", err)
		}
	case domain.EventGameEnded:
		r.finish(ctx, ev.Record)
	}
	return nil
}

func (r *Recorder) finish(ctx context.Context, rec domain.GameRecord) {
	applied, err := r.games.FinishGame(ctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "record game end", "game_id", rec.GameID, "error", err)
		return
	}
	if !applied {
		slog.WarnContext(ctx, "game already recorded", "game_id", rec.GameID)
		return
	}

	player, err := r.players.GetPlayer(ctx, rec.PlayerID)
	if err != nil {
		slog.ErrorContext(ctx, "load player for leaderboard", "player_id", rec.PlayerID, "error", err)
		return
	}
	if err := r.players.UpdateLeadScore(ctx, rec.PlayerID, domain.LeadScoreFor(rec.CorrectAnswers)); err != nil {
		slog.ErrorContext(ctx, "update lead score", "player_id", rec.PlayerID, "error", err)
	}

	if r.leaderboard == nil {
		return
	}
	entry := domain.LeaderboardEntry{
		GameID:            rec.GameID,
		PlayerName:        player.DisplayName(),
		Company:           player.Company,
		Score:             rec.FinalScore,
		PrizeLevel:        rec.PrizeLevelLabel,
		QuestionsAnswered: rec.QuestionsAnswered,
		CorrectAnswers:    rec.CorrectAnswers,
		Status:            rec.Status,
		Won:               rec.Status == domain.StatusWon,
		Date:              rec.EndedAt,
	}
	if err := r.leaderboard.Record(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "record leaderboard entry", "game_id", rec.GameID, "error", err)
	}
	slog.InfoContext(ctx, "game recorded", "game_id", rec.GameID, "status", rec.Status, "score", rec.FinalScore)
}
