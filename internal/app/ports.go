package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-backed, etc).
type SessionRepository interface {
	Put(session *game.Session)
	Get(gameID string) (*game.Session, bool)
	ActiveFor(playerID string) (*game.Session, bool)
	Delete(gameID string)
	All() []*game.Session
}

// sessionToucher is implemented by stores that track liveness outside the process.
type sessionToucher interface {
	Touch(ctx context.Context, session *game.Session) error
}

type PlayerRepository interface {
	UpsertPlayer(ctx context.Context, p domain.Player) (domain.Player, error)
	GetPlayer(ctx context.Context, id string) (domain.Player, error)
	UpdateLeadScore(ctx context.Context, playerID string, score domain.LeadScore) error
}

// GameRepository is the persistence side of a game's lifecycle.
type GameRepository interface {
	StartGame(ctx context.Context, gameID, playerID string, startedAt time.Time) error
	SaveQuestionResult(ctx context.Context, r domain.QuestionResult) error
	FinishGame(ctx context.Context, rec domain.GameRecord) (bool, error)
	GetGame(ctx context.Context, id string) (domain.GameRecord, error)
}

type LeaderboardRepository interface {
	RecordEntry(ctx context.Context, e domain.LeaderboardEntry) error
	TopEntries(ctx context.Context, period domain.LeaderboardPeriod, now time.Time, limit int) ([]domain.LeaderboardEntry, error)
}

type PrizeRepository interface {
	FindPrize(ctx context.Context, playerID, prizeType string) (domain.Prize, bool, error)
	CreatePrize(ctx context.Context, p domain.Prize) (domain.Prize, error)
}

// StatsRepository backs the admin dashboard.
type StatsRepository interface {
	CountPlayers(ctx context.Context, since time.Time) (int, error)
	CountGames(ctx context.Context, since time.Time) (int, error)
	CountLeads(ctx context.Context) (int, error)
	CountClaimedPrizes(ctx context.Context) (int, error)
	AverageScore(ctx context.Context) (decimal.Decimal, error)
	LeadScoreCounts(ctx context.Context) (map[domain.LeadScore]int, error)
	RecentGames(ctx context.Context, limit int) ([]domain.RecentGame, error)
	Leads(ctx context.Context) ([]domain.Lead, error)
}

// Announcer tells other instances that a leaderboard changed. It reports false when throttled.
type Announcer interface {
	Announce(ctx context.Context, period domain.LeaderboardPeriod, at time.Time) (bool, error)
}
