package game

import (
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/ladder"
)

// Snapshot is the player-facing view of a session. It never carries the correct answer while the
// question is open.
type Snapshot struct {
	GameID            string                 `json:"gameId"`
	PlayerID          string                 `json:"playerId"`
	Phase             Phase                  `json:"phase"`
	Status            domain.GameStatus      `json:"status"`
	Level             int                    `json:"level"`
	Amount            int                    `json:"amount"`
	Safe              bool                   `json:"safe"`
	Guaranteed        int                    `json:"guaranteed"`
	Banked            int                    `json:"banked"`
	Question          *domain.PublicQuestion `json:"question,omitempty"`
	Fallback          bool                   `json:"fallback,omitempty"`
	Eliminated        []string               `json:"eliminated"`
	Selected          string                 `json:"selected,omitempty"`
	Locked            string                 `json:"locked,omitempty"`
	CanRetract        bool                   `json:"canRetract"`
	CanWalkAway       bool                   `json:"canWalkAway"`
	Lifelines         domain.Lifelines       `json:"lifelines"`
	Poll              []domain.AudienceShare `json:"audiencePoll,omitempty"`
	Hint              string                 `json:"phoneHint,omitempty"`
	RemainingSeconds  int                    `json:"remainingSeconds"`
	Paused            bool                   `json:"paused"`
	QuestionsAnswered int                    `json:"questionsAnswered"`
	CorrectAnswers    int                    `json:"correctAnswers"`
	FinalScore        int                    `json:"finalScore"`
	Record            *domain.GameRecord     `json:"record,omitempty"`
	StartedAt         time.Time              `json:"startedAt"`
	EndedAt           *time.Time             `json:"endedAt,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		GameID:            s.id,
		PlayerID:          s.playerID,
		Phase:             s.phase,
		Status:            s.status,
		Level:             s.level,
		Amount:            ladder.AmountFor(s.level),
		Safe:              ladder.IsSafe(s.level),
		Guaranteed:        ladder.FloorAmount(s.level),
		Banked:            ladder.BankedAmount(s.level),
		Fallback:          s.fallback,
		Eliminated:        append([]string{}, s.eliminated...),
		Selected:          s.selected,
		Locked:            s.locked,
		CanRetract:        s.phase == PhaseAnswerLocked && !s.retracted,
		CanWalkAway:       s.phase.answering() && s.level > ladder.FirstLevel,
		Lifelines:         s.lifelines,
		Poll:              append([]domain.AudienceShare(nil), s.poll...),
		Hint:              s.hint,
		RemainingSeconds:  int((s.countdown.Remaining() + time.Second - 1) / time.Second),
		Paused:            s.countdown.Paused(),
		QuestionsAnswered: s.questionsAnswered,
		CorrectAnswers:    s.correctAnswers,
		FinalScore:        s.finalScore,
		StartedAt:         s.startedAt,
	}
	if s.question.ID != "" && s.phase != PhaseAwaitingQuestion {
		pub := s.question.Public()
		snap.Question = &pub
	}
	if s.record != nil {
		rec := *s.record
		snap.Record = &rec
		ended := s.endedAt
		snap.EndedAt = &ended
	}
	return snap
}
