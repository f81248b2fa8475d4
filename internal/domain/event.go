package domain

import "time"

const (
	EventNameGameStarted        = "game.started"
	EventNameQuestionLoaded     = "game.question_loaded"
	EventNameAnswerSelected     = "game.answer_selected"
	EventNameAnswerLocked       = "game.answer_locked"
	EventNameAnswerRetracted    = "game.answer_retracted"
	EventNameResolved           = "game.resolved"
	EventNameLifelineUsed       = "game.lifeline_used"
	EventNameAudienceRevealed   = "game.audience_revealed"
	EventNameTimeUp             = "game.time_up"
	EventNameWalkAway           = "game.walk_away"
	EventNameGameEnded          = "game.ended"
	EventNameHostLine           = "host.line"
	EventNameHostAudio          = "host.audio"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

// GameEventNames is every event emitted by a running session, in no particular order.
var GameEventNames = []string{
	EventNameGameStarted,
	EventNameQuestionLoaded,
	EventNameAnswerSelected,
	EventNameAnswerLocked,
	EventNameAnswerRetracted,
	EventNameResolved,
	EventNameLifelineUsed,
	EventNameAudienceRevealed,
	EventNameTimeUp,
	EventNameWalkAway,
	EventNameGameEnded,
}

type EventGameStarted struct {
	GameID    string
	PlayerID  string
	StartedAt time.Time
}

func (EventGameStarted) Name() string        { return EventNameGameStarted }
func (e EventGameStarted) SessionID() string { return e.GameID }

type EventQuestionLoaded struct {
	GameID    string
	Level     int
	Amount    int
	Safe      bool
	Question  Question
	Fallback  bool
	TimeLimit time.Duration
}

func (EventQuestionLoaded) Name() string        { return EventNameQuestionLoaded }
func (e EventQuestionLoaded) SessionID() string { return e.GameID }

type EventAnswerSelected struct {
	GameID string
	Level  int
	Answer string
}

func (EventAnswerSelected) Name() string        { return EventNameAnswerSelected }
func (e EventAnswerSelected) SessionID() string { return e.GameID }

type EventAnswerLocked struct {
	GameID    string
	Level     int
	Answer    string
	Remaining time.Duration
}

func (EventAnswerLocked) Name() string        { return EventNameAnswerLocked }
func (e EventAnswerLocked) SessionID() string { return e.GameID }

type EventAnswerRetracted struct {
	GameID    string
	Level     int
	Remaining time.Duration
}

func (EventAnswerRetracted) Name() string        { return EventNameAnswerRetracted }
func (e EventAnswerRetracted) SessionID() string { return e.GameID }

// EventResolved carries the outcome of a confirm or a time-up.
type EventResolved struct {
	GameID        string
	Level         int
	Correct       bool
	CorrectAnswer string
	Explanation   string
	Result        QuestionResult
}

func (EventResolved) Name() string        { return EventNameResolved }
func (e EventResolved) SessionID() string { return e.GameID }

type EventLifelineUsed struct {
	GameID     string
	Level      int
	Kind       Lifeline
	Eliminated []string
	Hint       string
}

func (EventLifelineUsed) Name() string        { return EventNameLifelineUsed }
func (e EventLifelineUsed) SessionID() string { return e.GameID }

type EventAudienceRevealed struct {
	GameID string
	Level  int
	Poll   []AudienceShare
}

func (EventAudienceRevealed) Name() string        { return EventNameAudienceRevealed }
func (e EventAudienceRevealed) SessionID() string { return e.GameID }

type EventTimeUp struct {
	GameID string
	Level  int
}

func (EventTimeUp) Name() string        { return EventNameTimeUp }
func (e EventTimeUp) SessionID() string { return e.GameID }

type EventWalkAway struct {
	GameID string
	Level  int
	Amount int
}

func (EventWalkAway) Name() string        { return EventNameWalkAway }
func (e EventWalkAway) SessionID() string { return e.GameID }

type EventGameEnded struct {
	Record GameRecord
}

func (EventGameEnded) Name() string        { return EventNameGameEnded }
func (e EventGameEnded) SessionID() string { return e.Record.GameID }

// EventHostLine is a line of host dialogue produced from a game event.
type EventHostLine struct {
	GameID string
	Kind   string
	Text   string
}

func (EventHostLine) Name() string        { return EventNameHostLine }
func (e EventHostLine) SessionID() string { return e.GameID }

// EventHostAudio follows a host line once its speech is ready.
type EventHostAudio struct {
	GameID   string
	Kind     string
	Text     string
	AudioURL string
}

func (EventHostAudio) Name() string        { return EventNameHostAudio }
func (e EventHostAudio) SessionID() string { return e.GameID }

type EventLeaderboardUpdated struct {
	Leaderboard Leaderboard
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }
