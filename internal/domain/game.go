package domain

import "time"

// GameStatus is the persisted outcome of a game.
type GameStatus string

const (
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusCompleted  GameStatus = "COMPLETED"
	StatusWon        GameStatus = "WON"
	StatusWalkedAway GameStatus = "WALKED_AWAY"
)

// Terminal reports whether no further transitions are possible.
func (s GameStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusWon || s == StatusWalkedAway
}

// Lifeline identifies one of the three one-shot aids.
type Lifeline string

const (
	LifelineFiftyFifty   Lifeline = "50-50"
	LifelinePhoneAFriend Lifeline = "phone"
	LifelineAskAudience  Lifeline = "audience"
)

// Valid reports whether l names a known lifeline.
func (l Lifeline) Valid() bool {
	switch l {
	case LifelineFiftyFifty, LifelinePhoneAFriend, LifelineAskAudience:
		return true
	}
	return false
}

// Lifelines holds availability flags. A flag only ever goes from true to false.
type Lifelines struct {
	FiftyFifty   bool `json:"fiftyFifty"`
	PhoneAFriend bool `json:"phoneAFriend"`
	AskAudience  bool `json:"askAudience"`
}

// AllLifelines is the set a new session starts with.
func AllLifelines() Lifelines {
	return Lifelines{FiftyFifty: true, PhoneAFriend: true, AskAudience: true}
}

// Available reports whether kind can still be used.
func (l Lifelines) Available(kind Lifeline) bool {
	switch kind {
	case LifelineFiftyFifty:
		return l.FiftyFifty
	case LifelinePhoneAFriend:
		return l.PhoneAFriend
	case LifelineAskAudience:
		return l.AskAudience
	}
	return false
}

// Consume clears the flag for kind and reports whether it was set.
func (l *Lifelines) Consume(kind Lifeline) bool {
	if !l.Available(kind) {
		return false
	}
	switch kind {
	case LifelineFiftyFifty:
		l.FiftyFifty = false
	case LifelinePhoneAFriend:
		l.PhoneAFriend = false
	case LifelineAskAudience:
		l.AskAudience = false
	}
	return true
}

// AudienceShare is one bar of the audience poll.
type AudienceShare struct {
	Option  string `json:"option"`
	Percent int    `json:"percent"`
}

// QuestionResult is the per-question record handed to persistence.
type QuestionResult struct {
	GameID         string        `json:"gameId"`
	QuestionNumber int           `json:"questionNumber"`
	QuestionID     string        `json:"questionId"`
	Prompt         string        `json:"question"`
	Options        []string      `json:"options"`
	CorrectAnswer  string        `json:"correctAnswer"`
	SelectedAnswer string        `json:"selectedAnswer"`
	Correct        bool          `json:"isCorrect"`
	TimedOut       bool          `json:"timedOut"`
	TimeSpent      time.Duration `json:"timeSpent"`
	Difficulty     Difficulty    `json:"difficulty"`
	Category       string        `json:"category"`
	Lifelines      []Lifeline    `json:"lifelinesUsed"`
	AnsweredAt     time.Time     `json:"answeredAt"`
}

// GameRecord is the final outcome handed to persistence exactly once per game.
type GameRecord struct {
	GameID            string     `json:"gameId"`
	PlayerID          string     `json:"playerId"`
	FinalScore        int        `json:"finalScore"`
	QuestionsAnswered int        `json:"questionsAnswered"`
	CorrectAnswers    int        `json:"correctAnswers"`
	PrizeLevelLabel   string     `json:"prizeLevel"`
	LifelinesUsed     []string   `json:"lifelinesUsed"`
	Status            GameStatus `json:"status"`
	StartedAt         time.Time  `json:"startedAt"`
	EndedAt           time.Time  `json:"endedAt"`
}
