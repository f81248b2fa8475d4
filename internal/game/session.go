package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/ladder"
)

// Phase is where a session sits in the question cycle. Resolution is instantaneous, so a session
// goes straight from AnswerLocked (or a time-up) to AwaitingQuestion or Terminal.
type Phase string

const (
	PhaseAwaitingQuestion Phase = "awaiting_question"
	PhaseQuestionActive   Phase = "question_active"
	PhaseAnswerSelected   Phase = "answer_selected"
	PhaseAnswerLocked     Phase = "answer_locked"
	PhaseTerminal         Phase = "terminal"
)

// answering reports whether the player is still deciding: the only phases where lifelines,
// walk-away and time-up apply.
func (p Phase) answering() bool {
	return p == PhaseQuestionActive || p == PhaseAnswerSelected
}

// Source supplies questions for a level, skipping ids in exclude.
type Source interface {
	Question(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error)
}

// Emitter receives session events in transition order. Publish must not block.
type Emitter interface {
	Publish(ctx context.Context, e event.Event)
}

type Config struct {
	QuestionTime  time.Duration
	SourceTimeout time.Duration
	RevealDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		QuestionTime:  60 * time.Second,
		SourceTimeout: 5 * time.Second,
		RevealDelay:   3 * time.Second,
	}
}

// Deps are the collaborators a session uses. Nil fields get production defaults.
type Deps struct {
	Clock   Clock
	Random  Random
	Emitter Emitter
}

type nopEmitter struct{}

func (nopEmitter) Publish(context.Context, event.Event) {}

// Session is one player's run up the ladder. All methods are safe for concurrent use; player
// actions that do not apply in the current phase are ignored and reported as false.
type Session struct {
	mu sync.Mutex

	id       string
	playerID string
	cfg      Config
	clock    Clock
	rnd      Random
	emit     Emitter

	started   bool
	phase     Phase
	status    domain.GameStatus
	level     int
	lifelines domain.Lifelines
	used      []domain.Lifeline

	question      domain.Question
	fallback      bool
	seen          map[string]struct{}
	eliminated    []string
	selected      string
	locked        string
	retracted     bool
	poll          []domain.AudienceShare
	hint          string
	questionUsed  []domain.Lifeline
	loading       bool
	countdown     *Countdown
	gen           uint64
	revealPending bool

	questionsAnswered int
	correctAnswers    int
	finalScore        int
	record            *domain.GameRecord

	startedAt    time.Time
	endedAt      time.Time
	lastActivity time.Time
}

func NewSession(id, playerID string, cfg Config, deps Deps) *Session {
	if cfg.QuestionTime <= 0 {
		cfg.QuestionTime = DefaultConfig().QuestionTime
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultConfig().SourceTimeout
	}
	if cfg.RevealDelay < 0 {
		cfg.RevealDelay = 0
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Random == nil {
		deps.Random = NewRandom(time.Now().UnixNano())
	}
	if deps.Emitter == nil {
		deps.Emitter = nopEmitter{}
	}

	now := deps.Clock.Now()
	s := &Session{
		id:           id,
		playerID:     playerID,
		cfg:          cfg,
		clock:        deps.Clock,
		rnd:          deps.Random,
		emit:         deps.Emitter,
		phase:        PhaseAwaitingQuestion,
		status:       domain.StatusInProgress,
		level:        ladder.FirstLevel,
		lifelines:    domain.AllLifelines(),
		seen:         make(map[string]struct{}),
		startedAt:    now,
		lastActivity: now,
	}
	s.countdown = NewCountdown(deps.Clock, s.expire)
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) PlayerID() string { return s.playerID }

// Start announces the game. Only the first call has an effect.
func (s *Session) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return false
	}
	s.started = true
	s.emit.Publish(ctx, domain.EventGameStarted{GameID: s.id, PlayerID: s.playerID, StartedAt: s.startedAt})
	return true
}

// LoadQuestion asks src for a question for the current level and presents it. Any failure of src,
// including a timeout or an invalid question, is replaced by the built-in question for the level.
// The source is called without holding the session lock.
func (s *Session) LoadQuestion(ctx context.Context, src Source) bool {
	s.mu.Lock()
	if s.phase != PhaseAwaitingQuestion || s.loading {
		s.mu.Unlock()
		return false
	}
	s.loading = true
	level, gen := s.level, s.gen
	exclude := make(map[string]struct{}, len(s.seen))
	for id := range s.seen {
		exclude[id] = struct{}{}
	}
	s.mu.Unlock()

	q, fallback := s.fetch(ctx, src, level, exclude)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if s.gen != gen || s.phase != PhaseAwaitingQuestion {
		return false
	}

	s.question = q
	s.fallback = fallback
	s.seen[q.ID] = struct{}{}
	s.eliminated = nil
	s.selected = ""
	s.locked = ""
	s.retracted = false
	s.poll = nil
	s.hint = ""
	s.questionUsed = nil
	s.revealPending = false
	s.phase = PhaseQuestionActive
	s.touch()
	s.countdown.Start(s.cfg.QuestionTime)

	s.emit.Publish(ctx, domain.EventQuestionLoaded{
		GameID:    s.id,
		Level:     level,
		Amount:    ladder.AmountFor(level),
		Safe:      ladder.IsSafe(level),
		Question:  q.Clone(),
		Fallback:  fallback,
		TimeLimit: s.cfg.QuestionTime,
	})
	return true
}

type fetchResult struct {
	q   domain.Question
	err error
}

func (s *Session) fetch(ctx context.Context, src Source, level int, exclude map[string]struct{}) (domain.Question, bool) {
	if src == nil {
		return FallbackQuestion(level), true
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SourceTimeout)
	defer cancel()

	ch := make(chan fetchResult, 1)
	go func() {
		q, err := src.Question(ctx, level, exclude)
		ch <- fetchResult{q: q, err: err}
	}()

	var res fetchResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err == nil {
		res.err = res.q.Validate()
	}
	if res.err == nil {
		if _, dup := exclude[res.q.ID]; dup || res.q.ID == "" {
			res.err = fmt.Errorf("%w: repeated or missing id %q", domain.ErrMalformedQuestion, res.q.ID)
		}
	}
	if res.err != nil {
		slog.WarnContext(ctx, "game: question source failed, using fallback",
			"game_id", s.id,
			"level", level,
			"error", res.err,
		)
		return FallbackQuestion(level), true
	}

	q := res.q.Clone()
	q.Difficulty = ladder.DifficultyFor(level)
	return q, false
}

// Select marks answer as the current choice. Eliminated or unknown answers are ignored.
func (s *Session) Select(ctx context.Context, answer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.answering() || !s.question.HasOption(answer) || s.isEliminated(answer) {
		return false
	}
	s.selected = answer
	s.phase = PhaseAnswerSelected
	s.touch()
	s.emit.Publish(ctx, domain.EventAnswerSelected{GameID: s.id, Level: s.level, Answer: answer})
	return true
}

// Lock commits the selected answer pending confirmation and pauses the countdown.
func (s *Session) Lock(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAnswerSelected || s.selected == "" {
		return false
	}
	s.locked = s.selected
	s.phase = PhaseAnswerLocked
	s.countdown.Hold()
	s.touch()
	s.emit.Publish(ctx, domain.EventAnswerLocked{
		GameID:    s.id,
		Level:     s.level,
		Answer:    s.locked,
		Remaining: s.countdown.Remaining(),
	})
	return true
}

// Retract undoes a lock once per question and resumes the countdown where it paused.
func (s *Session) Retract(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAnswerLocked || s.retracted {
		return false
	}
	s.retracted = true
	s.locked = ""
	s.selected = ""
	s.phase = PhaseQuestionActive
	s.countdown.Release()
	s.touch()
	s.emit.Publish(ctx, domain.EventAnswerRetracted{
		GameID:    s.id,
		Level:     s.level,
		Remaining: s.countdown.Remaining(),
	})
	return true
}

// Confirm scores the locked answer.
func (s *Session) Confirm(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAnswerLocked || s.locked == "" {
		return false
	}
	s.touch()
	s.resolve(ctx, s.locked, false)
	return true
}

// TimeUp resolves the question as incorrect. It does nothing once an answer is locked.
func (s *Session) TimeUp(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.timeUpLocked(ctx)
}

func (s *Session) expire(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.countdown.Current(epoch) {
		return
	}
	s.timeUpLocked(context.Background())
}

func (s *Session) timeUpLocked(ctx context.Context) bool {
	if !s.phase.answering() {
		return false
	}
	s.emit.Publish(ctx, domain.EventTimeUp{GameID: s.id, Level: s.level})
	s.resolve(ctx, s.selected, true)
	return true
}

// UseLifeline consumes kind and applies it to the current question. A consumed lifeline can never
// be applied again.
func (s *Session) UseLifeline(ctx context.Context, kind domain.Lifeline) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.answering() || !s.lifelines.Consume(kind) {
		return false
	}
	s.used = append(s.used, kind)
	s.questionUsed = append(s.questionUsed, kind)
	s.touch()

	ev := domain.EventLifelineUsed{GameID: s.id, Level: s.level, Kind: kind}
	switch kind {
	case domain.LifelineFiftyFifty:
		removed := fiftyFifty(s.question, s.eliminated, s.rnd)
		s.eliminated = append(s.eliminated, removed...)
		if s.isEliminated(s.selected) {
			s.selected = ""
			s.phase = PhaseQuestionActive
		}
		ev.Eliminated = append([]string(nil), s.eliminated...)
		s.emit.Publish(ctx, ev)

	case domain.LifelinePhoneAFriend:
		s.hint = phoneHint(s.question, s.rnd)
		ev.Hint = s.hint
		s.emit.Publish(ctx, ev)

	case domain.LifelineAskAudience:
		poll := audiencePoll(s.question, s.eliminated, s.rnd)
		s.emit.Publish(ctx, ev)
		if s.cfg.RevealDelay == 0 {
			s.revealLocked(ctx, poll)
			break
		}
		s.revealPending = true
		s.countdown.Hold()
		gen := s.gen
		s.clock.AfterFunc(s.cfg.RevealDelay, func() { s.reveal(gen, poll) })
	}
	return true
}

func (s *Session) reveal(gen uint64, poll []domain.AudienceShare) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The question was resolved or the game ended while the audience was voting.
	if s.gen != gen || s.phase == PhaseTerminal || !s.revealPending {
		return
	}
	s.revealPending = false
	s.countdown.Release()
	s.revealLocked(context.Background(), poll)
}

func (s *Session) revealLocked(ctx context.Context, poll []domain.AudienceShare) {
	s.poll = poll
	s.emit.Publish(ctx, domain.EventAudienceRevealed{
		GameID: s.id,
		Level:  s.level,
		Poll:   append([]domain.AudienceShare(nil), poll...),
	})
}

// WalkAway ends the game banking the last amount won. Not available on the first question.
func (s *Session) WalkAway(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.phase.answering() || s.level <= ladder.FirstLevel {
		return false
	}
	amount := ladder.BankedAmount(s.level)
	s.touch()
	s.emit.Publish(ctx, domain.EventWalkAway{GameID: s.id, Level: s.level, Amount: amount})
	s.terminate(ctx, domain.StatusWalkedAway, amount)
	return true
}

// Abandon ends a game nobody is playing any more. The player keeps the safe floor, as after a
// wrong answer.
func (s *Session) Abandon(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseTerminal {
		return false
	}
	s.terminate(ctx, domain.StatusCompleted, ladder.FloorAmount(s.level))
	return true
}

func (s *Session) resolve(ctx context.Context, answer string, timedOut bool) {
	elapsed := s.countdown.Elapsed()
	s.countdown.Stop()
	s.gen++

	correct := !timedOut && answer == s.question.CorrectAnswer
	s.questionsAnswered++
	if correct {
		s.correctAnswers++
	}

	result := domain.QuestionResult{
		GameID:         s.id,
		QuestionNumber: s.level,
		QuestionID:     s.question.ID,
		Prompt:         s.question.Prompt,
		Options:        append([]string(nil), s.question.Options...),
		CorrectAnswer:  s.question.CorrectAnswer,
		SelectedAnswer: answer,
		Correct:        correct,
		TimedOut:       timedOut,
		TimeSpent:      elapsed,
		Difficulty:     s.question.Difficulty,
		Category:       s.question.Category,
		Lifelines:      append([]domain.Lifeline(nil), s.questionUsed...),
		AnsweredAt:     s.clock.Now(),
	}
	s.emit.Publish(ctx, domain.EventResolved{
		GameID:        s.id,
		Level:         s.level,
		Correct:       correct,
		CorrectAnswer: s.question.CorrectAnswer,
		Explanation:   s.question.Explanation,
		Result:        result,
	})

	switch {
	case correct && s.level == ladder.Levels:
		s.terminate(ctx, domain.StatusWon, ladder.AmountFor(ladder.Levels))
	case correct:
		s.level++
		s.phase = PhaseAwaitingQuestion
	default:
		s.terminate(ctx, domain.StatusCompleted, ladder.FloorAmount(s.level))
	}
}

// terminate is the only place finalScore is written.
func (s *Session) terminate(ctx context.Context, status domain.GameStatus, score int) {
	if s.phase == PhaseTerminal {
		return
	}
	s.countdown.Stop()
	s.gen++
	s.revealPending = false
	s.phase = PhaseTerminal
	s.status = status
	s.finalScore = score
	s.endedAt = s.clock.Now()

	used := make([]string, len(s.used))
	for i, l := range s.used {
		used[i] = string(l)
	}
	s.record = &domain.GameRecord{
		GameID:            s.id,
		PlayerID:          s.playerID,
		FinalScore:        score,
		QuestionsAnswered: s.questionsAnswered,
		CorrectAnswers:    s.correctAnswers,
		PrizeLevelLabel:   ladder.Label(ladder.AmountFor(s.correctAnswers)),
		LifelinesUsed:     used,
		Status:            status,
		StartedAt:         s.startedAt,
		EndedAt:           s.endedAt,
	}
	s.emit.Publish(ctx, domain.EventGameEnded{Record: *s.record})
}

func (s *Session) isEliminated(answer string) bool {
	for _, e := range s.eliminated {
		if e == answer {
			return true
		}
	}
	return false
}

func (s *Session) touch() {
	s.lastActivity = s.clock.Now()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Terminal reports whether the game has ended.
func (s *Session) Terminal() bool {
	return s.Phase() == PhaseTerminal
}

// LastActivity is the time of the last applied action.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Record returns the final record once the game has ended.
func (s *Session) Record() (domain.GameRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return domain.GameRecord{}, false
	}
	return *s.record, true
}

// ActionType names a player action on the API.
type ActionType string

const (
	ActionSelect   ActionType = "select"
	ActionLock     ActionType = "lock"
	ActionRetract  ActionType = "retract"
	ActionConfirm  ActionType = "confirm"
	ActionLifeline ActionType = "lifeline"
	ActionWalkAway ActionType = "walkAway"
)

type Action struct {
	Type     ActionType      `json:"type"`
	Answer   string          `json:"answer,omitempty"`
	Lifeline domain.Lifeline `json:"lifeline,omitempty"`
}

// Apply dispatches a to the matching method. Unknown action types are errors; actions that do
// not apply are not.
func (s *Session) Apply(ctx context.Context, a Action) (bool, error) {
	switch a.Type {
	case ActionSelect:
		return s.Select(ctx, a.Answer), nil
	case ActionLock:
		return s.Lock(ctx), nil
	case ActionRetract:
		return s.Retract(ctx), nil
	case ActionConfirm:
		return s.Confirm(ctx), nil
	case ActionLifeline:
		return s.UseLifeline(ctx, a.Lifeline), nil
	case ActionWalkAway:
		return s.WalkAway(ctx), nil
	}
	return false, fmt.Errorf("%w: %q", domain.ErrInvalidAction, a.Type)
}
