package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/ladder"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

// Advance moves time forward and runs every timer that became due, outside the clock lock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// seqRandom replays values modulo n.
type seqRandom struct {
	mu     sync.Mutex
	values []int
	i      int
}

func (r *seqRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.i%len(r.values)]
	r.i++
	return v % n
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recordingEmitter) Publish(_ context.Context, e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name()
	}
	return out
}

func (r *recordingEmitter) count(name string) int {
	n := 0
	for _, got := range r.names() {
		if got == name {
			n++
		}
	}
	return n
}

func (r *recordingEmitter) last(name string) event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name() == name {
			return r.events[i]
		}
	}
	return nil
}

const correctOption = "Charlie"

func testQuestion(level int) domain.Question {
	return domain.Question{
		ID:            fmt.Sprintf("q%d", level),
		Prompt:        fmt.Sprintf("Question for level %d?", level),
		Options:       []string{"Alpha", "Bravo", correctOption, "Delta"},
		CorrectAnswer: correctOption,
		Difficulty:    ladder.DifficultyFor(level),
		Category:      "Test",
		Explanation:   "Because.",
	}
}

type sourceFunc func(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error)

func (f sourceFunc) Question(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error) {
	return f(ctx, level, exclude)
}

var levelSource = sourceFunc(func(_ context.Context, level int, _ map[string]struct{}) (domain.Question, error) {
	return testQuestion(level), nil
})

var errSourceDown = errors.New("source down")

type harness struct {
	t       *testing.T
	session *Session
	clock   *fakeClock
	events  *recordingEmitter
	src     Source
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:      t,
		clock:  newFakeClock(),
		events: &recordingEmitter{},
		src:    levelSource,
	}
	h.session = NewSession("game-1", "player-1", DefaultConfig(), Deps{
		Clock:   h.clock,
		Random:  &seqRandom{values: []int{0, 1, 2, 3}},
		Emitter: h.events,
	})
	h.session.Start(context.Background())
	h.load()
	return h
}

func (h *harness) load() {
	h.t.Helper()
	if !h.session.LoadQuestion(context.Background(), h.src) {
		h.t.Fatalf("expected question to load at level %d", h.session.Snapshot().Level)
	}
}

// answer selects, locks and confirms answer.
func (h *harness) answer(answer string) {
	h.t.Helper()
	ctx := context.Background()
	if !h.session.Select(ctx, answer) {
		h.t.Fatalf("select %q rejected", answer)
	}
	if !h.session.Lock(ctx) {
		h.t.Fatalf("lock rejected")
	}
	if !h.session.Confirm(ctx) {
		h.t.Fatalf("confirm rejected")
	}
}

// climbTo answers correctly until the session is on level with a question loaded.
func (h *harness) climbTo(level int) {
	h.t.Helper()
	for h.session.Snapshot().Level < level {
		h.answer(correctOption)
		h.load()
	}
}
