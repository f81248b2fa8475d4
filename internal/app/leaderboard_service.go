package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
)

const (
	DefaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	// trailingAnnounce re-announces a throttled change so the last update of a burst is not lost.
	trailingAnnounce = 250 * time.Millisecond
)

// LeaderboardService ranks finished games and pushes fresh boards to subscribers.
// With an Announcer, changes travel through it and come back via Refresh on every instance;
// without one they are published locally.
type LeaderboardService struct {
	repo      LeaderboardRepository
	announcer Announcer
	emit      game.Emitter
	now       func() time.Time

	mu       sync.Mutex
	subs     map[domain.LeaderboardPeriod]map[chan domain.Leaderboard]struct{}
	trailing map[domain.LeaderboardPeriod]bool
}

func NewLeaderboardService(repo LeaderboardRepository, announcer Announcer, emit game.Emitter) *LeaderboardService {
	return &LeaderboardService{
		repo:      repo,
		announcer: announcer,
		emit:      emit,
		now:       time.Now,
		subs:      make(map[domain.LeaderboardPeriod]map[chan domain.Leaderboard]struct{}),
		trailing:  make(map[domain.LeaderboardPeriod]bool),
	}
}

func (s *LeaderboardService) Get(ctx context.Context, period domain.LeaderboardPeriod, limit int) (domain.Leaderboard, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	now := s.now()
	entries, err := s.repo.TopEntries(ctx, period, now, limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{
		Period:      period,
		PeriodStart: period.Start(now),
		Entries:     entries,
		UpdatedAt:   now,
	}, nil
}

// Record stores a finished game and announces the change for every period.
func (s *LeaderboardService) Record(ctx context.Context, e domain.LeaderboardEntry) error {
	if err := s.repo.RecordEntry(ctx, e); err != nil {
		return err
	}
	for _, p := range domain.Periods {
		s.changed(ctx, p)
	}
	return nil
}

// Refresh publishes the current board of period to local subscribers.
func (s *LeaderboardService) Refresh(ctx context.Context, period domain.LeaderboardPeriod) error {
	board, err := s.Get(ctx, period, DefaultLeaderboardLimit)
	if err != nil {
		return err
	}
	s.emit.Publish(ctx, domain.EventLeaderboardUpdated{Leaderboard: board})
	return nil
}

func (s *LeaderboardService) changed(ctx context.Context, period domain.LeaderboardPeriod) {
	if s.announcer == nil {
		if err := s.Refresh(ctx, period); err != nil {
			slog.WarnContext(ctx, "leaderboard refresh failed", "period", period, "error", err)
		}
		return
	}

	announced, err := s.announcer.Announce(ctx, period, s.now())
	if err != nil {
		slog.WarnContext(ctx, "leaderboard announce failed", "period", period, "error", err)
		return
	}
	if announced {
		return
	}

	s.mu.Lock()
	if s.trailing[period] {
		s.mu.Unlock()
		return
	}
	s.trailing[period] = true
	s.mu.Unlock()

	bg := context.WithoutCancel(ctx)
	time.AfterFunc(trailingAnnounce, func() {
		s.mu.Lock()
		s.trailing[period] = false
		s.mu.Unlock()
		if _, err := s.announcer.Announce(bg, period, s.now()); err != nil {
			slog.WarnContext(bg, "leaderboard announce failed", "period", period, "error", err)
		}
	})
}

// Register forwards published boards to subscribers.
func (s *LeaderboardService) Register(bus *event.Bus) {
	bus.Subscribe(domain.EventNameLeaderboardUpdated, func(_ context.Context, e event.Event) error {
		if ev, ok := e.(domain.EventLeaderboardUpdated); ok {
			s.broadcast(ev.Leaderboard)
		}
		return nil
	})
}

// Subscribe returns a channel of boards for period.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *LeaderboardService) Subscribe(period domain.LeaderboardPeriod) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 4)

	s.mu.Lock()
	if s.subs[period] == nil {
		s.subs[period] = make(map[chan domain.Leaderboard]struct{})
	}
	s.subs[period][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[period][ch]; ok {
			delete(s.subs[period], ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *LeaderboardService) broadcast(board domain.Leaderboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs[board.Period] {
		select {
		case ch <- board:
		default:
			// only the newest board matters
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}
