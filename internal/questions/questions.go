// Package questions provides the question sources a game session draws from: a least-used picker
// over a cached question bank, an optional generator, and the YAML bank format.
package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
	"millionaire-service/internal/ladder"
)

// Bank loads every question of a difficulty band.
type Bank interface {
	LoadBank(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// UsageRecorder persists that a question was shown.
type UsageRecorder interface {
	MarkUsed(ctx context.Context, questionID string) error
}

// Usages records a question's use with every recorder in order, e.g. the bank cache and the database.
type Usages []UsageRecorder

func (u Usages) MarkUsed(ctx context.Context, questionID string) error {
	var errs []error
	for _, r := range u {
		if err := r.MarkUsed(ctx, questionID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pool picks the least-used question of the level's band that the session has not seen. Ties are
// broken at random. With a usage recorder the bank's counts are authoritative; without one the pool
// counts its own picks.
type Pool struct {
	bank  Bank
	usage UsageRecorder
	rnd   game.Random

	mu    sync.Mutex
	local map[string]int
}

func NewPool(bank Bank, usage UsageRecorder, rnd game.Random) *Pool {
	if rnd == nil {
		rnd = game.NewRandom(1)
	}
	return &Pool{bank: bank, usage: usage, rnd: rnd, local: make(map[string]int)}
}

func (p *Pool) Question(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error) {
	difficulty := ladder.DifficultyFor(level)
	bank, err := p.bank.LoadBank(ctx, difficulty)
	if err != nil {
		return domain.Question{}, fmt.Errorf("load %s bank: %w", difficulty, err)
	}

	p.mu.Lock()
	var (
		best   []domain.Question
		fewest int
	)
	for _, q := range bank {
		if _, skip := exclude[q.ID]; skip {
			continue
		}
		used := q.TimesUsed
		if p.usage == nil {
			used += p.local[q.ID]
		}
		switch {
		case len(best) == 0 || used < fewest:
			best = append(best[:0], q)
			fewest = used
		case used == fewest:
			best = append(best, q)
		}
	}
	if len(best) == 0 {
		p.mu.Unlock()
		return domain.Question{}, fmt.Errorf("%w: %s level %d", domain.ErrNoQuestions, difficulty, level)
	}
	picked := best[p.rnd.Intn(len(best))].Clone()
	if p.usage == nil {
		p.local[picked.ID]++
	}
	p.mu.Unlock()

	if p.usage != nil {
		if err := p.usage.MarkUsed(ctx, picked.ID); err != nil {
			slog.WarnContext(ctx, "questions: mark used failed", "question_id", picked.ID, "error", err)
		}
	}
	return picked, nil
}

// Chain asks each source in turn and returns the first question it gets.
type Chain []game.Source

func (c Chain) Question(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error) {
	var errs []error
	for _, src := range c {
		q, err := src.Question(ctx, level, exclude)
		if err == nil {
			if err = q.Validate(); err == nil {
				return q, nil
			}
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return domain.Question{}, domain.ErrNoQuestions
	}
	return domain.Question{}, errors.Join(errs...)
}
