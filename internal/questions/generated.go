package questions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/ladder"
)

// Generator writes a new question for a level.
type Generator interface {
	GenerateQuestion(ctx context.Context, level int, difficulty domain.Difficulty, avoid []string) (domain.Question, error)
}

// Saver adds a question to the bank.
type Saver interface {
	SaveQuestion(ctx context.Context, q domain.Question) error
}

// Generated adapts a Generator to a game source. Valid questions are kept in the bank so later
// games can reuse them.
type Generated struct {
	gen   Generator
	saver Saver
}

func NewGenerated(gen Generator, saver Saver) *Generated {
	return &Generated{gen: gen, saver: saver}
}

func (g *Generated) Question(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error) {
	difficulty := ladder.DifficultyFor(level)
	avoid := make([]string, 0, len(exclude))
	for id := range exclude {
		avoid = append(avoid, id)
	}

	q, err := g.gen.GenerateQuestion(ctx, level, difficulty, avoid)
	if err != nil {
		return domain.Question{}, fmt.Errorf("generate question: %w", err)
	}
	if q.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Question{}, err
		}
		q.ID = "gen_" + id.String()
	}
	q.Difficulty = difficulty
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}

	if g.saver != nil {
		if err := g.saver.SaveQuestion(ctx, q); err != nil {
			slog.WarnContext(ctx, "questions: save generated question failed", "question_id", q.ID, "error", err)
		}
	}
	return q, nil
}
