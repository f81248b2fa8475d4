package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"millionaire-service/internal/domain"
)

// QuestionLoader reads the question bank straight from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadBank(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, question, options, correct_answer, difficulty, category, explanation, host_hint, times_used
		FROM questions
		WHERE difficulty = $1
		ORDER BY times_used, id`, string(difficulty))
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var (
			q       domain.Question
			options string
			level   string
		)
		if err := rows.Scan(&q.ID, &q.Prompt, &options, &q.CorrectAnswer, &level, &q.Category, &q.Explanation, &q.HostHint, &q.TimesUsed); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options of %s: %w", q.ID, err)
		}
		q.Difficulty = domain.Difficulty(level)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}
	return out, nil
}

func (l *QuestionLoader) MarkUsed(ctx context.Context, questionID string) error {
	_, err := l.pool.Exec(ctx, `UPDATE questions SET times_used = times_used + 1 WHERE id = $1`, questionID)
	if err != nil {
		return fmt.Errorf("mark used: %w", err)
	}
	return nil
}
