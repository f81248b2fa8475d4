package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"millionaire-service/internal/domain"
)

// Question sources recorded with each stored question.
const (
	SourceImported  = "imported"
	SourceGenerated = "generated"
)

// LoadBank returns every stored question of the band, least used first.
func (s *Store) LoadBank(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	var rows []QuestionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("difficulty = ?", string(difficulty)).
		OrderExpr("times_used ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		q, err := row.domain()
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", row.ID, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *Store) MarkUsed(ctx context.Context, questionID string) error {
	_, err := s.db.NewUpdate().
		Model((*QuestionRow)(nil)).
		Set("times_used = times_used + 1").
		Where("id = ?", questionID).
		Exec(ctx)
	return err
}

// SaveQuestion keeps a generated question. An existing id is left untouched.
func (s *Store) SaveQuestion(ctx context.Context, q domain.Question) error {
	row, err := s.questionRow(q, SourceGenerated)
	if err != nil {
		return err
	}
	_, err = s.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

// ImportQuestions upserts qs by id in one transaction, keeping usage counts.
func (s *Store) ImportQuestions(ctx context.Context, qs []domain.Question) (int, error) {
	if len(qs) == 0 {
		return 0, nil
	}
	rows := make([]QuestionRow, 0, len(qs))
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return 0, fmt.Errorf("question %s: %w", q.ID, err)
		}
		row, err := s.questionRow(q, SourceImported)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (id) DO UPDATE").
			Set("question = EXCLUDED.question").
			Set("options = EXCLUDED.options").
			Set("correct_answer = EXCLUDED.correct_answer").
			Set("difficulty = EXCLUDED.difficulty").
			Set("category = EXCLUDED.category").
			Set("explanation = EXCLUDED.explanation").
			Set("host_hint = EXCLUDED.host_hint").
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// CountQuestions returns the number of stored questions per band.
func (s *Store) CountQuestions(ctx context.Context) (map[domain.Difficulty]int, error) {
	var rows []struct {
		Difficulty string `bun:"difficulty"`
		Count      int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*QuestionRow)(nil)).
		Column("difficulty").
		ColumnExpr("COUNT(*) AS count").
		Group("difficulty").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Difficulty]int, len(rows))
	for _, r := range rows {
		out[domain.Difficulty(r.Difficulty)] = r.Count
	}
	return out, nil
}

func (s *Store) questionRow(q domain.Question, source string) (QuestionRow, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return QuestionRow{}, err
	}
	return QuestionRow{
		ID:            q.ID,
		Question:      q.Prompt,
		Options:       string(options),
		CorrectAnswer: q.CorrectAnswer,
		Difficulty:    string(q.Difficulty),
		Category:      q.Category,
		Explanation:   q.Explanation,
		HostHint:      q.HostHint,
		TimesUsed:     q.TimesUsed,
		Source:        source,
		CreatedAt:     ts(s.now()),
	}, nil
}

func (r QuestionRow) domain() (domain.Question, error) {
	var options []string
	if err := json.Unmarshal([]byte(r.Options), &options); err != nil {
		return domain.Question{}, err
	}
	return domain.Question{
		ID:            r.ID,
		Prompt:        r.Question,
		Options:       options,
		CorrectAnswer: r.CorrectAnswer,
		Difficulty:    domain.Difficulty(r.Difficulty),
		Category:      r.Category,
		Explanation:   r.Explanation,
		HostHint:      r.HostHint,
		TimesUsed:     r.TimesUsed,
	}, nil
}
