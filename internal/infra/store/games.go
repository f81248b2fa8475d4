package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"millionaire-service/internal/domain"
)

// StartGame records an in-progress game. Recording the same game twice is a no-op.
func (s *Store) StartGame(ctx context.Context, gameID, playerID string, startedAt time.Time) error {
	row := GameRow{
		ID:        gameID,
		PlayerID:  playerID,
		Status:    string(domain.StatusInProgress),
		StartedAt: ts(startedAt),
	}
	_, err := s.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

// FinishGame writes the final record. It reports false when the game was already finished,
// so a replayed end event never overwrites the first outcome.
func (s *Store) FinishGame(ctx context.Context, rec domain.GameRecord) (bool, error) {
	if err := s.StartGame(ctx, rec.GameID, rec.PlayerID, rec.StartedAt); err != nil {
		return false, err
	}

	res, err := s.db.NewUpdate().
		Model((*GameRow)(nil)).
		Set("status = ?", string(rec.Status)).
		Set("final_score = ?", rec.FinalScore).
		Set("questions_answered = ?", rec.QuestionsAnswered).
		Set("correct_answers = ?", rec.CorrectAnswers).
		Set("prize_level = ?", rec.PrizeLevelLabel).
		Set("lifelines_used = ?", strings.Join(rec.LifelinesUsed, ",")).
		Set("ended_at = ?", ts(rec.EndedAt)).
		Where("id = ?", rec.GameID).
		Where("status = ?", string(domain.StatusInProgress)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) GetGame(ctx context.Context, id string) (domain.GameRecord, error) {
	var row GameRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GameRecord{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.GameRecord{}, err
	}
	return row.domain(), nil
}

// SaveQuestionResult appends a per-question record. A result is stored once per question number.
func (s *Store) SaveQuestionResult(ctx context.Context, r domain.QuestionResult) error {
	options, err := json.Marshal(r.Options)
	if err != nil {
		return err
	}
	lifelines := make([]string, 0, len(r.Lifelines))
	for _, l := range r.Lifelines {
		lifelines = append(lifelines, string(l))
	}

	row := GameQuestionRow{
		GameID:         r.GameID,
		QuestionNumber: r.QuestionNumber,
		QuestionID:     r.QuestionID,
		Question:       r.Prompt,
		Options:        string(options),
		CorrectAnswer:  r.CorrectAnswer,
		SelectedAnswer: r.SelectedAnswer,
		IsCorrect:      r.Correct,
		TimedOut:       r.TimedOut,
		TimeSpentMs:    r.TimeSpent.Milliseconds(),
		Difficulty:     string(r.Difficulty),
		Category:       r.Category,
		LifelinesUsed:  strings.Join(lifelines, ","),
		AnsweredAt:     ts(r.AnsweredAt),
	}
	_, err = s.db.NewInsert().Model(&row).On("CONFLICT (game_id, question_number) DO NOTHING").Exec(ctx)
	return err
}

// QuestionResults lists a game's answered questions in ladder order.
func (s *Store) QuestionResults(ctx context.Context, gameID string) ([]domain.QuestionResult, error) {
	var rows []GameQuestionRow
	err := s.db.NewSelect().Model(&rows).Where("game_id = ?", gameID).Order("question_number ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.QuestionResult, 0, len(rows))
	for _, row := range rows {
		var options []string
		if err := json.Unmarshal([]byte(row.Options), &options); err != nil {
			return nil, err
		}
		var lifelines []domain.Lifeline
		for _, l := range splitList(row.LifelinesUsed) {
			lifelines = append(lifelines, domain.Lifeline(l))
		}
		out = append(out, domain.QuestionResult{
			GameID:         row.GameID,
			QuestionNumber: row.QuestionNumber,
			QuestionID:     row.QuestionID,
			Prompt:         row.Question,
			Options:        options,
			CorrectAnswer:  row.CorrectAnswer,
			SelectedAnswer: row.SelectedAnswer,
			Correct:        row.IsCorrect,
			TimedOut:       row.TimedOut,
			TimeSpent:      time.Duration(row.TimeSpentMs) * time.Millisecond,
			Difficulty:     domain.Difficulty(row.Difficulty),
			Category:       row.Category,
			Lifelines:      lifelines,
			AnsweredAt:     row.AnsweredAt,
		})
	}
	return out, nil
}

func (r GameRow) domain() domain.GameRecord {
	return domain.GameRecord{
		GameID:            r.ID,
		PlayerID:          r.PlayerID,
		FinalScore:        r.FinalScore,
		QuestionsAnswered: r.QuestionsAnswered,
		CorrectAnswers:    r.CorrectAnswers,
		PrizeLevelLabel:   r.PrizeLevel,
		LifelinesUsed:     splitList(r.LifelinesUsed),
		Status:            domain.GameStatus(r.Status),
		StartedAt:         r.StartedAt,
		EndedAt:           r.EndedAt,
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
