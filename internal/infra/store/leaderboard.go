package store

import (
	"context"
	"time"

	"millionaire-service/internal/domain"
)

// RecordEntry writes one row per period. Recording the same game again changes nothing.
func (s *Store) RecordEntry(ctx context.Context, e domain.LeaderboardEntry) error {
	rows := make([]LeaderboardRow, 0, len(domain.Periods))
	for _, p := range domain.Periods {
		rows = append(rows, LeaderboardRow{
			GameID:            e.GameID,
			Type:              string(p),
			PlayerName:        e.PlayerName,
			Company:           e.Company,
			Score:             e.Score,
			PrizeLevel:        e.PrizeLevel,
			QuestionsAnswered: e.QuestionsAnswered,
			CorrectAnswers:    e.CorrectAnswers,
			Status:            string(e.Status),
			Won:               e.Won,
			Date:              ts(e.Date),
		})
	}
	_, err := s.db.NewInsert().Model(&rows).On("CONFLICT (game_id, type) DO NOTHING").Exec(ctx)
	return err
}

// TopEntries ranks the games of the period window containing now.
func (s *Store) TopEntries(ctx context.Context, period domain.LeaderboardPeriod, now time.Time, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []LeaderboardRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("type = ?", string(period)).
		Where("date >= ?", ts(period.Start(now))).
		OrderExpr("score DESC, questions_answered DESC, date ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:              i + 1,
			GameID:            row.GameID,
			PlayerName:        row.PlayerName,
			Company:           row.Company,
			Score:             row.Score,
			PrizeLevel:        row.PrizeLevel,
			QuestionsAnswered: row.QuestionsAnswered,
			CorrectAnswers:    row.CorrectAnswers,
			Status:            domain.GameStatus(row.Status),
			Won:               row.Won,
			Date:              row.Date,
		})
	}
	return entries, nil
}
