package store

import (
	"context"
	"database/sql"
	"errors"

	"millionaire-service/internal/domain"
)

// FindPrize returns the player's prize of the given type, if one was awarded.
func (s *Store) FindPrize(ctx context.Context, playerID, prizeType string) (domain.Prize, bool, error) {
	var row PrizeRow
	err := s.db.NewSelect().
		Model(&row).
		Where("player_id = ?", playerID).
		Where("type = ?", prizeType).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Prize{}, false, nil
	}
	if err != nil {
		return domain.Prize{}, false, err
	}
	return row.domain(), true, nil
}

// CreatePrize stores p unless the player already holds a prize of that type,
// in which case the existing one is returned.
func (s *Store) CreatePrize(ctx context.Context, p domain.Prize) (domain.Prize, error) {
	row := PrizeRow{
		ID:          p.ID,
		PlayerID:    p.PlayerID,
		GameID:      p.GameID,
		Type:        p.Type,
		Description: p.Description,
		Value:       p.Value,
		Code:        p.Code,
		Claimed:     p.Claimed,
		ExpiresAt:   ts(p.ExpiresAt),
		CreatedAt:   ts(p.CreatedAt),
	}
	if _, err := s.db.NewInsert().Model(&row).On("CONFLICT (player_id, type) DO NOTHING").Exec(ctx); err != nil {
		return domain.Prize{}, err
	}

	stored, ok, err := s.FindPrize(ctx, p.PlayerID, p.Type)
	if err != nil {
		return domain.Prize{}, err
	}
	if !ok {
		return domain.Prize{}, sql.ErrNoRows
	}
	return stored, nil
}

func (r PrizeRow) domain() domain.Prize {
	return domain.Prize{
		ID:          r.ID,
		PlayerID:    r.PlayerID,
		GameID:      r.GameID,
		Type:        r.Type,
		Description: r.Description,
		Value:       r.Value,
		Code:        r.Code,
		Claimed:     r.Claimed,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
}
