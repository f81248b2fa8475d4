package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

const (
	prizeValidity  = 180 * 24 * time.Hour
	prizeSuffixLen = 9
	base36         = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// PrizeResult is the outcome of a prize check.
type PrizeResult struct {
	Prize   domain.Prize `json:"prize"`
	Tier    string       `json:"tier"`
	IsNew   bool         `json:"isNew"`
	Message string       `json:"message"`
}

type PrizeService struct {
	games  GameRepository
	prizes PrizeRepository
	rnd    game.Random
	now    func() time.Time
}

func NewPrizeService(games GameRepository, prizes PrizeRepository, rnd game.Random) *PrizeService {
	if rnd == nil {
		rnd = game.NewRandom(time.Now().UnixNano())
	}
	return &PrizeService{games: games, prizes: prizes, rnd: rnd, now: time.Now}
}

// Check awards the prize earned by a finished game. A player holds at most one prize per type,
// so checking again returns the prize already awarded.
func (s *PrizeService) Check(ctx context.Context, gameID, playerID string) (PrizeResult, error) {
	rec, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return PrizeResult{}, err
	}
	if rec.PlayerID != playerID {
		return PrizeResult{}, domain.ErrGameNotFound
	}
	if !rec.Status.Terminal() {
		return PrizeResult{}, domain.ErrGameNotFinished
	}

	tier, ok := domain.TierFor(rec.FinalScore)
	if !ok {
		return PrizeResult{Message: "No prize earned for this score"}, nil
	}

	existing, found, err := s.prizes.FindPrize(ctx, playerID, tier.Type)
	if err != nil {
		return PrizeResult{}, err
	}
	if found {
		return PrizeResult{Prize: existing, Tier: tier.Level, Message: "Prize already awarded"}, nil
	}

	now := s.now()
	id := newID()
	prize, err := s.prizes.CreatePrize(ctx, domain.Prize{
		ID:          id,
		PlayerID:    playerID,
		GameID:      gameID,
		Type:        tier.Type,
		Description: tier.Description,
		Value:       tier.Value,
		Code:        s.code(tier.Level, now),
		ExpiresAt:   now.Add(prizeValidity),
		CreatedAt:   now,
	})
	if err != nil {
		return PrizeResult{}, err
	}
	return PrizeResult{
		Prize:   prize,
		Tier:    tier.Level,
		IsNew:   prize.ID == id,
		Message: fmt.Sprintf("Congratulations! You've won: %s", tier.Description),
	}, nil
}

func (s *PrizeService) code(level string, now time.Time) string {
	suffix := make([]byte, prizeSuffixLen)
	for i := range suffix {
		suffix[i] = base36[s.rnd.Intn(len(base36))]
	}
	return strings.ToUpper(fmt.Sprintf("%s-%d-%s", level, now.UnixMilli(), suffix))
}
