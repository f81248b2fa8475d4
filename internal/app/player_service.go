package app

import (
	"context"
	"time"

	"millionaire-service/internal/domain"
)

type PlayerService struct {
	repo PlayerRepository
	now  func() time.Time
}

func NewPlayerService(repo PlayerRepository) *PlayerService {
	return &PlayerService{repo: repo, now: time.Now}
}

// Register creates a player, or refreshes the one registered with the same email.
func (s *PlayerService) Register(ctx context.Context, r domain.Registration) (domain.Player, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return domain.Player{}, err
	}
	return s.repo.UpsertPlayer(ctx, domain.Player{
		ID:              newID(),
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Company:         r.Company,
		JobTitle:        r.JobTitle,
		CompanySize:     r.CompanySize,
		Phone:           r.Phone,
		ProductInterest: r.ProductInterest,
		MarketingOptIn:  r.MarketingOptIn,
		PartnerOptIn:    r.PartnerOptIn,
		LeadScore:       domain.LeadCool,
		CreatedAt:       s.now(),
	})
}

func (s *PlayerService) Get(ctx context.Context, id string) (domain.Player, error) {
	return s.repo.GetPlayer(ctx, id)
}
