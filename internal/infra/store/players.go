package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"millionaire-service/internal/domain"
)

// UpsertPlayer inserts p or refreshes the registration fields of the player with the same email.
// The stored player, with its original ID and lead score, is returned.
func (s *Store) UpsertPlayer(ctx context.Context, p domain.Player) (domain.Player, error) {
	now := ts(s.now())
	row := playerRow(p)
	row.CreatedAt = now
	row.UpdatedAt = now
	if row.LeadScore == "" {
		row.LeadScore = string(domain.LeadCool)
	}

	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (email) DO UPDATE").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("company = EXCLUDED.company").
		Set("job_title = EXCLUDED.job_title").
		Set("company_size = EXCLUDED.company_size").
		Set("phone = EXCLUDED.phone").
		Set("product_interest = EXCLUDED.product_interest").
		Set("marketing_opt_in = EXCLUDED.marketing_opt_in").
		Set("partner_opt_in = EXCLUDED.partner_opt_in").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return domain.Player{}, err
	}

	var stored PlayerRow
	if err := s.db.NewSelect().Model(&stored).Where("email = ?", row.Email).Scan(ctx); err != nil {
		return domain.Player{}, err
	}
	return stored.domain(), nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	var row PlayerRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, err
	}
	return row.domain(), nil
}

func (s *Store) UpdateLeadScore(ctx context.Context, playerID string, score domain.LeadScore) error {
	_, err := s.db.NewUpdate().
		Model((*PlayerRow)(nil)).
		Set("lead_score = ?", string(score)).
		Set("updated_at = ?", ts(s.now())).
		Where("id = ?", playerID).
		Exec(ctx)
	return err
}

func playerRow(p domain.Player) PlayerRow {
	return PlayerRow{
		ID:              p.ID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           p.Email,
		Company:         p.Company,
		JobTitle:        p.JobTitle,
		CompanySize:     p.CompanySize,
		Phone:           p.Phone,
		ProductInterest: strings.Join(p.ProductInterest, ","),
		MarketingOptIn:  p.MarketingOptIn,
		PartnerOptIn:    p.PartnerOptIn,
		LeadScore:       string(p.LeadScore),
		CreatedAt:       p.CreatedAt,
	}
}

func (r PlayerRow) domain() domain.Player {
	var interests []string
	if r.ProductInterest != "" {
		interests = strings.Split(r.ProductInterest, ",")
	}
	return domain.Player{
		ID:              r.ID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Company:         r.Company,
		JobTitle:        r.JobTitle,
		CompanySize:     r.CompanySize,
		Phone:           r.Phone,
		ProductInterest: interests,
		MarketingOptIn:  r.MarketingOptIn,
		PartnerOptIn:    r.PartnerOptIn,
		LeadScore:       domain.LeadScore(r.LeadScore),
		CreatedAt:       r.CreatedAt,
	}
}
