package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"millionaire-service/internal/domain"
)

func (s *Store) CountPlayers(ctx context.Context, since time.Time) (int, error) {
	q := s.db.NewSelect().Model((*PlayerRow)(nil))
	if !since.IsZero() {
		q = q.Where("created_at >= ?", ts(since))
	}
	return q.Count(ctx)
}

func (s *Store) CountGames(ctx context.Context, since time.Time) (int, error) {
	q := s.db.NewSelect().Model((*GameRow)(nil))
	if !since.IsZero() {
		q = q.Where("started_at >= ?", ts(since))
	}
	return q.Count(ctx)
}

// CountLeads counts players who opted in to marketing.
func (s *Store) CountLeads(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*PlayerRow)(nil)).Where("marketing_opt_in = ?", true).Count(ctx)
}

func (s *Store) CountClaimedPrizes(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*PrizeRow)(nil)).Where("claimed = ?", true).Count(ctx)
}

// AverageScore is the mean final score of finished games, rounded to cents.
func (s *Store) AverageScore(ctx context.Context) (decimal.Decimal, error) {
	var agg struct {
		Total int64 `bun:"total"`
		Games int64 `bun:"games"`
	}
	err := s.db.NewSelect().
		Model((*GameRow)(nil)).
		ColumnExpr("COALESCE(SUM(final_score), 0) AS total").
		ColumnExpr("COUNT(*) AS games").
		Where("status IN (?, ?)", string(domain.StatusCompleted), string(domain.StatusWon)).
		Scan(ctx, &agg)
	if err != nil {
		return decimal.Zero, err
	}
	if agg.Games == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(agg.Total).Div(decimal.NewFromInt(agg.Games)).Round(2), nil
}

func (s *Store) LeadScoreCounts(ctx context.Context) (map[domain.LeadScore]int, error) {
	var rows []struct {
		LeadScore string `bun:"lead_score"`
		Count     int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*PlayerRow)(nil)).
		Column("lead_score").
		ColumnExpr("COUNT(*) AS count").
		Group("lead_score").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := map[domain.LeadScore]int{domain.LeadCool: 0, domain.LeadWarm: 0, domain.LeadHot: 0}
	for _, r := range rows {
		out[domain.LeadScore(r.LeadScore)] = r.Count
	}
	return out, nil
}

// RecentGames lists the latest games with their player, newest first.
func (s *Store) RecentGames(ctx context.Context, limit int) ([]domain.RecentGame, error) {
	var rows []struct {
		ID         string    `bun:"id"`
		FirstName  string    `bun:"first_name"`
		LastName   string    `bun:"last_name"`
		Company    string    `bun:"company"`
		FinalScore int       `bun:"final_score"`
		Status     string    `bun:"status"`
		StartedAt  time.Time `bun:"started_at"`
	}
	err := s.db.NewSelect().
		TableExpr("games AS g").
		Join("JOIN players AS p ON p.id = g.player_id").
		ColumnExpr("g.id, p.first_name, p.last_name, p.company, g.final_score, g.status, g.started_at").
		OrderExpr("g.started_at DESC, g.id DESC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RecentGame, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RecentGame{
			ID:        r.ID,
			Player:    domain.Player{FirstName: r.FirstName, LastName: r.LastName}.ShortName(),
			Company:   r.Company,
			Score:     r.FinalScore,
			Status:    domain.GameStatus(r.Status),
			StartedAt: r.StartedAt,
		})
	}
	return out, nil
}

// Leads lists every player with how many games they played and their best score, newest first.
func (s *Store) Leads(ctx context.Context) ([]domain.Lead, error) {
	var players []PlayerRow
	if err := s.db.NewSelect().Model(&players).OrderExpr("created_at DESC, id ASC").Scan(ctx); err != nil {
		return nil, err
	}

	var totals []struct {
		PlayerID string `bun:"player_id"`
		Games    int    `bun:"games"`
		Best     int    `bun:"best"`
	}
	err := s.db.NewSelect().
		Model((*GameRow)(nil)).
		Column("player_id").
		ColumnExpr("COUNT(*) AS games").
		ColumnExpr("COALESCE(MAX(final_score), 0) AS best").
		Group("player_id").
		Scan(ctx, &totals)
	if err != nil {
		return nil, err
	}
	byPlayer := make(map[string]int, len(totals))
	for i, t := range totals {
		byPlayer[t.PlayerID] = i
	}

	out := make([]domain.Lead, 0, len(players))
	for _, p := range players {
		lead := domain.Lead{Player: p.domain()}
		if i, ok := byPlayer[p.ID]; ok {
			lead.GamesPlayed = totals[i].Games
			lead.BestScore = totals[i].Best
		}
		out = append(out, lead)
	}
	return out, nil
}
