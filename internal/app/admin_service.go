package app

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"millionaire-service/internal/domain"
)

const recentGamesLimit = 10

type AdminService struct {
	stats StatsRepository
	games *GameService
	now   func() time.Time
}

func NewAdminService(stats StatsRepository, games *GameService) *AdminService {
	return &AdminService{stats: stats, games: games, now: time.Now}
}

// Stats gathers the dashboard figures concurrently.
func (s *AdminService) Stats(ctx context.Context) (domain.AdminStats, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var out domain.AdminStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.TotalPlayers, err = s.stats.CountPlayers(ctx, time.Time{}); return })
	g.Go(func() (err error) { out.TodayPlayers, err = s.stats.CountPlayers(ctx, today); return })
	g.Go(func() (err error) { out.TotalGames, err = s.stats.CountGames(ctx, time.Time{}); return })
	g.Go(func() (err error) { out.TodayGames, err = s.stats.CountGames(ctx, today); return })
	g.Go(func() (err error) { out.LeadsGenerated, err = s.stats.CountLeads(ctx); return })
	g.Go(func() (err error) { out.PrizesAwarded, err = s.stats.CountClaimedPrizes(ctx); return })
	g.Go(func() (err error) { out.AverageScore, err = s.stats.AverageScore(ctx); return })
	g.Go(func() (err error) { out.LeadScores, err = s.stats.LeadScoreCounts(ctx); return })
	g.Go(func() (err error) { out.RecentGames, err = s.stats.RecentGames(ctx, recentGamesLimit); return })
	if err := g.Wait(); err != nil {
		return domain.AdminStats{}, err
	}
	if s.games != nil {
		out.ActiveGames = s.games.ActiveGames()
	}
	return out, nil
}

var leadColumns = []string{
	"firstName", "lastName", "email", "company", "jobTitle", "companySize", "phone",
	"marketingOptIn", "partnerOptIn", "leadScore", "gamesPlayed", "bestScore", "registeredAt",
}

// ExportLeads writes every player as a CSV row, newest registration first.
func (s *AdminService) ExportLeads(ctx context.Context, w io.Writer) error {
	leads, err := s.stats.Leads(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(leadColumns); err != nil {
		return err
	}
	for _, l := range leads {
		p := l.Player
		row := []string{
			p.FirstName, p.LastName, p.Email, p.Company, p.JobTitle, p.CompanySize, p.Phone,
			yesNo(p.MarketingOptIn), yesNo(p.PartnerOptIn), string(p.LeadScore),
			strconv.Itoa(l.GamesPlayed), strconv.Itoa(l.BestScore), p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
