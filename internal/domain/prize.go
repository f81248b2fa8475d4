package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrizeTier maps a minimum final score to a give-away.
type PrizeTier struct {
	Level       string `json:"level"`
	MinScore    int    `json:"minScore"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

// PrizeTiers is ordered from the highest minimum score down.
var PrizeTiers = []PrizeTier{
	{Level: "BUILDONAIRE", MinScore: 1000000, Type: "discount", Description: "25% off Retrotec products", Value: "25% OFF"},
	{Level: "TIER_2", MinScore: 250000, Type: "merchandise", Description: "Branded apparel and technical guides", Value: "MERCH_PACK"},
	{Level: "TIER_3", MinScore: 32000, Type: "swag", Description: "Branded promotional items", Value: "SWAG_PACK"},
	{Level: "PARTICIPATION", MinScore: 0, Type: "entry", Description: "Entry into end-of-event raffle", Value: "RAFFLE_ENTRY"},
}

// TierFor returns the best tier reached by score.
func TierFor(score int) (PrizeTier, bool) {
	for _, tier := range PrizeTiers {
		if score >= tier.MinScore {
			return tier, true
		}
	}
	return PrizeTier{}, false
}

// Prize is an awarded give-away.
type Prize struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"playerId"`
	GameID      string    `json:"gameId"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Value       string    `json:"value"`
	Code        string    `json:"code"`
	Claimed     bool      `json:"claimed"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecentGame is a row of the admin activity feed.
type RecentGame struct {
	ID        string     `json:"id"`
	Player    string     `json:"player"`
	Company   string     `json:"company"`
	Score     int        `json:"score"`
	Status    GameStatus `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
}

// AdminStats backs the admin dashboard.
type AdminStats struct {
	TotalPlayers   int               `json:"totalPlayers"`
	TodayPlayers   int               `json:"todayPlayers"`
	TotalGames     int               `json:"totalGames"`
	TodayGames     int               `json:"todayGames"`
	LeadsGenerated int               `json:"leadsGenerated"`
	PrizesAwarded  int               `json:"prizesAwarded"`
	AverageScore   decimal.Decimal   `json:"averageScore"`
	LeadScores     map[LeadScore]int `json:"leadScores"`
	RecentGames    []RecentGame      `json:"recentGames"`
	ActiveGames    int               `json:"activeGames"`
}

// Lead is one row of the lead export.
type Lead struct {
	Player      Player
	GamesPlayed int
	BestScore   int
}
