package domain

import (
	"fmt"
	"time"
)

// LeaderboardPeriod selects which window of games is ranked.
type LeaderboardPeriod string

const (
	PeriodDaily   LeaderboardPeriod = "daily"
	PeriodWeekly  LeaderboardPeriod = "weekly"
	PeriodAllTime LeaderboardPeriod = "all-time"
)

// Periods lists every leaderboard a finished game is written to.
var Periods = []LeaderboardPeriod{PeriodDaily, PeriodWeekly, PeriodAllTime}

// ParsePeriod defaults to daily, as the dashboard does.
func ParsePeriod(raw string) LeaderboardPeriod {
	switch LeaderboardPeriod(raw) {
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodAllTime:
		return PeriodAllTime
	}
	return PeriodDaily
}

// Start returns the first instant included in the period containing now.
// Weeks start on Monday.
func (p LeaderboardPeriod) Start(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodAllTime:
		return time.Unix(0, 0).UTC()
	}
	return day
}

// Bucket names the window containing now, e.g. 2026-10-17, 2026-W42 or all-time.
func (p LeaderboardPeriod) Bucket(now time.Time) string {
	switch p {
	case PeriodWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodAllTime:
		return string(PeriodAllTime)
	}
	return now.Format("2006-01-02")
}

// LeaderboardEntry is one ranked finished game.
type LeaderboardEntry struct {
	Rank              int        `json:"rank"`
	GameID            string     `json:"gameId"`
	PlayerName        string     `json:"playerName"`
	Company           string     `json:"company"`
	Score             int        `json:"score"`
	PrizeLevel        string     `json:"prizeLevel"`
	QuestionsAnswered int        `json:"questionsAnswered"`
	CorrectAnswers    int        `json:"correctAnswers"`
	Status            GameStatus `json:"status"`
	Won               bool       `json:"won"`
	Date              time.Time  `json:"date"`
}

// Leaderboard is an ordered snapshot: score desc, questions answered desc, earliest first.
type Leaderboard struct {
	Period      LeaderboardPeriod  `json:"type"`
	PeriodStart time.Time          `json:"periodStart"`
	Entries     []LeaderboardEntry `json:"leaderboard"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Less orders two entries for ranking.
func (e LeaderboardEntry) Less(o LeaderboardEntry) bool {
	if e.Score != o.Score {
		return e.Score > o.Score
	}
	if e.QuestionsAnswered != o.QuestionsAnswered {
		return e.QuestionsAnswered > o.QuestionsAnswered
	}
	return e.Date.Before(o.Date)
}
