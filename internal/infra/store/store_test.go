package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/store"
	"millionaire-service/internal/infra/store/migrations"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.Options{SQLitePath: filepath.Join(t.TempDir(), "millionaire.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := migrations.Run(ctx, s.DB()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func registerPlayer(t *testing.T, s *store.Store, id, email string) domain.Player {
	t.Helper()
	p, err := s.UpsertPlayer(context.Background(), domain.Player{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Company:   "Analytical",
	})
	if err != nil {
		t.Fatalf("upsert player: %v", err)
	}
	return p
}

func TestMigrationsAreRepeatable(t *testing.T) {
	s := openStore(t)
	if err := migrations.Run(context.Background(), s.DB()); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestUpsertPlayerKeepsIdentityByEmail(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first := registerPlayer(t, s, "player-1", "ada@example.com")
	if first.LeadScore != domain.LeadCool {
		t.Fatalf("expected new player to be cool, got %q", first.LeadScore)
	}
	if err := s.UpdateLeadScore(ctx, first.ID, domain.LeadHot); err != nil {
		t.Fatalf("update lead score: %v", err)
	}

	again, err := s.UpsertPlayer(ctx, domain.Player{
		ID:              "player-2",
		FirstName:       "Augusta",
		LastName:        "King",
		Email:           "ada@example.com",
		ProductInterest: []string{"blower-door", "duct-testing"},
		MarketingOptIn:  true,
	})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if again.ID != "player-1" {
		t.Fatalf("expected original id, got %q", again.ID)
	}
	if again.FirstName != "Augusta" || !again.MarketingOptIn {
		t.Fatalf("expected refreshed fields, got %+v", again)
	}
	if len(again.ProductInterest) != 2 || again.ProductInterest[1] != "duct-testing" {
		t.Fatalf("unexpected product interest %v", again.ProductInterest)
	}
	if again.LeadScore != domain.LeadHot {
		t.Fatalf("re-registration must keep lead score, got %q", again.LeadScore)
	}

	if _, err := s.GetPlayer(ctx, "nobody"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestFinishGameRecordsOnce(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	registerPlayer(t, s, "player-1", "ada@example.com")

	started := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	if err := s.StartGame(ctx, "game-1", "player-1", started); err != nil {
		t.Fatalf("start: %v", err)
	}

	rec := domain.GameRecord{
		GameID:            "game-1",
		PlayerID:          "player-1",
		FinalScore:        1000,
		QuestionsAnswered: 7,
		CorrectAnswers:    6,
		PrizeLevelLabel:   "$2,000",
		LifelinesUsed:     []string{"50-50"},
		Status:            domain.StatusCompleted,
		StartedAt:         started,
		EndedAt:           started.Add(5 * time.Minute),
	}
	ok, err := s.FinishGame(ctx, rec)
	if err != nil || !ok {
		t.Fatalf("finish: ok=%v err=%v", ok, err)
	}

	replay := rec
	replay.FinalScore = 1000000
	replay.Status = domain.StatusWon
	ok, err = s.FinishGame(ctx, replay)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if ok {
		t.Fatalf("second finish must not apply")
	}

	got, err := s.GetGame(ctx, "game-1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.Status != domain.StatusCompleted || got.FinalScore != 1000 {
		t.Fatalf("unexpected record %+v", got)
	}
	if !got.EndedAt.Equal(rec.EndedAt) {
		t.Fatalf("ended at = %v, want %v", got.EndedAt, rec.EndedAt)
	}
	if _, err := s.GetGame(ctx, "missing"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestQuestionResultsStoredOncePerNumber(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	result := domain.QuestionResult{
		GameID:         "game-1",
		QuestionNumber: 1,
		QuestionID:     "easy-001",
		Prompt:         "Which way does heat flow?",
		Options:        []string{"Hot to cold", "Cold to hot", "Up only", "Down only"},
		CorrectAnswer:  "Hot to cold",
		SelectedAnswer: "Hot to cold",
		Correct:        true,
		TimeSpent:      12 * time.Second,
		Difficulty:     domain.DifficultyEasy,
		Lifelines:      []domain.Lifeline{domain.LifelinePhoneAFriend},
		AnsweredAt:     time.Date(2026, 10, 17, 9, 1, 0, 0, time.UTC),
	}
	if err := s.SaveQuestionResult(ctx, result); err != nil {
		t.Fatalf("save: %v", err)
	}
	dup := result
	dup.SelectedAnswer = "Up only"
	if err := s.SaveQuestionResult(ctx, dup); err != nil {
		t.Fatalf("save duplicate: %v", err)
	}

	got, err := s.QuestionResults(ctx, "game-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one result, got %d", len(got))
	}
	if got[0].SelectedAnswer != "Hot to cold" || got[0].TimeSpent != 12*time.Second {
		t.Fatalf("unexpected result %+v", got[0])
	}
	if len(got[0].Options) != 4 || got[0].Lifelines[0] != domain.LifelinePhoneAFriend {
		t.Fatalf("options or lifelines lost: %+v", got[0])
	}
}

func TestLeaderboardOrderingAndWindows(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	now := time.Date(2026, 10, 17, 18, 0, 0, 0, time.UTC) // Saturday

	entries := []domain.LeaderboardEntry{
		{GameID: "late-tie", PlayerName: "B", Score: 1000, QuestionsAnswered: 6, Date: now.Add(-time.Hour)},
		{GameID: "early-tie", PlayerName: "A", Score: 1000, QuestionsAnswered: 6, Date: now.Add(-2 * time.Hour)},
		{GameID: "more-questions", PlayerName: "C", Score: 1000, QuestionsAnswered: 9, Date: now.Add(-30 * time.Minute)},
		{GameID: "zero", PlayerName: "D", Score: 0, QuestionsAnswered: 1, Date: now.Add(-10 * time.Minute)},
		{GameID: "monday", PlayerName: "E", Score: 32000, QuestionsAnswered: 11, Date: time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)},
		{GameID: "last-week", PlayerName: "F", Score: 1000000, QuestionsAnswered: 15, Won: true, Date: time.Date(2026, 10, 11, 8, 0, 0, 0, time.UTC)},
	}
	for _, e := range entries {
		if err := s.RecordEntry(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.GameID, err)
		}
	}
	if err := s.RecordEntry(ctx, entries[0]); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	daily, err := s.TopEntries(ctx, domain.PeriodDaily, now, 10)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	want := []string{"more-questions", "early-tie", "late-tie", "zero"}
	if len(daily) != len(want) {
		t.Fatalf("daily has %d entries, want %d", len(daily), len(want))
	}
	for i, id := range want {
		if daily[i].GameID != id || daily[i].Rank != i+1 {
			t.Fatalf("daily[%d] = %s rank %d, want %s rank %d", i, daily[i].GameID, daily[i].Rank, id, i+1)
		}
	}

	weekly, err := s.TopEntries(ctx, domain.PeriodWeekly, now, 10)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if len(weekly) != 5 || weekly[0].GameID != "monday" {
		t.Fatalf("weekly should start on Monday and exclude Sunday's game: %+v", weekly)
	}

	allTime, err := s.TopEntries(ctx, domain.PeriodAllTime, now, 2)
	if err != nil {
		t.Fatalf("all-time: %v", err)
	}
	if len(allTime) != 2 || allTime[0].GameID != "last-week" || !allTime[0].Won {
		t.Fatalf("unexpected all-time top: %+v", allTime)
	}
}

func TestCreatePrizeOncePerType(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	prize := domain.Prize{
		ID:        "prize-1",
		PlayerID:  "player-1",
		GameID:    "game-1",
		Type:      "swag",
		Code:      "TIER_3-1792227600000-AB12",
		ExpiresAt: now.AddDate(0, 0, 180),
		CreatedAt: now,
	}
	first, err := s.CreatePrize(ctx, prize)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	again := prize
	again.ID = "prize-2"
	again.Code = "TIER_3-1792227600001-CD34"
	second, err := s.CreatePrize(ctx, again)
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if second.Code != first.Code {
		t.Fatalf("expected existing prize %s, got %s", first.Code, second.Code)
	}

	if _, ok, err := s.FindPrize(ctx, "player-1", "discount"); err != nil || ok {
		t.Fatalf("unexpected discount prize: ok=%v err=%v", ok, err)
	}
}

func TestQuestionBankImportAndUsage(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	qs := []domain.Question{
		{ID: "easy-1", Prompt: "Q1?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a", Difficulty: domain.DifficultyEasy},
		{ID: "easy-2", Prompt: "Q2?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b", Difficulty: domain.DifficultyEasy},
		{ID: "hard-1", Prompt: "Q3?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "c", Difficulty: domain.DifficultyHard},
	}
	n, err := s.ImportQuestions(ctx, qs)
	if err != nil || n != 3 {
		t.Fatalf("import: n=%d err=%v", n, err)
	}

	if err := s.MarkUsed(ctx, "easy-1"); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	qs[0].Prompt = "Q1 reworded?"
	if _, err := s.ImportQuestions(ctx, qs[:1]); err != nil {
		t.Fatalf("re-import: %v", err)
	}

	easy, err := s.LoadBank(ctx, domain.DifficultyEasy)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(easy) != 2 {
		t.Fatalf("expected 2 easy questions, got %d", len(easy))
	}
	if easy[0].ID != "easy-2" || easy[1].TimesUsed != 1 || easy[1].Prompt != "Q1 reworded?" {
		t.Fatalf("unexpected bank order or usage: %+v", easy)
	}

	generated := domain.Question{ID: "gen_1", Prompt: "Q4?", Options: []string{"w", "x", "y", "z"}, CorrectAnswer: "z", Difficulty: domain.DifficultyExpert}
	if err := s.SaveQuestion(ctx, generated); err != nil {
		t.Fatalf("save generated: %v", err)
	}
	counts, err := s.CountQuestions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[domain.DifficultyEasy] != 2 || counts[domain.DifficultyExpert] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}

	bad := []domain.Question{{ID: "bad", Prompt: "?", Options: []string{"a", "a", "b", "c"}, CorrectAnswer: "a", Difficulty: domain.DifficultyEasy}}
	if _, err := s.ImportQuestions(ctx, bad); !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected malformed question error, got %v", err)
	}
}

func TestAdminAggregates(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	registerPlayer(t, s, "player-1", "ada@example.com")
	registerPlayer(t, s, "player-2", "grace@example.com")
	if err := s.UpdateLeadScore(ctx, "player-2", domain.LeadWarm); err != nil {
		t.Fatalf("lead score: %v", err)
	}

	started := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	finish := func(id, player string, score int, status domain.GameStatus) {
		t.Helper()
		if _, err := s.FinishGame(ctx, domain.GameRecord{
			GameID: id, PlayerID: player, FinalScore: score, Status: status,
			StartedAt: started, EndedAt: started.Add(time.Minute),
		}); err != nil {
			t.Fatalf("finish %s: %v", id, err)
		}
	}
	finish("game-1", "player-1", 1000, domain.StatusCompleted)
	finish("game-2", "player-1", 0, domain.StatusCompleted)
	finish("game-3", "player-2", 8000, domain.StatusWalkedAway)
	if err := s.StartGame(ctx, "game-4", "player-2", started.Add(time.Hour)); err != nil {
		t.Fatalf("start: %v", err)
	}

	avg, err := s.AverageScore(ctx)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg.String() != "500" {
		t.Fatalf("average = %s, want 500", avg)
	}

	games, err := s.CountGames(ctx, time.Time{})
	if err != nil || games != 4 {
		t.Fatalf("games = %d err=%v", games, err)
	}
	later, err := s.CountGames(ctx, started.Add(30*time.Minute))
	if err != nil || later != 1 {
		t.Fatalf("games since = %d err=%v", later, err)
	}

	scores, err := s.LeadScoreCounts(ctx)
	if err != nil {
		t.Fatalf("lead scores: %v", err)
	}
	if scores[domain.LeadCool] != 1 || scores[domain.LeadWarm] != 1 || scores[domain.LeadHot] != 0 {
		t.Fatalf("unexpected lead scores %v", scores)
	}

	recent, err := s.RecentGames(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "game-4" || recent[0].Player != "Ada L." {
		t.Fatalf("unexpected recent games %+v", recent)
	}

	leads, err := s.Leads(ctx)
	if err != nil {
		t.Fatalf("leads: %v", err)
	}
	best := map[string]domain.Lead{}
	for _, l := range leads {
		best[l.Player.ID] = l
	}
	if best["player-1"].GamesPlayed != 2 || best["player-1"].BestScore != 1000 {
		t.Fatalf("unexpected lead for player-1: %+v", best["player-1"])
	}
	if best["player-2"].GamesPlayed != 2 || best["player-2"].BestScore != 8000 {
		t.Fatalf("unexpected lead for player-2: %+v", best["player-2"])
	}
}
