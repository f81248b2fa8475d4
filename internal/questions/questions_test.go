package questions_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
	"millionaire-service/internal/questions"
)

type bankFunc func(ctx context.Context, d domain.Difficulty) ([]domain.Question, error)

func (f bankFunc) LoadBank(ctx context.Context, d domain.Difficulty) ([]domain.Question, error) {
	return f(ctx, d)
}

type usageLog struct{ ids []string }

func (u *usageLog) MarkUsed(_ context.Context, id string) error {
	u.ids = append(u.ids, id)
	return nil
}

func question(id string, d domain.Difficulty, used int) domain.Question {
	return domain.Question{
		ID:            id,
		Prompt:        "Prompt " + id,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "B",
		Difficulty:    d,
		Category:      "Test",
		TimesUsed:     used,
	}
}

func TestPoolPrefersLeastUsedOfBand(t *testing.T) {
	var asked []domain.Difficulty
	bank := bankFunc(func(_ context.Context, d domain.Difficulty) ([]domain.Question, error) {
		asked = append(asked, d)
		return []domain.Question{
			question("m1", d, 4),
			question("m2", d, 1),
			question("m3", d, 2),
		}, nil
	})
	usage := &usageLog{}
	pool := questions.NewPool(bank, usage, game.NewRandom(1))

	q, err := pool.Question(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if q.ID != "m2" {
		t.Fatalf("expected least used m2, got %s", q.ID)
	}
	if asked[0] != domain.DifficultyMedium {
		t.Fatalf("level 7 should draw from medium, got %s", asked[0])
	}
	if len(usage.ids) != 1 || usage.ids[0] != "m2" {
		t.Fatalf("usage not recorded: %v", usage.ids)
	}

	q, _ = pool.Question(context.Background(), 7, map[string]struct{}{"m2": {}})
	if q.ID != "m3" {
		t.Fatalf("expected m3 once m2 is excluded, got %s", q.ID)
	}
}

// countedBank reflects recorded uses in the counts it serves, like the cached banks do.
type countedBank struct {
	used map[string]int
}

func (b *countedBank) LoadBank(_ context.Context, d domain.Difficulty) ([]domain.Question, error) {
	return []domain.Question{
		question("m1", d, b.used["m1"]),
		question("m2", d, b.used["m2"]),
		question("m3", d, b.used["m3"]),
	}, nil
}

func (b *countedBank) MarkUsed(_ context.Context, id string) error {
	b.used[id]++
	return nil
}

func TestPoolCountsEachUseOnce(t *testing.T) {
	bank := &countedBank{used: map[string]int{"m1": 9, "m2": 1, "m3": 4}}
	pool := questions.NewPool(bank, bank, game.NewRandom(1))

	// m2 climbs 1, 2, 3 and stays below m3's 4 while each pick is counted once.
	for i := 0; i < 3; i++ {
		q, err := pool.Question(context.Background(), 7, nil)
		if err != nil {
			t.Fatalf("pick %d: %v", i, err)
		}
		if q.ID != "m2" {
			t.Fatalf("pick %d: expected m2, got %s (used %v)", i, q.ID, bank.used)
		}
	}
	if bank.used["m2"] != 4 {
		t.Fatalf("expected m2 used 4 times, got %d", bank.used["m2"])
	}
}

func TestPoolWithoutRecorderCountsItsOwnPicks(t *testing.T) {
	bank := bankFunc(func(_ context.Context, d domain.Difficulty) ([]domain.Question, error) {
		return []domain.Question{question("e1", d, 0), question("e2", d, 1)}, nil
	})
	pool := questions.NewPool(bank, nil, game.NewRandom(1))

	first, _ := pool.Question(context.Background(), 1, nil)
	second, _ := pool.Question(context.Background(), 1, map[string]struct{}{"e2": {}})
	third, _ := pool.Question(context.Background(), 1, nil)
	if first.ID != "e1" || second.ID != "e1" || third.ID != "e2" {
		t.Fatalf("expected e1, e1, e2; got %s, %s, %s", first.ID, second.ID, third.ID)
	}
}

func TestPoolSkipsExcluded(t *testing.T) {
	bank := bankFunc(func(_ context.Context, d domain.Difficulty) ([]domain.Question, error) {
		return []domain.Question{question("e1", d, 0), question("e2", d, 0)}, nil
	})
	pool := questions.NewPool(bank, nil, game.NewRandom(1))

	_, err := pool.Question(context.Background(), 1, map[string]struct{}{"e1": {}, "e2": {}})
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestChainFallsThrough(t *testing.T) {
	broken := sourceFunc(func(context.Context, int, map[string]struct{}) (domain.Question, error) {
		return domain.Question{}, errors.New("generator offline")
	})
	malformed := sourceFunc(func(context.Context, int, map[string]struct{}) (domain.Question, error) {
		q := question("bad", domain.DifficultyEasy, 0)
		q.CorrectAnswer = "Z"
		return q, nil
	})
	good := sourceFunc(func(context.Context, int, map[string]struct{}) (domain.Question, error) {
		return question("good", domain.DifficultyEasy, 0), nil
	})

	q, err := questions.Chain{broken, malformed, good}.Question(context.Background(), 1, nil)
	if err != nil || q.ID != "good" {
		t.Fatalf("expected the third source to answer, got %v %v", q.ID, err)
	}

	_, err = questions.Chain{broken, malformed}.Question(context.Background(), 1, nil)
	if err == nil || !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected joined errors, got %v", err)
	}
}

type sourceFunc func(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error)

func (f sourceFunc) Question(ctx context.Context, level int, exclude map[string]struct{}) (domain.Question, error) {
	return f(ctx, level, exclude)
}

type generatorFunc func(ctx context.Context, level int, d domain.Difficulty, avoid []string) (domain.Question, error)

func (f generatorFunc) GenerateQuestion(ctx context.Context, level int, d domain.Difficulty, avoid []string) (domain.Question, error) {
	return f(ctx, level, d, avoid)
}

type savedQuestions struct{ qs []domain.Question }

func (s *savedQuestions) SaveQuestion(_ context.Context, q domain.Question) error {
	s.qs = append(s.qs, q)
	return nil
}

func TestGeneratedQuestionsAreSaved(t *testing.T) {
	saved := &savedQuestions{}
	gen := generatorFunc(func(context.Context, int, domain.Difficulty, []string) (domain.Question, error) {
		return question("", domain.DifficultyEasy, 0), nil
	})
	src := questions.NewGenerated(gen, saved)

	q, err := src.Question(context.Background(), 11, nil)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(q.ID, "gen_") {
		t.Fatalf("expected a generated id, got %q", q.ID)
	}
	if q.Difficulty != domain.DifficultyHard {
		t.Fatalf("difficulty must follow the level, got %s", q.Difficulty)
	}
	if len(saved.qs) != 1 || saved.qs[0].ID != q.ID {
		t.Fatalf("generated question not saved: %+v", saved.qs)
	}
}

func TestGeneratedRejectsMalformed(t *testing.T) {
	saved := &savedQuestions{}
	gen := generatorFunc(func(context.Context, int, domain.Difficulty, []string) (domain.Question, error) {
		q := question("x", domain.DifficultyEasy, 0)
		q.Options = []string{"A", "A", "B", "C"}
		return q, nil
	})
	if _, err := questions.NewGenerated(gen, saved).Question(context.Background(), 1, nil); !errors.Is(err, domain.ErrMalformedQuestion) {
		t.Fatalf("expected malformed error, got %v", err)
	}
	if len(saved.qs) != 0 {
		t.Fatalf("malformed question must not be saved")
	}
}

func TestDefaultBankCoversEveryLevel(t *testing.T) {
	bank := questions.DefaultBank()
	perBand := map[domain.Difficulty]int{}
	for _, q := range bank {
		perBand[q.Difficulty]++
	}
	need := map[domain.Difficulty]int{
		domain.DifficultyEasy:   5,
		domain.DifficultyMedium: 4,
		domain.DifficultyHard:   3,
		domain.DifficultyExpert: 3,
	}
	for d, n := range need {
		if perBand[d] < n {
			t.Fatalf("%s band has %d questions, a single game needs %d", d, perBand[d], n)
		}
	}
}

func TestParseBankRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"missing id": `questions:
  - question: "Q?"
    options: ["A", "B", "C", "D"]
    correctAnswer: "A"
    difficulty: easy
`,
		"bad difficulty": `questions:
  - id: q1
    question: "Q?"
    options: ["A", "B", "C", "D"]
    correctAnswer: "A"
    difficulty: trivial
`,
		"three options": `questions:
  - id: q1
    question: "Q?"
    options: ["A", "B", "C"]
    correctAnswer: "A"
    difficulty: easy
`,
		"duplicate id": `questions:
  - id: q1
    question: "Q?"
    options: ["A", "B", "C", "D"]
    correctAnswer: "A"
    difficulty: easy
  - id: q1
    question: "Q2?"
    options: ["A", "B", "C", "D"]
    correctAnswer: "B"
    difficulty: easy
`,
	}
	for name, raw := range cases {
		if _, err := questions.ParseBank(strings.NewReader(raw)); !errors.Is(err, domain.ErrMalformedQuestion) {
			t.Fatalf("%s: expected malformed error, got %v", name, err)
		}
	}
}

type failingUsage struct{}

func (failingUsage) MarkUsed(context.Context, string) error { return errors.New("db down") }

func TestUsagesRecordsEverywhere(t *testing.T) {
	first, second := &usageLog{}, &usageLog{}
	err := questions.Usages{first, failingUsage{}, second}.MarkUsed(context.Background(), "q1")
	if err == nil {
		t.Fatalf("expected the failing recorder's error")
	}
	if len(first.ids) != 1 || len(second.ids) != 1 {
		t.Fatalf("every recorder must be called, got %v %v", first.ids, second.ids)
	}
}
