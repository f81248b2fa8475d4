package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/questions"
)

// QuestionBank caches each difficulty band with a TTL to avoid repeated DB hits.
type QuestionBank struct {
	loader questions.Bank
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[domain.Difficulty]cachedBand
}

type cachedBand struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(loader questions.Bank, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Difficulty]cachedBand),
	}
}

func (b *QuestionBank) LoadBank(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[difficulty]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(string(difficulty), func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[difficulty]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		qs, err := b.loader.LoadBank(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.cache[difficulty] = cachedBand{
			questions: qs,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// MarkUsed bumps the cached count of a question. Bands handed out earlier are not modified.
func (b *QuestionBank) MarkUsed(_ context.Context, questionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for d, entry := range b.cache {
		for i, q := range entry.questions {
			if q.ID != questionID {
				continue
			}
			qs := append([]domain.Question(nil), entry.questions...)
			qs[i].TimesUsed++
			b.cache[d] = cachedBand{questions: qs, expiresAt: entry.expiresAt}
			return nil
		}
	}
	return nil
}

// Invalidate drops every cached band, e.g. after an import.
func (b *QuestionBank) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = make(map[domain.Difficulty]cachedBand)
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}

// StaticBankLoader serves a fixed set of questions, such as the built-in bank.
type StaticBankLoader struct {
	bands map[domain.Difficulty][]domain.Question
}

func NewStaticBankLoader(qs []domain.Question) *StaticBankLoader {
	bands := make(map[domain.Difficulty][]domain.Question)
	for _, q := range qs {
		bands[q.Difficulty] = append(bands[q.Difficulty], q.Clone())
	}
	return &StaticBankLoader{bands: bands}
}

func (l *StaticBankLoader) LoadBank(_ context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	band, ok := l.bands[difficulty]
	if !ok || len(band) == 0 {
		return nil, domain.ErrNoQuestions
	}
	out := make([]domain.Question, len(band))
	for i, q := range band {
		out[i] = q.Clone()
	}
	return out, nil
}
