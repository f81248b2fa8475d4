package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/questions"
)

// QuestionBank caches each difficulty band in Redis and falls back to a loader on cache miss.
// Questions are stored as: HSET {prefix}:bank:{difficulty} {questionID} {json}
// Usage counts live apart from the content: HINCRBY {prefix}:bank:used {questionID} 1
type QuestionBank struct {
	client redis.UniversalClient
	loader questions.Bank
	ttl    time.Duration
	keys   keyspace
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionBank(client redis.UniversalClient, loader questions.Bank, prefix string, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		keys:   newKeyspace(prefix),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) LoadBank(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	key := b.bankKey(difficulty)

	if qs, ok := b.fromCache(ctx, key); ok {
		return qs, nil
	}

	result, err, _ := b.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := b.fromCache(ctx, key); ok {
			return qs, nil
		}

		qs, err := b.loader.LoadBank(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		fields := make(map[string]interface{}, len(qs))
		used := make(map[string]interface{}, len(qs))
		for _, q := range qs {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			fields[q.ID] = raw
			used[q.ID] = q.TimesUsed
		}
		if len(fields) > 0 {
			pipe := b.client.TxPipeline()
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, fields)
			// the loader's counts already include every recorded use
			pipe.HSet(ctx, b.usedKey(), used)
			if ttl := b.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				slog.WarnContext(ctx, "redis: cache question bank failed", "difficulty", difficulty, "error", err)
			}
		}
		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// MarkUsed bumps the shared usage count so every instance spreads questions the same way.
func (b *QuestionBank) MarkUsed(ctx context.Context, questionID string) error {
	return b.client.HIncrBy(ctx, b.usedKey(), questionID, 1).Err()
}

// Invalidate drops every cached band.
func (b *QuestionBank) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, len(domain.Difficulties)+1)
	keys = append(keys, b.usedKey())
	for _, d := range domain.Difficulties {
		keys = append(keys, b.bankKey(d))
	}
	return b.client.Del(ctx, keys...).Err()
}

func (b *QuestionBank) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	pipe := b.client.Pipeline()
	band := pipe.HGetAll(ctx, key)
	usage := pipe.HGetAll(ctx, b.usedKey())
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, false
	}
	cached := band.Val()
	if len(cached) == 0 {
		return nil, false
	}
	used := usage.Val()
	qs := make([]domain.Question, 0, len(cached))
	for id, raw := range cached {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			slog.WarnContext(ctx, "redis: drop undecodable cached question", "question_id", id, "error", err)
			continue
		}
		if n, err := strconv.Atoi(used[id]); err == nil {
			q.TimesUsed = n
		}
		qs = append(qs, q)
	}
	// HGETALL order is unspecified.
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs, len(qs) > 0
}

func (b *QuestionBank) bankKey(d domain.Difficulty) string {
	return b.keys.key("bank", string(d))
}

func (b *QuestionBank) usedKey() string {
	return b.keys.key("bank", "used")
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.rndMu.Lock()
	defer b.rndMu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
