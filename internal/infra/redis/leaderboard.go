package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"millionaire-service/internal/domain"
)

const (
	dailyRetention  = 48 * time.Hour
	weeklyRetention = 8 * 24 * time.Hour
	// tieBase turns an end time into a member prefix that sorts earlier games higher under ZREVRANGE.
	tieBase = int64(1e13)
)

// Leaderboard ranks finished games in one sorted set per period window.
//
//	ZADD  {prefix}:leaderboard:{period}:{bucket} {score*100+questions} {tie}:{gameID}
//	HSET  {prefix}:leaderboard:entries {gameID} {json}
type Leaderboard struct {
	client redis.UniversalClient
	keys   keyspace
}

func NewLeaderboard(client redis.UniversalClient, prefix string) *Leaderboard {
	return &Leaderboard{client: client, keys: newKeyspace(prefix)}
}

// RecordEntry adds a finished game to every period it belongs to.
func (l *Leaderboard) RecordEntry(ctx context.Context, e domain.LeaderboardEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode leaderboard entry: %w", err)
	}

	member := fmt.Sprintf("%013d:%s", tieBase-e.Date.UnixMilli(), e.GameID)
	rank := float64(e.Score)*100 + float64(e.QuestionsAnswered)

	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, l.entriesKey(), e.GameID, raw)
	for _, p := range domain.Periods {
		key := l.boardKey(p, e.Date)
		pipe.ZAdd(ctx, key, redis.Z{Score: rank, Member: member})
		switch p {
		case domain.PeriodDaily:
			pipe.Expire(ctx, key, dailyRetention)
		case domain.PeriodWeekly:
			pipe.Expire(ctx, key, weeklyRetention)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

// TopEntries returns up to limit entries of the period window containing now.
func (l *Leaderboard) TopEntries(ctx context.Context, period domain.LeaderboardPeriod, now time.Time, limit int) ([]domain.LeaderboardEntry, error) {
	members, err := l.client.ZRevRange(ctx, l.boardKey(period, now), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	if len(members) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = gameIDFromMember(m)
	}
	raws, err := l.client.HMGet(ctx, l.entriesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("get leaderboard entries: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var e domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			continue
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *Leaderboard) boardKey(p domain.LeaderboardPeriod, at time.Time) string {
	return l.keys.key("leaderboard", string(p), p.Bucket(at))
}

func (l *Leaderboard) entriesKey() string {
	return l.keys.key("leaderboard", "entries")
}

func gameIDFromMember(member string) string {
	for i := 0; i < len(member); i++ {
		if member[i] == ':' {
			return member[i+1:]
		}
	}
	return member
}
