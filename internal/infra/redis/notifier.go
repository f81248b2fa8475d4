package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"millionaire-service/internal/domain"
)

const publishInterval = 200 * time.Millisecond

// Notification is the payload published on the leaderboard channel.
type Notification struct {
	Event  string                   `json:"event"`
	Period domain.LeaderboardPeriod `json:"period"`
	At     time.Time                `json:"at"`
}

// Notifier announces leaderboard changes to every instance over pub/sub.
type Notifier struct {
	client redis.UniversalClient
	keys   keyspace
}

func NewNotifier(client redis.UniversalClient, prefix string) *Notifier {
	return &Notifier{client: client, keys: newKeyspace(prefix)}
}

// Announce publishes a change for period. Bursts of finished games are throttled to one
// notification per interval across all instances.
func (n *Notifier) Announce(ctx context.Context, period domain.LeaderboardPeriod, at time.Time) (bool, error) {
	ok, err := n.client.SetNX(ctx, n.keys.key("leaderboard", string(period), "published"), at.UnixMilli(), publishInterval).Result()
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return false, nil
	}

	b, err := json.Marshal(Notification{Event: domain.EventNameLeaderboardUpdated, Period: period, At: at})
	if err != nil {
		return false, fmt.Errorf("pubsub: marshal: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel(), b).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Listen delivers notifications until ctx is done.
func (n *Notifier) Listen(ctx context.Context, handle func(context.Context, Notification)) error {
	sub := n.client.Subscribe(ctx, n.channel())
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var note Notification
			if err := json.Unmarshal([]byte(msg.Payload), &note); err != nil {
				slog.WarnContext(ctx, "redis: bad leaderboard notification", "error", err)
				continue
			}
			handle(ctx, note)
		}
	}
}

func (n *Notifier) channel() string {
	return n.keys.key("leaderboard", "updates")
}
