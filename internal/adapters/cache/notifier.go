package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
)

const CelebrationChannel = "habits:celebrations"

type CelebrationEvent struct {
	HabitID string    `json:"habit_id"`
	Name    string    `json:"name"`
	At      time.Time `json:"at"`
}

// RedisNotifier publishes celebrations so any connected front-end can fire
// its effect.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = CelebrationChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, habit domain.Habit) error {
	payload, err := json.Marshal(CelebrationEvent{
		HabitID: habit.ID,
		Name:    habit.Name,
		At:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal celebration: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish celebration: %w", err)
	}
	return nil
}
