package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ContentPublisher/internal/config"
	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

const enabledField = "enabled"

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// FlagStore keeps feature flags in Redis hashes so every process sees the same state.
type FlagStore struct {
	client *redis.Client
	prefix string
}

var _ ports.FlagStore = (*FlagStore)(nil)

// NewFlagStore stores each flag under "<prefix>:<name>".
func NewFlagStore(client *redis.Client, prefix string) *FlagStore {
	return &FlagStore{client: client, prefix: prefix}
}

// UpdateFlag writes the flag state and announces the change on "<prefix>:updated".
func (s *FlagStore) UpdateFlag(ctx context.Context, name string, update ports.FlagUpdate) error {
	if err := s.client.HSet(ctx, s.key(name), enabledField, boolString(update.Enabled)).Err(); err != nil {
		return fmt.Errorf("update flag %s: %w", name, err)
	}

	message, err := json.Marshal(map[string]any{"flag": name, "enabled": update.Enabled})
	if err != nil {
		return fmt.Errorf("marshal flag update: %w", err)
	}
	if err := s.client.Publish(ctx, s.prefix+":updated", message).Err(); err != nil {
		return fmt.Errorf("publish flag update: %w", err)
	}
	return nil
}

// IsEnabled reads the flag state; unknown flags are disabled.
func (s *FlagStore) IsEnabled(ctx context.Context, name string) (bool, error) {
	value, err := s.client.HGet(ctx, s.key(name), enabledField).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read flag %s: %w", name, err)
	}
	return value == "1", nil
}

// Seed writes initial states for flags that do not exist yet.
func (s *FlagStore) Seed(ctx context.Context, flags map[string]bool) error {
	for name, enabled := range flags {
		if err := s.client.HSetNX(ctx, s.key(name), enabledField, boolString(enabled)).Err(); err != nil {
			return fmt.Errorf("seed flag %s: %w", name, err)
		}
	}
	return nil
}

func (s *FlagStore) key(name string) string {
	return s.prefix + ":" + name
}

// AlertPublisher fans performance alerts out on a Redis channel.
type AlertPublisher struct {
	client  *redis.Client
	channel string
}

var _ ports.AlertNotifier = (*AlertPublisher)(nil)

// NewAlertPublisher publishes to channel.
func NewAlertPublisher(client *redis.Client, channel string) *AlertPublisher {
	return &AlertPublisher{client: client, channel: channel}
}

// PublishAlert sends the JSON-encoded alert.
func (p *AlertPublisher) PublishAlert(ctx context.Context, alert domain.PerformanceAlert) error {
	message, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, message).Err(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

func boolString(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
