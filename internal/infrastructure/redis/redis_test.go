package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"ContentPublisher/internal/config"
	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNewClientFailsFast(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestFlagStorePropagatesErrors(t *testing.T) {
	t.Parallel()

	client := unreachableClient()
	defer client.Close()

	store := NewFlagStore(client, "feature-flags")
	if got := store.key("hero"); got != "feature-flags:hero" {
		t.Fatalf("unexpected key: %s", got)
	}

	ctx := context.Background()
	if err := store.UpdateFlag(ctx, "hero", ports.FlagUpdate{Enabled: false}); err == nil {
		t.Fatalf("expected update error")
	}
	if _, err := store.IsEnabled(ctx, "hero"); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestAlertPublisherPropagatesErrors(t *testing.T) {
	t.Parallel()

	client := unreachableClient()
	defer client.Close()

	pub := NewAlertPublisher(client, "performance:alerts")
	err := pub.PublishAlert(context.Background(), domain.PerformanceAlert{Metric: domain.MetricLCP})
	if err == nil {
		t.Fatalf("expected publish error")
	}
}

func TestBoolString(t *testing.T) {
	t.Parallel()

	if boolString(true) != "1" || boolString(false) != "0" {
		t.Fatalf("unexpected encoding")
	}
}
