package monitor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis channel carrying context window alerts for downstream consumers
// (the agent sidecar subscribes to trigger handover)
const AlertChannel = "context:alerts"

// publishes alerts on a Redis pub/sub channel
type RedisAlertPublisher struct {
	client *redis.Client
}

// creates an alert publisher on an existing Redis client
func NewRedisAlertPublisher(client *redis.Client) *RedisAlertPublisher {
	return &RedisAlertPublisher{client: client}
}

// publishes one alert as JSON
func (p *RedisAlertPublisher) Publish(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	if err := p.client.Publish(ctx, AlertChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	return nil
}
