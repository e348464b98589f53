package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

const DefaultAlertChannel = "zone-monitor:alerts"

// AlertPublisher fans violation events out over Redis pub/sub as JSON.
type AlertPublisher struct {
	client  *redis.Client
	channel string
}

// NewAlertPublisher creates a publisher on channel, or DefaultAlertChannel
// when channel is empty.
func NewAlertPublisher(client *redis.Client, channel string) *AlertPublisher {
	if channel == "" {
		channel = DefaultAlertChannel
	}
	return &AlertPublisher{client: client, channel: channel}
}

// Publish sends ev to the alert channel.
func (p *AlertPublisher) Publish(ctx context.Context, ev *domain.ViolationEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Channel returns the channel alerts are published on.
func (p *AlertPublisher) Channel() string {
	return p.channel
}
