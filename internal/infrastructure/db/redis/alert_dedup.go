package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

const defaultDedupTTL = 24 * time.Hour

// AlertDedup remembers delivered alerts in Redis. A key identifies the source
// record that raised the alert, so it only matches when that same record is
// replayed to a monitor without state for the entity.
// Key format: alert:<entity_id>:<kind>:<source_unix_ms>
type AlertDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAlertDedup creates an AlertDedup wrapping the given Redis client. A
// non-positive ttl selects the default of 24h.
func NewAlertDedup(client *redis.Client, ttl time.Duration) *AlertDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &AlertDedup{client: client, ttl: ttl}
}

// IsDuplicate reports whether the record behind ev has already been alerted.
func (d *AlertDedup) IsDuplicate(ctx context.Context, ev *domain.ViolationEvent) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(ev)).Result()
	if err != nil {
		return false, fmt.Errorf("alert dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records the record behind ev as alerted.
func (d *AlertDedup) Mark(ctx context.Context, ev *domain.ViolationEvent) error {
	return d.client.Set(ctx, dedupKey(ev), ev.ID, d.ttl).Err()
}

func dedupKey(ev *domain.ViolationEvent) string {
	return fmt.Sprintf("alert:%s:%s:%d", ev.EntityID, ev.Kind, ev.SourceTimestamp.UnixMilli())
}
