package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupTTL is how long a processed webhook event ID is remembered
const DedupTTL = 48 * time.Hour

// EventDeduper remembers processed gateway event IDs. It only short-circuits
// redeliveries; the order status guard is what keeps fulfillment idempotent.
type EventDeduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

// RedisEventDeduper stores event IDs as expiring Redis keys
type RedisEventDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEventDeduper connects to addr
func NewRedisEventDeduper(addr string) *RedisEventDeduper {
	return &RedisEventDeduper{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    DedupTTL,
	}
}

// Ping checks the connection
func (d *RedisEventDeduper) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (d *RedisEventDeduper) Close() error {
	return d.client.Close()
}

func dedupKey(eventID string) string {
	return fmt.Sprintf("dedup:webhook:%s", eventID)
}

// Seen reports whether eventID was marked processed
func (d *RedisEventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup lookup failed: %w", err)
	}
	return n > 0, nil
}

// MarkProcessed records eventID for DedupTTL
func (d *RedisEventDeduper) MarkProcessed(ctx context.Context, eventID string) error {
	if err := d.client.Set(ctx, dedupKey(eventID), "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("dedup store failed: %w", err)
	}
	return nil
}

// MemoryEventDeduper keeps event IDs in process memory
type MemoryEventDeduper struct {
	ttl  time.Duration
	seen map[string]time.Time
	mu   sync.Mutex
}

// NewMemoryEventDeduper creates an in-process deduper
func NewMemoryEventDeduper() *MemoryEventDeduper {
	return &MemoryEventDeduper{
		ttl:  DedupTTL,
		seen: make(map[string]time.Time),
	}
}

// Seen reports whether eventID was marked within the TTL
func (d *MemoryEventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	at, ok := d.seen[eventID]
	if !ok {
		return false, nil
	}
	if time.Since(at) > d.ttl {
		delete(d.seen, eventID)
		return false, nil
	}
	return true, nil
}

// MarkProcessed records eventID and drops expired entries
func (d *MemoryEventDeduper) MarkProcessed(ctx context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	for id, at := range d.seen {
		if now.Sub(at) > d.ttl {
			delete(d.seen, id)
		}
	}
	d.seen[eventID] = now
	return nil
}
