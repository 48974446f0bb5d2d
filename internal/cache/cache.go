// Package cache provides the namespaced read-through cache fronting
// repeated queries. Entries live under "namespace:key" Redis keys and whole
// namespaces are evicted after every related mutation.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache namespaces. Each maps to the reads it fronts; the services evict the
// relevant set immediately after a successful commit.
const (
	NamespaceEvents          = "events"
	NamespaceEventsAvailable = "events_available"
	NamespaceEventsUpcoming  = "events_upcoming"
	NamespaceEventCapacity   = "event_capacity"
	NamespaceAttendances     = "attendances"
	NamespaceEventStats      = "event_stats"
	NamespaceParticipants    = "participants"
)

// EventNamespaces are the namespaces touched by any event or counter mutation.
var EventNamespaces = []string{
	NamespaceEvents,
	NamespaceEventsAvailable,
	NamespaceEventsUpcoming,
	NamespaceEventCapacity,
}

// AttendanceNamespaces are the namespaces touched by any attendance mutation.
var AttendanceNamespaces = []string{
	NamespaceAttendances,
	NamespaceEventStats,
}

// Store is the cache contract used by the services.
type Store interface {
	Get(ctx context.Context, namespace, key string, dest any) (bool, error)
	Set(ctx context.Context, namespace, key string, value any) error
	Evict(ctx context.Context, namespaces ...string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore builds a Redis-backed store. A nil client yields a no-op store so
// the service keeps working without a cache.
func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) Store {
	if client == nil {
		logger.Warn("redis client not configured; caching disabled")
		return nopStore{}
	}
	return &redisStore{client: client, ttl: ttl, logger: logger}
}

func cacheKey(namespace, key string) string {
	return namespace + ":" + key
}

func (s *redisStore) Get(ctx context.Context, namespace, key string, dest any) (bool, error) {
	raw, err := s.client.Get(ctx, cacheKey(namespace, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *redisStore) Set(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cacheKey(namespace, key), raw, s.ttl).Err()
}

// Evict removes every entry in the given namespaces by scanning the
// "namespace:*" mask and deleting matches.
func (s *redisStore) Evict(ctx context.Context, namespaces ...string) error {
	for _, ns := range namespaces {
		var cursor uint64
		for {
			keys, next, err := s.client.Scan(ctx, cursor, ns+":*", 100).Result()
			if err != nil {
				return err
			}
			if len(keys) > 0 {
				if err := s.client.Del(ctx, keys...).Err(); err != nil {
					return err
				}
			}
			if next == 0 {
				break
			}
			cursor = next
		}
	}
	return nil
}

type nopStore struct{}

func (nopStore) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (nopStore) Set(context.Context, string, string, any) error         { return nil }
func (nopStore) Evict(context.Context, ...string) error                 { return nil }
