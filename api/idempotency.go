package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

const dedupeKeyPrefix = "cmd"

// RedisDeduper stores seen idempotency keys in Redis so retried command
// batches are not applied twice, even across restarts of the API process.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(boardID, key string) string {
	return fmt.Sprintf("%s:%s:%s", boardID, dedupeKeyPrefix, key)
}

// AddMany claims every key for boardID with one pipelined SETNX round trip.
// The result reports, per key, whether this call claimed it; false means the
// key was seen within the TTL. A claim lives for the deduper's TTL.
func (r *RedisDeduper) AddMany(ctx context.Context, boardID string, keys []string) ([]bool, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	claims := make([]*redis.BoolCmd, len(keys))
	if _, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			claims[i] = pipe.SetNX(ctx, r.key(boardID, key), 1, r.ttl)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("claim idempotency keys: %w", err)
	}

	fresh := make([]bool, len(keys))
	for i, claim := range claims {
		ok, err := claim.Result()
		if err != nil {
			return nil, fmt.Errorf("claim idempotency key %q: %w", keys[i], err)
		}
		fresh[i] = ok
	}
	return fresh, nil
}

// dedupe reports, per command, whether it should be applied. Only keys
// supplied by the client are checked; generated keys are always fresh. When
// the deduper fails every command goes through.
func dedupe(ctx context.Context, deduper Deduper, boardID string, cmds []domain.Command, logger *log.Logger) []bool {
	fresh := make([]bool, len(cmds))
	for i := range fresh {
		fresh[i] = true
	}
	if deduper == nil {
		return fresh
	}

	keys := make([]string, 0, len(cmds))
	idx := make([]int, 0, len(cmds))
	for i, cmd := range cmds {
		if cmd.IdempotencyKey != "" {
			keys = append(keys, cmd.IdempotencyKey)
			idx = append(idx, i)
		}
	}
	if len(keys) == 0 {
		return fresh
	}

	added, err := deduper.AddMany(ctx, boardID, keys)
	if err != nil {
		logger.WithError(err).WithField("keys", len(keys)).Warn("deduper unavailable; applying commands unchecked")
		return fresh
	}
	for j, i := range idx {
		fresh[i] = added[j]
	}
	return fresh
}
