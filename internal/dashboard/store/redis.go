package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"opsdesk/pkg/domain"
)

const ackKeyPrefix = "opsdesk:ack:"

// RedisAckStore shares acknowledgements across server instances. Each ack is
// a JSON value under its own key with a TTL.
type RedisAckStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *RedisAckStore {
	return &RedisAckStore{client: client, ttl: ttl}
}

func ackKey(id domain.NotificationID) string {
	return ackKeyPrefix + id.String()
}

func (s *RedisAckStore) Ack(ctx context.Context, id domain.NotificationID, ack Ack) error {
	payload, err := json.Marshal(ack)
	if err != nil {
		return fmt.Errorf("marshal ack: %w", err)
	}
	if err := s.client.Set(ctx, ackKey(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store ack: %w", err)
	}
	return nil
}

// Acked looks every ID up in one pipeline round trip.
func (s *RedisAckStore) Acked(ctx context.Context, ids []domain.NotificationID) (map[domain.NotificationID]Ack, error) {
	out := make(map[domain.NotificationID]Ack, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, ackKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load acks: %w", err)
	}

	for i, cmd := range cmds {
		raw, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load ack %s: %w", ids[i], err)
		}
		var ack Ack
		if err := json.Unmarshal(raw, &ack); err != nil {
			return nil, fmt.Errorf("decode ack %s: %w", ids[i], err)
		}
		out[ids[i]] = ack
	}
	return out, nil
}
