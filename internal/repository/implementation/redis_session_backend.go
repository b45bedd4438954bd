package implementation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"heystack-be/internal/repository/contract"
	"heystack-be/pkg/store"
)

// RedisSessionBackend stores all sessions in one hash, field = sender,
// value = session JSON
type RedisSessionBackend struct {
	rdb *redis.Client
	key string
}

func NewRedisSessionBackend(rdb *redis.Client, key string) contract.SessionBackend {
	return &RedisSessionBackend{rdb: rdb, key: key}
}

func (b *RedisSessionBackend) Load(ctx context.Context) (map[string]*store.Session, error) {
	fields, err := b.rdb.HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", b.key, err)
	}

	sessions := make(map[string]*store.Session, len(fields))
	var bad []string
	for sender, raw := range fields {
		s := &store.Session{}
		if err := json.Unmarshal([]byte(raw), s); err != nil {
			bad = append(bad, sender)
			continue
		}
		sessions[sender] = s
	}
	if len(bad) > 0 {
		return sessions, fmt.Errorf("undecodable sessions %v: %w", bad, contract.ErrCorruptState)
	}
	return sessions, nil
}

// Save sets one hash field per given sender in a single HSET
func (b *RedisSessionBackend) Save(ctx context.Context, sessions map[string]*store.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(sessions))
	for sender, s := range sessions {
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", sender, err)
		}
		values[sender] = string(raw)
	}

	if err := b.rdb.HSet(ctx, b.key, values).Err(); err != nil {
		return fmt.Errorf("save sessions to %s: %w", b.key, err)
	}
	return nil
}

func (b *RedisSessionBackend) Close() error {
	return b.rdb.Close()
}
