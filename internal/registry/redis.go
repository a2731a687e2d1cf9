package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"slide2pdf/internal/model"
)

// RedisRegistry stores artifact metadata in redis with a server-side TTL, so
// several replicas sharing an artifacts volume can serve each other's
// downloads. Expired files are reaped by the artifact sweeper, since redis
// only drops the key.
type RedisRegistry struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisRegistry(client *redisv9.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) Put(ctx context.Context, art model.Artifact) error {
	payload, err := json.Marshal(art)
	if err != nil {
		return fmt.Errorf("marshal artifact failed: %w", err)
	}
	if err := r.client.Set(ctx, r.key(art.Kind, art.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set artifact failed: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Claim(ctx context.Context, kind model.ArtifactKind, id string) (*model.Artifact, error) {
	raw, err := r.client.GetDel(ctx, r.key(kind, id)).Result()
	if err == redisv9.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis claim artifact failed: %w", err)
	}

	var art model.Artifact
	if err := json.Unmarshal([]byte(raw), &art); err != nil {
		return nil, fmt.Errorf("unmarshal artifact failed: %w", err)
	}
	return &art, nil
}

func (r *RedisRegistry) Close() {}

func (r *RedisRegistry) key(kind model.ArtifactKind, id string) string {
	return fmt.Sprintf("artifact:%s:%s", kind, id)
}
