package session

import (
	"context"
	"fmt"

	redisclient "github.com/skillhublearning/skillhub-client/pkg/redis"
)

// RedisStore shares one session record between client instances, for
// kiosk-style deployments where several terminals act as the same user.
// The record is a single hash so Clear stays one atomic DEL.
type RedisStore struct {
	client    *redisclient.Client
	namespace string
	id        string
}

func NewRedisStore(client *redisclient.Client, namespace, id string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return &RedisStore{client: client, namespace: namespace, id: id}, nil
}

func (r *RedisStore) key() string {
	return r.client.SessionKey(r.namespace, r.id)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	values, err := r.client.HGetAll(ctx, r.key())
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.client.HSet(ctx, r.key(), key, value)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key())
}

func (r *RedisStore) Snapshot(ctx context.Context) (map[string]string, error) {
	return r.client.HGetAll(ctx, r.key())
}
