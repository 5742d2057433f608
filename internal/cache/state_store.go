package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// StateStore holds pending OAuth state nonces. Consume is atomic (GETDEL)
// so a state can be redeemed at most once even across replicas.
type StateStore struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewStateStore(client *redisv9.Client, ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{client: client, ttl: ttl}
}

func (s *StateStore) Put(ctx context.Context, state string) error {
	if err := s.client.Set(ctx, s.key(state), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis store oauth state failed: %w", err)
	}
	return nil
}

func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	_, err := s.client.GetDel(ctx, s.key(state)).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis consume oauth state failed: %w", err)
	}
	return true, nil
}

func (s *StateStore) key(state string) string {
	return fmt.Sprintf("oauth:state:%s", state)
}
