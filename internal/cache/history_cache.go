package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"ai-chat-studio/internal/model"
)

// HistoryCache keeps each user's recent-conversation list warm. Entries are
// dropped whenever a conversation for the user is written, so readers only
// ever see what storage returned.
type HistoryCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewHistoryCache(client *redisv9.Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func (c *HistoryCache) GetRecent(ctx context.Context, username string) ([]model.Conversation, bool, error) {
	raw, err := c.client.Get(ctx, c.recentKey(username)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get recent failed: %w", err)
	}

	var conversations []model.Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached conversations failed: %w", err)
	}
	return conversations, true, nil
}

func (c *HistoryCache) SetRecent(ctx context.Context, username string, conversations []model.Conversation) error {
	payload, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("marshal conversation cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.recentKey(username), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set recent failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) Invalidate(ctx context.Context, username string) error {
	if err := c.client.Del(ctx, c.recentKey(username)).Err(); err != nil {
		return fmt.Errorf("redis invalidate recent failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) recentKey(username string) string {
	return fmt.Sprintf("chat:recent:%s", username)
}
