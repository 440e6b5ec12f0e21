package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mekongmart/search-service/internal/domain"
)

// SuggestionCache keeps recent suggestion responses in redis. A nil cache,
// or a cache built over a nil client, is valid and behaves as a permanent
// miss, so callers never have to branch on whether caching is configured.
type SuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSuggestionCache(client *redis.Client, ttl time.Duration) *SuggestionCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &SuggestionCache{client: client, ttl: ttl}
}

// suggestCacheKey keys on both the raw and the folded prefix: the suggester
// ranks raw-prefix matches first, so "Cà" and "ca" can produce differently
// ordered lists even though they fold identically.
func suggestCacheKey(raw, folded string, limit int) string {
	return fmt.Sprintf("search:suggest:%s:%s:%d", raw, folded, limit)
}

func (c *SuggestionCache) Get(ctx context.Context, key string) ([]domain.SuggestionItem, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var items []domain.SuggestionItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *SuggestionCache) Set(ctx context.Context, key string, items []domain.SuggestionItem) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, c.ttl)
}
