package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"charity-events/internal/model"
)

// ErrMiss means the listing is not cached (or has expired).
var ErrMiss = errors.New("cache miss")

const (
	eventsKey     = "listing:events:active"
	categoriesKey = "listing:categories"
)

type ListingCache interface {
	GetEvents(ctx context.Context) ([]*model.Event, error)
	SetEvents(ctx context.Context, events []*model.Event) error
	GetCategories(ctx context.Context) ([]*model.Category, error)
	SetCategories(ctx context.Context, categories []*model.Category) error
	// Invalidate drops both listings, e.g. after the data-entry process ran.
	Invalidate(ctx context.Context) error
}

type RedisListingCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListingCache(client *redis.Client, ttl time.Duration) ListingCache {
	return &RedisListingCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

func (m *RedisListingCacheImpl) GetEvents(ctx context.Context) ([]*model.Event, error) {
	var events []*model.Event
	if err := m.get(ctx, eventsKey, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (m *RedisListingCacheImpl) SetEvents(ctx context.Context, events []*model.Event) error {
	return m.set(ctx, eventsKey, events)
}

func (m *RedisListingCacheImpl) GetCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	if err := m.get(ctx, categoriesKey, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (m *RedisListingCacheImpl) SetCategories(ctx context.Context, categories []*model.Category) error {
	return m.set(ctx, categoriesKey, categories)
}

func (m *RedisListingCacheImpl) Invalidate(ctx context.Context) error {
	return m.client.Del(ctx, eventsKey, categoriesKey).Err()
}

func (m *RedisListingCacheImpl) get(ctx context.Context, key string, v interface{}) error {
	raw, err := m.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (m *RedisListingCacheImpl) set(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return m.client.Set(ctx, key, raw, m.ttl).Err()
}
