package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopberries/internal/app/catalog/entity"
	"shopberries/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName            = "catalog-service"
	categoryCacheKeyPrefix = "category:"
)

// RedisClient кеширует категории для валидации ссылок на них
// Каждая проверка категории перед мутацией товара сначала идёт в кеш
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromExisting оборачивает уже созданный клиент (используется в тестах)
func NewRedisClientFromExisting(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// GetCategory возвращает категорию из кеша или nil при промахе
func (r *RedisClient) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	data, err := r.client.Get(ctx, categoryCacheKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, "category")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category from cache: %w", err)
	}

	var category entity.Category
	if err := json.Unmarshal(data, &category); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached category: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "category")
	return &category, nil
}

// SetCategory сохраняет категорию в кеш с TTL
func (r *RedisClient) SetCategory(ctx context.Context, category *entity.Category, ttl time.Duration) error {
	data, err := json.Marshal(category)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}

	key := categoryCacheKeyPrefix + category.ID.Hex()
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set category in cache: %w", err)
	}

	return nil
}

// DeleteCategory инвалидирует запись кеша
func (r *RedisClient) DeleteCategory(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, categoryCacheKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete category from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
