package util

import (
	"context"
	"time"

	"shopberries/internal/app/catalog/entity"
)

// CategoryCache интерфейс кеша категорий
// Используется для dependency injection и упрощения тестирования
type CategoryCache interface {
	GetCategory(ctx context.Context, id string) (*entity.Category, error)
	SetCategory(ctx context.Context, category *entity.Category, ttl time.Duration) error
	DeleteCategory(ctx context.Context, id string) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
