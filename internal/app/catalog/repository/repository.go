package repository

import (
	"context"
	"errors"

	"shopberries/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ProductRepository определяет методы для работы с товарами в MongoDB
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetWithCategory(ctx context.Context, id primitive.ObjectID) (*entity.ProductWithCategory, error)
	GetAll(ctx context.Context, filter bson.M) ([]entity.ProductWithCategory, error)
	GetFeatured(ctx context.Context, limit int64) ([]entity.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*entity.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// CategoryRepository определяет доступ к категориям
// Сервису каталога нужна только проверка существования по ID
type CategoryRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
}
