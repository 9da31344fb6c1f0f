package repository

import (
	"context"
	"errors"
	"fmt"

	"shopberries/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type categoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository создает репозиторий категорий
func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &categoryRepository{
		collection: db.Collection("categories"),
	}
}

// GetByID получает категорию по ID
// Используется для проверки существования категории перед мутациями товара
func (r *categoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	filter := bson.M{"_id": id}

	var category entity.Category
	err := r.collection.FindOne(ctx, filter).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}
