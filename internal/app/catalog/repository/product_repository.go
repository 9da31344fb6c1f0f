package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopberries/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	collection *mongo.Collection
	categories *mongo.Collection // Нужна для подстановки категории при чтении
}

// NewProductRepository создает новый репозиторий товаров
// Автоматически создает индексы по category и is_featured для выборок каталога
func NewProductRepository(db *mongo.Database) ProductRepository {
	collection := db.Collection("products")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "category", Value: 1},
		},
		Options: options.Index().SetName("category_idx"),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		// Логируем ошибку, но не прерываем работу - индекс может уже существовать
		fmt.Printf("Warning: failed to create index on category: %v\n", err)
	}

	featuredIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "is_featured", Value: 1},
		},
		Options: options.Index().SetName("is_featured_idx"),
	}

	_, err = collection.Indexes().CreateOne(ctx, featuredIndexModel)
	if err != nil {
		fmt.Printf("Warning: failed to create index on is_featured: %v\n", err)
	}

	return &productRepository{
		collection: collection,
		categories: db.Collection("categories"),
	}
}

// Create создает новый товар в MongoDB
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	if product.Images == nil {
		product.Images = []string{}
	}

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	// Устанавливаем ID из результата вставки
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

// GetByID получает товар по ID без развёртывания категории
func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	filter := bson.M{"_id": id}

	var product entity.Product
	err := r.collection.FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetWithCategory получает товар с развёрнутой категорией
// Категория подставляется при чтении, денормализованная копия не сохраняется
func (r *productRepository) GetWithCategory(ctx context.Context, id primitive.ObjectID) (*entity.ProductWithCategory, error) {
	product, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pwc := &entity.ProductWithCategory{Product: *product}

	var category entity.Category
	err = r.categories.FindOne(ctx, bson.M{"_id": product.CategoryID}).Decode(&category)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	// Висячая ссылка на категорию оставляет пустую категорию в ответе
	pwc.Category = category

	return pwc, nil
}

// GetAll получает товары по фильтру с развёрнутыми категориями
// Фильтр строится через BuildCategoryFilter, пустой фильтр - все товары
func (r *productRepository) GetAll(ctx context.Context, filter bson.M) ([]entity.ProductWithCategory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	categories, err := r.resolveCategories(ctx, products)
	if err != nil {
		return nil, err
	}

	result := make([]entity.ProductWithCategory, 0, len(products))
	for _, p := range products {
		result = append(result, entity.ProductWithCategory{
			Product:  p,
			Category: categories[p.CategoryID],
		})
	}

	return result, nil
}

// GetFeatured получает до limit рекомендуемых товаров
func (r *productRepository) GetFeatured(ctx context.Context, limit int64) ([]entity.Product, error) {
	filter := bson.M{"is_featured": true}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find featured products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode featured products: %w", err)
	}

	return products, nil
}

// Update применяет частичное обновление через $set и возвращает новый документ
// Поля, не вошедшие в fields, остаются нетронутыми
func (r *productRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*entity.Product, error) {
	fields["updated_at"] = time.Now()

	filter := bson.M{"_id": id}
	update := bson.M{"$set": fields}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product entity.Product
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// Delete удаляет товар из MongoDB
// Удаление отсутствующего товара возвращает ErrProductNotFound, не фатальную ошибку
func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Count возвращает общее количество товаров без фильтра
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// resolveCategories загружает категории для набора товаров одним запросом
func (r *productRepository) resolveCategories(ctx context.Context, products []entity.Product) (map[primitive.ObjectID]entity.Category, error) {
	categories := make(map[primitive.ObjectID]entity.Category)
	if len(products) == 0 {
		return categories, nil
	}

	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}

	cursor, err := r.categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve categories: %w", err)
	}
	defer cursor.Close(ctx)

	var found []entity.Category
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	for _, c := range found {
		categories[c.ID] = c
	}

	return categories, nil
}
