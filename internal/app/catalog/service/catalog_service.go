package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopberries/internal/app/catalog/entity"
	"shopberries/internal/app/catalog/repository"
	"shopberries/internal/app/catalog/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidProductID = errors.New("invalid product id")
)

// Время жизни записи в кеше категорий
// Категории меняются редко, но TTL ограничивает устаревание без инвалидации
const categoryCacheTTL = 10 * time.Minute

// CatalogService обрабатывает бизнес-логику каталога товаров
// Координирует валидацию категории, конвейер загрузки изображений,
// репозитории MongoDB, Redis кеш и Kafka producer
type CatalogService struct {
	categoryRepo  repository.CategoryRepository
	productRepo   repository.ProductRepository
	pipeline      *ImagePipeline
	cache         util.CategoryCache
	kafkaProducer util.MessagePublisher
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	pipeline *ImagePipeline,
	cache util.CategoryCache,
	kafkaProducer util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo:  categoryRepo,
		productRepo:   productRepo,
		pipeline:      pipeline,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// ListProducts получает товары с развёрнутыми категориями
// rawCategories - необязательный список ID категорий через запятую из query
// Пустая выборка - успех с пустым массивом, не ошибка
func (s *CatalogService) ListProducts(ctx context.Context, rawCategories string) ([]entity.ProductWithCategory, error) {
	filter := repository.BuildCategoryFilter(rawCategories)

	products, err := s.productRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetProduct получает товар по ID с развёрнутой категорией
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.ProductWithCategory, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidProductID
	}

	product, err := s.productRepo.GetWithCategory(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// CreateProduct создает новый товар
// Порядок строгий: валидация категории, загрузка обязательного основного
// изображения, затем сохранение. Любая ошибка до записи оставляет
// хранилище данных нетронутым
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest, image *entity.UploadedFile) (*entity.Product, error) {
	category, err := s.validateCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.pipeline.IngestOne(ctx, image)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:            req.Name,
		Description:     req.Description,
		RichDescription: req.RichDescription,
		Image:           imageURL,
		Images:          []string{},
		Brand:           req.Brand,
		Price:           req.Price,
		CategoryID:      category.ID,
		CountInStock:    req.CountInStock,
		Rating:          req.Rating,
		NumReviews:      req.NumReviews,
		IsFeatured:      req.IsFeatured,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_CREATED", product)

	return product, nil
}

// UpdateProduct применяет частичное обновление товара
// Обновляются только явно переданные поля из белого списка DTO.
// Изображения на этом пути не трогаются - основное изображение задаётся
// только при создании, галерея через UpdateGallery
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidProductID
	}

	category, err := s.validateCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	fields := bson.M{"category": category.ID}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.RichDescription != nil {
		fields["rich_description"] = *req.RichDescription
	}
	if req.Brand != nil {
		fields["brand"] = *req.Brand
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.CountInStock != nil {
		fields["count_in_stock"] = *req.CountInStock
	}
	if req.Rating != nil {
		fields["rating"] = *req.Rating
	}
	if req.NumReviews != nil {
		fields["num_reviews"] = *req.NumReviews
	}
	if req.IsFeatured != nil {
		fields["is_featured"] = *req.IsFeatured
	}

	product, err := s.productRepo.Update(ctx, objectID, fields)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_UPDATED", product)

	return product, nil
}

// UpdateGallery заменяет галерею товара целиком
// Все файлы сначала загружаются в blob-хранилище в порядке отправки,
// запись в MongoDB происходит один раз после завершения всех загрузок.
// Пустой набор файлов очищает галерею - это намеренное поведение
func (s *CatalogService) UpdateGallery(ctx context.Context, id string, files []*entity.UploadedFile) (*entity.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidProductID
	}

	urls, err := s.pipeline.IngestMany(ctx, files)
	if err != nil {
		// Батч прерван, товар не изменён. Загруженные до сбоя файлы
		// остаются в хранилище без компенсирующего удаления
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, objectID, bson.M{"images": urls})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update gallery: %w", err)
	}

	s.publishProductEvent(ctx, "PRODUCT_UPDATED", product)

	return product, nil
}

// DeleteProduct удаляет товар без предварительных проверок
// Удаление отсутствующего ID (в том числе синтаксически невалидного)
// трактуется как "не найден", не как ошибка сервера
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, objectID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	event := entity.ProductEvent{
		EventType: "PRODUCT_DELETED",
		ProductID: id,
		Timestamp: time.Now(),
	}
	if err := s.publishEvent(ctx, event); err != nil {
		fmt.Printf("failed to publish product deleted event: %v\n", err)
	}

	return nil
}

// CountProducts возвращает общее количество товаров
// Ноль - валидный успешный результат
func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// GetFeaturedProducts возвращает до count рекомендуемых товаров
func (s *CatalogService) GetFeaturedProducts(ctx context.Context, count int64) ([]entity.Product, error) {
	products, err := s.productRepo.GetFeatured(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}

	return products, nil
}

// validateCategory проверяет что идентификатор категории резолвится в запись
// Сначала кеш, при промахе MongoDB с дозаписью в кеш.
// Невалидный hex не может ссылаться на категорию - тоже ErrCategoryNotFound
func (s *CatalogService) validateCategory(ctx context.Context, raw string) (*entity.Category, error) {
	categoryID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return nil, ErrCategoryNotFound
	}

	cached, err := s.cache.GetCategory(ctx, raw)
	if err != nil {
		// Проблемы с кешем не критичны - идём в базу
		fmt.Printf("failed to get category from cache: %v\n", err)
	}
	if cached != nil {
		return cached, nil
	}

	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	if err := s.cache.SetCategory(ctx, category, categoryCacheTTL); err != nil {
		fmt.Printf("failed to cache category: %v\n", err)
	}

	return category, nil
}

// publishProductEvent отправляет событие о товаре в Kafka
// Ошибки Kafka логируются, но не прерывают выполнение - мутация уже применена
func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType:  eventType,
		ProductID:  product.ID.Hex(),
		Name:       product.Name,
		Price:      product.Price,
		CategoryID: product.CategoryID.Hex(),
		Timestamp:  time.Now(),
	}

	if err := s.publishEvent(ctx, event); err != nil {
		fmt.Printf("failed to publish product event: %v\n", err)
	}
}

func (s *CatalogService) publishEvent(ctx context.Context, event entity.ProductEvent) error {
	// Сериализуем событие в JSON
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	// Отправляем в Kafka с ключом = ProductID для партиционирования
	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
