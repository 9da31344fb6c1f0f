package service

import (
	"context"
	"errors"
	"testing"

	"shopberries/internal/app/catalog/entity"
	"shopberries/internal/app/catalog/infrastructure"
	"shopberries/internal/app/catalog/repository"
	"shopberries/internal/app/catalog/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type serviceMocks struct {
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	uploader     *mocks.MockFileUploader
	cache        *mocks.MockCategoryCache
	kafka        *mocks.MockMessagePublisher
}

func newTestService() (*CatalogService, *serviceMocks) {
	m := &serviceMocks{
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		uploader:     new(mocks.MockFileUploader),
		cache:        new(mocks.MockCategoryCache),
		kafka:        &mocks.MockMessagePublisher{Messages: make([][]byte, 0)},
	}

	pipeline := NewImagePipeline(m.uploader, "/public/images")
	svc := NewCatalogService(m.categoryRepo, m.productRepo, pipeline, m.cache, m.kafka)
	return svc, m
}

func TestCreateProduct_Success(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(nil, nil)
	m.categoryRepo.On("GetByID", ctx, categoryID).Return(category, nil)
	m.cache.On("SetCategory", ctx, category, categoryCacheTTL).Return(nil)
	m.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return("https://cdn.example.com/photo.png", nil)
	m.productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product")).Return(nil).Run(func(args mock.Arguments) {
		product := args.Get(1).(*entity.Product)
		product.ID = primitive.NewObjectID()
	})
	m.kafka.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	req := &entity.CreateProductRequest{
		Name:        "Raspberry jam",
		Description: "Homemade jam",
		Price:       9.99,
		Category:    categoryID.Hex(),
	}

	product, err := svc.CreateProduct(ctx, req, uploadedPNG("photo.png"))

	assert.NoError(t, err)
	assert.NotNil(t, product)
	assert.Equal(t, "https://cdn.example.com/photo.png", product.Image)
	assert.Equal(t, categoryID, product.CategoryID)
	assert.False(t, product.ID.IsZero())
}

func TestCreateProduct_InvalidCategory(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(nil, nil)
	m.categoryRepo.On("GetByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	req := &entity.CreateProductRequest{Name: "Jam", Description: "Jam", Category: categoryID.Hex()}

	product, err := svc.CreateProduct(ctx, req, uploadedPNG("photo.png"))

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, product)
	// Ничего не загружено и не сохранено
	m.uploader.AssertNotCalled(t, "Upload")
	m.productRepo.AssertNotCalled(t, "Create")
}

func TestCreateProduct_UnparsableCategory(t *testing.T) {
	svc, m := newTestService()

	req := &entity.CreateProductRequest{Name: "Jam", Description: "Jam", Category: "not-a-hex-id"}

	product, err := svc.CreateProduct(context.Background(), req, uploadedPNG("photo.png"))

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, product)
	m.categoryRepo.AssertNotCalled(t, "GetByID")
}

func TestCreateProduct_CategoryFromCache(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(category, nil)
	m.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return("https://cdn.example.com/photo.png", nil)
	m.productRepo.On("Create", ctx, mock.Anything).Return(nil)
	m.kafka.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	req := &entity.CreateProductRequest{Name: "Jam", Description: "Jam", Category: categoryID.Hex()}

	_, err := svc.CreateProduct(ctx, req, uploadedPNG("photo.png"))

	assert.NoError(t, err)
	// Попадание в кеш не ходит в базу категорий
	m.categoryRepo.AssertNotCalled(t, "GetByID")
}

func TestCreateProduct_NoImage(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(category, nil)

	req := &entity.CreateProductRequest{Name: "Jam", Description: "Jam", Category: categoryID.Hex()}

	product, err := svc.CreateProduct(ctx, req, nil)

	assert.ErrorIs(t, err, ErrNoFile)
	assert.Nil(t, product)
	m.productRepo.AssertNotCalled(t, "Create")
}

func TestCreateProduct_UploadFailed(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(category, nil)
	m.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return("", errors.New("remote rejected"))

	req := &entity.CreateProductRequest{Name: "Jam", Description: "Jam", Category: categoryID.Hex()}

	product, err := svc.CreateProduct(ctx, req, uploadedPNG("photo.png"))

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Nil(t, product)
	m.productRepo.AssertNotCalled(t, "Create")
}

func TestCreateProduct_RepoError(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(category, nil)
	m.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return("https://cdn.example.com/photo.png", nil)
	m.productRepo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

	req := &entity.CreateProductRequest{Name: "Jam", Description: "Jam", Category: categoryID.Hex()}

	product, err := svc.CreateProduct(ctx, req, uploadedPNG("photo.png"))

	assert.Error(t, err)
	assert.Nil(t, product)
}

func TestCreateProduct_KafkaErrorIgnored(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(category, nil)
	m.uploader.On("Upload", ctx, mock.Anything, mock.Anything).Return("https://cdn.example.com/photo.png", nil)
	m.productRepo.On("Create", ctx, mock.Anything).Return(nil)
	m.kafka.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka error"))

	req := &entity.CreateProductRequest{Name: "Jam", Description: "Jam", Category: categoryID.Hex()}

	product, err := svc.CreateProduct(ctx, req, uploadedPNG("photo.png"))

	assert.NoError(t, err)
	assert.NotNil(t, product)
}

func TestUpdateProduct_WhitelistedFieldsOnly(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	name := "Renamed jam"
	price := 12.50

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(category, nil)
	m.productRepo.On("Update", ctx, productID, mock.MatchedBy(func(fields bson.M) bool {
		_, hasDescription := fields["description"]
		return fields["name"] == name &&
			fields["price"] == price &&
			fields["category"] == categoryID &&
			!hasDescription
	})).Return(&entity.Product{ID: productID, Name: name, Price: price, CategoryID: categoryID}, nil)
	m.kafka.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	req := &entity.UpdateProductRequest{Name: &name, Price: &price, Category: categoryID.Hex()}

	product, err := svc.UpdateProduct(ctx, productID.Hex(), req)

	assert.NoError(t, err)
	assert.Equal(t, name, product.Name)
	m.productRepo.AssertExpectations(t)
}

func TestUpdateProduct_InvalidID(t *testing.T) {
	svc, m := newTestService()

	req := &entity.UpdateProductRequest{Category: primitive.NewObjectID().Hex()}

	product, err := svc.UpdateProduct(context.Background(), "bad-id", req)

	assert.ErrorIs(t, err, ErrInvalidProductID)
	assert.Nil(t, product)
	m.productRepo.AssertNotCalled(t, "Update")
}

func TestUpdateProduct_InvalidCategory(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(nil, nil)
	m.categoryRepo.On("GetByID", ctx, categoryID).Return(nil, repository.ErrCategoryNotFound)

	req := &entity.UpdateProductRequest{Category: categoryID.Hex()}

	product, err := svc.UpdateProduct(ctx, primitive.NewObjectID().Hex(), req)

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, product)
	m.productRepo.AssertNotCalled(t, "Update")
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()
	category := &entity.Category{ID: categoryID, Name: "Berries"}

	m.cache.On("GetCategory", ctx, categoryID.Hex()).Return(category, nil)
	m.productRepo.On("Update", ctx, productID, mock.Anything).Return(nil, repository.ErrProductNotFound)

	req := &entity.UpdateProductRequest{Category: categoryID.Hex()}

	product, err := svc.UpdateProduct(ctx, productID.Hex(), req)

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
}

func TestUpdateGallery_ReplacesImagesInOrder(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()

	m.uploader.On("Upload", ctx, mock.Anything, mock.MatchedBy(func(p infrastructure.UploadParams) bool {
		return p.PublicID == "a.png"
	})).Return("https://cdn.example.com/a.png", nil)
	m.uploader.On("Upload", ctx, mock.Anything, mock.MatchedBy(func(p infrastructure.UploadParams) bool {
		return p.PublicID == "b.png"
	})).Return("https://cdn.example.com/b.png", nil)
	m.productRepo.On("Update", ctx, productID, mock.MatchedBy(func(fields bson.M) bool {
		urls, ok := fields["images"].([]string)
		return ok && len(urls) == 2 &&
			urls[0] == "https://cdn.example.com/a.png" &&
			urls[1] == "https://cdn.example.com/b.png"
	})).Return(&entity.Product{ID: productID, Images: []string{
		"https://cdn.example.com/a.png",
		"https://cdn.example.com/b.png",
	}}, nil)
	m.kafka.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	files := []*entity.UploadedFile{uploadedPNG("a.png"), uploadedPNG("b.png")}

	product, err := svc.UpdateGallery(ctx, productID.Hex(), files)

	assert.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}, product.Images)
}

func TestUpdateGallery_PartialFailureLeavesProductUntouched(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()

	m.uploader.On("Upload", ctx, mock.Anything, mock.MatchedBy(func(p infrastructure.UploadParams) bool {
		return p.PublicID == "a.png"
	})).Return("https://cdn.example.com/a.png", nil)
	m.uploader.On("Upload", ctx, mock.Anything, mock.MatchedBy(func(p infrastructure.UploadParams) bool {
		return p.PublicID == "b.png"
	})).Return("", errors.New("remote rejected"))

	files := []*entity.UploadedFile{uploadedPNG("a.png"), uploadedPNG("b.png")}

	product, err := svc.UpdateGallery(ctx, productID.Hex(), files)

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Nil(t, product)
	// Запись в хранилище данных не происходила, галерея товара не изменилась
	m.productRepo.AssertNotCalled(t, "Update")
}

func TestUpdateGallery_EmptyBatchClearsGallery(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()

	m.productRepo.On("Update", ctx, productID, mock.MatchedBy(func(fields bson.M) bool {
		urls, ok := fields["images"].([]string)
		return ok && len(urls) == 0
	})).Return(&entity.Product{ID: productID, Images: []string{}}, nil)
	m.kafka.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	product, err := svc.UpdateGallery(ctx, productID.Hex(), nil)

	assert.NoError(t, err)
	// Пустой набор файлов очищает галерею, а не оставляет её как была
	assert.Empty(t, product.Images)
	m.productRepo.AssertExpectations(t)
}

func TestUpdateGallery_InvalidID(t *testing.T) {
	svc, m := newTestService()

	product, err := svc.UpdateGallery(context.Background(), "bad-id", nil)

	assert.ErrorIs(t, err, ErrInvalidProductID)
	assert.Nil(t, product)
	m.productRepo.AssertNotCalled(t, "Update")
}

func TestDeleteProduct_Success(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()

	m.productRepo.On("Delete", ctx, productID).Return(nil)
	m.kafka.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteProduct(ctx, productID.Hex())

	assert.NoError(t, err)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()

	m.productRepo.On("Delete", ctx, productID).Return(repository.ErrProductNotFound)

	err := svc.DeleteProduct(ctx, productID.Hex())

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProduct_InvalidIDTreatedAsNotFound(t *testing.T) {
	svc, m := newTestService()

	err := svc.DeleteProduct(context.Background(), "bad-id")

	assert.ErrorIs(t, err, ErrProductNotFound)
	m.productRepo.AssertNotCalled(t, "Delete")
}

func TestCountProducts_ZeroIsSuccess(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	m.productRepo.On("Count", ctx).Return(int64(0), nil)

	count, err := svc.CountProducts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListProducts_PassesCategoryFilter(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	categoryID := primitive.NewObjectID()
	products := []entity.ProductWithCategory{
		{Product: entity.Product{ID: primitive.NewObjectID(), CategoryID: categoryID}},
	}

	m.productRepo.On("GetAll", ctx, mock.MatchedBy(func(filter bson.M) bool {
		in, ok := filter["category"].(bson.M)
		if !ok {
			return false
		}
		ids, ok := in["$in"].([]primitive.ObjectID)
		return ok && len(ids) == 1 && ids[0] == categoryID
	})).Return(products, nil)

	result, err := svc.ListProducts(ctx, categoryID.Hex())

	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestGetProduct_InvalidID(t *testing.T) {
	svc, _ := newTestService()

	product, err := svc.GetProduct(context.Background(), "bad-id")

	assert.ErrorIs(t, err, ErrInvalidProductID)
	assert.Nil(t, product)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	productID := primitive.NewObjectID()

	m.productRepo.On("GetWithCategory", ctx, productID).Return(nil, repository.ErrProductNotFound)

	product, err := svc.GetProduct(ctx, productID.Hex())

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
}

func TestGetFeaturedProducts_Limit(t *testing.T) {
	svc, m := newTestService()

	ctx := context.Background()
	products := []entity.Product{
		{ID: primitive.NewObjectID(), IsFeatured: true},
		{ID: primitive.NewObjectID(), IsFeatured: true},
	}

	m.productRepo.On("GetFeatured", ctx, int64(2)).Return(products, nil)

	result, err := svc.GetFeaturedProducts(ctx, 2)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}
