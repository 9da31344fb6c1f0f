package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"shopberries/internal/app/catalog/entity"
	"shopberries/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Лимит файлов в одном запросе обновления галереи
const maxGalleryImages = 10

type CatalogServiceInterface interface {
	ListProducts(ctx context.Context, rawCategories string) ([]entity.ProductWithCategory, error)
	GetProduct(ctx context.Context, id string) (*entity.ProductWithCategory, error)
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest, image *entity.UploadedFile) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.Product, error)
	UpdateGallery(ctx context.Context, id string, files []*entity.UploadedFile) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)
	GetFeaturedProducts(ctx context.Context, count int64) ([]entity.Product, error)
}

type CatalogHandler struct {
	catalogService CatalogServiceInterface
	validator      *validator.Validate
}

func NewCatalogHandler(catalogService CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// ListProducts обрабатывает GET /products?categories=c1,c2
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), c.Query("categories"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct обрабатывает GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidProductID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
			return
		}
		// Отсутствующий товар на пути чтения отдаётся как 500, не 404 -
		// поведение исходного API сохранено
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct обрабатывает POST /products
// Multipart форма: поля товара плюс одна часть "image" с основным изображением
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	// Отсутствие файла обрабатывает конвейер (ErrNoFile), не хендлер
	var image *entity.UploadedFile
	if fileHeader, err := c.FormFile("image"); err == nil {
		file, opened, err := openUploadedFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
			return
		}
		defer opened.Close()
		image = file
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req, image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		case errors.Is(err, service.ErrNoFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image in the request"})
		case errors.Is(err, service.ErrUploadFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "The product cannot be created"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct обрабатывает PATCH /products/:id
// Принимает JSON или multipart форму. Изображения здесь не перезагружаются
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req entity.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProductID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "The product cannot be updated"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateGallery обрабатывает PATCH /products/gallery-images/:id
// Части "images" заменяют галерею целиком, пустая форма очищает её
func (h *CatalogHandler) UpdateGallery(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	fileHeaders := form.File["images"]
	if len(fileHeaders) > maxGalleryImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many images, maximum is 10"})
		return
	}

	files := make([]*entity.UploadedFile, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		file, opened, err := openUploadedFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image file"})
			return
		}
		defer opened.Close()
		files = append(files, file)
	}

	product, err := h.catalogService.UpdateGallery(c.Request.Context(), c.Param("id"), files)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProductID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		case errors.Is(err, service.ErrUploadFailed):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload one or more images"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "The gallery cannot be updated"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product deleted successfully",
	})
}

// GetProductCount обрабатывает GET /products/get/count
// Ноль товаров - успешный ответ с нулём, не ошибка
func (h *CatalogHandler) GetProductCount(c *gin.Context) {
	count, err := h.catalogService.CountProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductCountResponse{ProductCount: count})
}

// GetFeaturedProducts обрабатывает GET /products/get/featured/:count
func (h *CatalogHandler) GetFeaturedProducts(c *gin.Context) {
	count, err := strconv.ParseInt(c.Param("count"), 10, 64)
	if err != nil || count < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count"})
		return
	}

	products, err := h.catalogService.GetFeaturedProducts(c.Request.Context(), count)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get featured products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func openUploadedFile(fileHeader *multipart.FileHeader) (*entity.UploadedFile, multipart.File, error) {
	opened, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}

	return &entity.UploadedFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        opened,
	}, opened, nil
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
