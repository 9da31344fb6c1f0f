package entity

// CreateProductRequest - поля товара из multipart формы при создании
// Файл основного изображения идёт отдельной частью "image"
type CreateProductRequest struct {
	Name            string  `json:"name" form:"name" validate:"required,min=2,max=200"`
	Description     string  `json:"description" form:"description" validate:"required,max=2000"`
	RichDescription string  `json:"rich_description" form:"rich_description" validate:"omitempty,max=10000"`
	Brand           string  `json:"brand" form:"brand" validate:"omitempty,max=100"`
	Price           float64 `json:"price" form:"price" validate:"gte=0"`
	Category        string  `json:"category" form:"category" validate:"required"`
	CountInStock    int     `json:"count_in_stock" form:"count_in_stock" validate:"gte=0"`
	Rating          float64 `json:"rating" form:"rating" validate:"gte=0,lte=5"`
	NumReviews      int     `json:"num_reviews" form:"num_reviews" validate:"gte=0"`
	IsFeatured      bool    `json:"is_featured" form:"is_featured"`
}

// UpdateProductRequest - частичное обновление товара
// Указатели отличают "поле не передано" от нулевого значения,
// обновляются только явно перечисленные здесь поля
type UpdateProductRequest struct {
	Name            *string  `json:"name" form:"name" validate:"omitempty,min=2,max=200"`
	Description     *string  `json:"description" form:"description" validate:"omitempty,max=2000"`
	RichDescription *string  `json:"rich_description" form:"rich_description" validate:"omitempty,max=10000"`
	Brand           *string  `json:"brand" form:"brand" validate:"omitempty,max=100"`
	Price           *float64 `json:"price" form:"price" validate:"omitempty,gte=0"`
	Category        string   `json:"category" form:"category" validate:"required"`
	CountInStock    *int     `json:"count_in_stock" form:"count_in_stock" validate:"omitempty,gte=0"`
	Rating          *float64 `json:"rating" form:"rating" validate:"omitempty,gte=0,lte=5"`
	NumReviews      *int     `json:"num_reviews" form:"num_reviews" validate:"omitempty,gte=0"`
	IsFeatured      *bool    `json:"is_featured" form:"is_featured"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProductCountResponse - ответ на запрос количества товаров
// Ноль - это валидный результат, а не ошибка
type ProductCountResponse struct {
	ProductCount int64 `json:"product_count"`
}
