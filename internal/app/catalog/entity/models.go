package entity

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category представляет категорию товаров
// Сервис каталога только проверяет её существование, управление категориями
// живёт в отдельном админском сервисе
type Category struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Icon      string             `json:"icon,omitempty" bson:"icon,omitempty"`
	Color     string             `json:"color,omitempty" bson:"color,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Product представляет товар в каталоге
// Image - обязательное основное изображение, Images - галерея в порядке загрузки
type Product struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	RichDescription string             `json:"rich_description,omitempty" bson:"rich_description,omitempty"`
	Image           string             `json:"image" bson:"image"`
	Images          []string           `json:"images" bson:"images"`
	Brand           string             `json:"brand,omitempty" bson:"brand,omitempty"`
	Price           float64            `json:"price" bson:"price"` // Цена в базовой валюте (USD)
	CategoryID      primitive.ObjectID `json:"category_id" bson:"category"`
	CountInStock    int                `json:"count_in_stock" bson:"count_in_stock"`
	Rating          float64            `json:"rating" bson:"rating"`
	NumReviews      int                `json:"num_reviews" bson:"num_reviews"`
	IsFeatured      bool               `json:"is_featured" bson:"is_featured"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProductWithCategory содержит продукт с развёрнутой категорией
// Категория подставляется при чтении и никогда не сохраняется в документ товара
type ProductWithCategory struct {
	Product
	Category Category `json:"category"`
}

// UploadedFile - файл из multipart запроса до передачи в blob-storage
// Живёт только в рамках одного запроса, не сохраняется
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType  string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	CategoryID string    `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}
