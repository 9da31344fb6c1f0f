package infrastructure

import (
	"context"
	"io"
)

// UploadParams - параметры одной загрузки во внешнее blob-хранилище
type UploadParams struct {
	PublicID       string   // Желаемый идентификатор ресурса (имя файла без пробелов)
	Folder         string   // Целевая папка в хранилище
	AllowedFormats []string // Допустимые форматы, хранилище отклоняет остальные
	Filename       string
	ContentType    string
}

// FileUploader интерфейс клиента blob-storage сервиса
// Используется для dependency injection и упрощения тестирования
type FileUploader interface {
	// Upload передает содержимое файла в хранилище и возвращает постоянный URL
	Upload(ctx context.Context, data io.Reader, params UploadParams) (string, error)
}
