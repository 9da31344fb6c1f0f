package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopberries/internal/app/catalog/entity"
	"shopberries/internal/app/catalog/infrastructure"
)

var (
	// ErrNoFile - в запросе на создание товара нет файла изображения
	ErrNoFile = errors.New("no image file in request")
	// ErrUploadFailed - внешнее хранилище отклонило файл или загрузка сорвалась
	ErrUploadFailed = errors.New("image upload failed")
)

// fileTypeMap - допустимые content-type загружаемых изображений
var fileTypeMap = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

var allowedFormats = []string{"png", "jpg", "jpeg"}

// ImagePipeline передает загруженные файлы во внешнее blob-хранилище
// и собирает постоянные URL. Файлы обрабатываются строго в порядке отправки,
// галерея на витрине зависит от позиционного порядка
type ImagePipeline struct {
	uploader infrastructure.FileUploader
	folder   string
}

// NewImagePipeline создает конвейер загрузки изображений
// folder - целевая папка в хранилище из конфигурации процесса
func NewImagePipeline(uploader infrastructure.FileUploader, folder string) *ImagePipeline {
	return &ImagePipeline{
		uploader: uploader,
		folder:   folder,
	}
}

// IngestOne загружает единственное обязательное изображение товара
func (p *ImagePipeline) IngestOne(ctx context.Context, file *entity.UploadedFile) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}

	return p.ingest(ctx, file)
}

// IngestMany загружает файлы галереи по одному, сохраняя порядок отправки.
// Любая неудачная загрузка прерывает весь батч: уже загруженные файлы
// остаются в хранилище, компенсирующее удаление не выполняется
func (p *ImagePipeline) IngestMany(ctx context.Context, files []*entity.UploadedFile) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := p.ingest(ctx, file)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, nil
}

func (p *ImagePipeline) ingest(ctx context.Context, file *entity.UploadedFile) (string, error) {
	if _, ok := fileTypeMap[file.ContentType]; !ok {
		return "", fmt.Errorf("%w: unsupported content type %q", ErrUploadFailed, file.ContentType)
	}

	// Идентификатор ресурса - имя файла с пробелами, заменёнными на дефисы,
	// чтобы итоговый URL был безопасным
	publicID := strings.ReplaceAll(file.Filename, " ", "-")

	url, err := p.uploader.Upload(ctx, file.Data, infrastructure.UploadParams{
		PublicID:       publicID,
		Folder:         p.folder,
		AllowedFormats: allowedFormats,
		Filename:       file.Filename,
		ContentType:    file.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return url, nil
}
