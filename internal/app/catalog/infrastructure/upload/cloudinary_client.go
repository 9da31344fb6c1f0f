package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"shopberries/internal/app/catalog/infrastructure"
	"shopberries/pkg/metrics"
)

const serviceName = "catalog-service"

// CloudinaryClient - HTTP клиент upload API Cloudinary
// Учётные данные задаются один раз при старте процесса и не меняются в рантайме
type CloudinaryClient struct {
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewCloudinaryClient создает новый клиент для blob-storage сервиса
func NewCloudinaryClient(baseURL, cloudName, apiKey, apiSecret string) *CloudinaryClient {
	return &CloudinaryClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // Загрузка изображений может быть долгой
		},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type uploadErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload отправляет файл в Cloudinary и возвращает постоянный URL
// Повторных попыток нет - решение о retry остаётся за вызывающим кодом
func (c *CloudinaryClient) Upload(ctx context.Context, data io.Reader, params infrastructure.UploadParams) (string, error) {
	start := time.Now()

	url, err := c.doUpload(ctx, data, params)
	if err != nil {
		metrics.RecordImageUploadError(serviceName, params.Folder)
		return "", err
	}

	metrics.RecordImageUpload(serviceName, params.Folder, time.Since(start))
	return url, nil
}

func (c *CloudinaryClient) doUpload(ctx context.Context, data io.Reader, params infrastructure.UploadParams) (string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	// Подписываемые поля запроса (без file и api_key)
	fields := map[string]string{
		"public_id": params.PublicID,
		"folder":    params.Folder,
		"timestamp": timestamp,
	}
	if len(params.AllowedFormats) > 0 {
		fields["allowed_formats"] = strings.Join(params.AllowedFormats, ",")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.WriteField("signature", c.sign(fields)); err != nil {
		return "", fmt.Errorf("failed to write form field: %w", err)
	}

	part, err := writer.CreateFormFile("file", params.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr uploadErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("upload rejected with status %d", resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response has no secure_url")
	}

	return result.SecureURL, nil
}

// sign считает подпись запроса по схеме Cloudinary:
// SHA1 от отсортированных пар key=value, соединённых "&", плюс api_secret
func (c *CloudinaryClient) sign(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+fields[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
