package upload

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopberries/internal/app/catalog/infrastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUploadParams() infrastructure.UploadParams {
	return infrastructure.UploadParams{
		PublicID:       "raspberry-jam.png",
		Folder:         "/public/images",
		AllowedFormats: []string{"png", "jpg", "jpeg"},
		Filename:       "raspberry jam.png",
		ContentType:    "image/png",
	}
}

func TestCloudinaryClient_Upload_Success(t *testing.T) {
	// Arrange
	var receivedPath string
	var receivedForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		receivedForm = make(map[string]string)
		for key, values := range r.MultipartForm.Value {
			receivedForm[key] = values[0]
		}

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "raspberry jam.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url": "https://res.cloudinary.com/test-cloud/raspberry-jam.png", "public_id": "raspberry-jam"}`))
	}))
	defer server.Close()

	client := NewCloudinaryClient(server.URL, "test-cloud", "test-key", "test-secret")

	// Act
	url, err := client.Upload(context.Background(), strings.NewReader("png-data"), testUploadParams())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/test-cloud/raspberry-jam.png", url)
	assert.Equal(t, "/v1_1/test-cloud/image/upload", receivedPath)

	assert.Equal(t, "test-key", receivedForm["api_key"])
	assert.Equal(t, "raspberry-jam.png", receivedForm["public_id"])
	assert.Equal(t, "/public/images", receivedForm["folder"])
	assert.Equal(t, "png,jpg,jpeg", receivedForm["allowed_formats"])
	assert.NotEmpty(t, receivedForm["timestamp"])

	// Подпись пересчитывается по полученным полям и секрету
	signedString := "allowed_formats=" + receivedForm["allowed_formats"] +
		"&folder=" + receivedForm["folder"] +
		"&public_id=" + receivedForm["public_id"] +
		"&timestamp=" + receivedForm["timestamp"] +
		"test-secret"
	sum := sha1.Sum([]byte(signedString))
	assert.Equal(t, hex.EncodeToString(sum[:]), receivedForm["signature"])
}

func TestCloudinaryClient_Upload_APIError(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid image file"}}`))
	}))
	defer server.Close()

	client := NewCloudinaryClient(server.URL, "test-cloud", "test-key", "test-secret")

	// Act
	url, err := client.Upload(context.Background(), strings.NewReader("bad-data"), testUploadParams())

	// Assert
	require.Error(t, err)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestCloudinaryClient_Upload_ErrorStatusWithoutBody(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewCloudinaryClient(server.URL, "test-cloud", "test-key", "test-secret")

	// Act
	url, err := client.Upload(context.Background(), strings.NewReader("png-data"), testUploadParams())

	// Assert
	require.Error(t, err)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "status 500")
}

func TestCloudinaryClient_Upload_MissingSecureURL(t *testing.T) {
	// Arrange
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"public_id": "raspberry-jam"}`))
	}))
	defer server.Close()

	client := NewCloudinaryClient(server.URL, "test-cloud", "test-key", "test-secret")

	// Act
	url, err := client.Upload(context.Background(), strings.NewReader("png-data"), testUploadParams())

	// Assert
	require.Error(t, err)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "secure_url")
}

func TestCloudinaryClient_Upload_ServerUnreachable(t *testing.T) {
	// Arrange - сервер сразу закрыт
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewCloudinaryClient(server.URL, "test-cloud", "test-key", "test-secret")

	// Act
	url, err := client.Upload(context.Background(), strings.NewReader("png-data"), testUploadParams())

	// Assert
	require.Error(t, err)
	assert.Empty(t, url)
}
