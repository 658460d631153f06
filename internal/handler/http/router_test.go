package http_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/vasiliy-maslov/class-marketplace/internal/handler/http"
	"github.com/vasiliy-maslov/class-marketplace/internal/upload"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func newAppRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	env := newTestEnv()
	dir := t.TempDir()

	router := handler.NewRouter(handler.Handlers{
		Auth:           env.auth,
		Users:          handler.NewUserHandler(new(MockUserService), env.tokens),
		Products:       handler.NewProductHandler(new(MockProductService)),
		Orders:         handler.NewOrderHandler(new(MockOrderService)),
		Uploads:        handler.NewUploadHandler(upload.NewStorage(dir)),
		UploadDir:      dir,
		PayPalClientID: "sandbox-client-id",
	})
	return router, dir
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestRouter_PayPalConfig(t *testing.T) {
	router, _ := newAppRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/config/paypal", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "sandbox-client-id", rr.Body.String())
}

func TestRouter_NotFound(t *testing.T) {
	router, _ := newAppRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"message":"Not Found - /api/nothing-here"`)
}

func TestRouter_UploadAndServe(t *testing.T) {
	router, dir := newAppRouter(t)

	body, contentType := multipartBody(t, "image", "cover.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	storedPath := rr.Body.String()
	assert.True(t, strings.HasPrefix(storedPath, "/uploads/image-"), storedPath)
	assert.True(t, strings.HasSuffix(storedPath, ".png"), storedPath)

	onDisk, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(storedPath, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, onDisk)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, storedPath, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, pngBytes, rr.Body.Bytes())
}

func TestRouter_UploadRejected(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		filename    string
		content     []byte
		wantMessage string
	}{
		{name: "wrong_extension", field: "image", filename: "cover.gif", content: pngBytes, wantMessage: "Images only: jpg, jpeg or png"},
		{name: "not_an_image", field: "image", filename: "cover.png", content: []byte("plain text"), wantMessage: "Images only: jpg, jpeg or png"},
		{name: "wrong_field", field: "file", filename: "cover.png", content: pngBytes, wantMessage: "No image uploaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newAppRouter(t)

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantMessage)
		})
	}
}
