package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slide2pdf/internal/app"
	"slide2pdf/internal/convert"
	"slide2pdf/internal/registry"
)

type stubConverter struct {
	calls int
	err   error
}

func (s *stubConverter) Convert(_ context.Context, inputPath, outDir string, format convert.Format) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := filepath.Join(outDir, base+"."+string(format))
	if err := os.WriteFile(outPath, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		return "", err
	}
	return outPath, nil
}

type testEnv struct {
	router    *gin.Engine
	converter *stubConverter
}

func newTestEnv(t *testing.T, ttl time.Duration) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conv := &stubConverter{}
	reg := registry.NewMemoryRegistry(ttl)
	t.Cleanup(reg.Close)

	service := app.NewConvertService(conv, reg, nil, t.TempDir(), t.TempDir(), 50, 50<<20)
	convertHandler := NewConvertHandler(service)
	artifactHandler := NewArtifactHandler(reg)

	router := gin.New()
	router.POST("/convert", convertHandler.Convert)
	router.POST("/preview", convertHandler.Preview)
	router.POST("/preview-pdf", convertHandler.PreviewPDF)
	router.GET("/download/:id", artifactHandler.Download)
	router.GET("/preview/:id", artifactHandler.Preview)

	return &testEnv{router: router, converter: conv}
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for _, name := range names {
		part, err := writer.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake presentation " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (e *testEnv) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, path, body)
	} else {
		req, err = http.NewRequest(method, path, nil)
	}
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestConvertRejectsBadExtension(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	body, contentType := multipartBody(t, "report.docx")
	rec := env.do(t, http.MethodPost, "/convert", body, contentType)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeJSON(t, rec)
	assert.Contains(t, payload["error"], ".ppt")
	assert.Equal(t, 0, env.converter.calls)
}

func TestConvertRejectsEmptyForm(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	rec := env.do(t, http.MethodPost, "/convert", body, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertSingleFileDownloadIsOneTime(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	body, contentType := multipartBody(t, "deck.pptx")
	rec := env.do(t, http.MethodPost, "/convert", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeJSON(t, rec)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "deck.pdf", payload["filename"])
	downloadURL, _ := payload["downloadUrl"].(string)
	require.True(t, strings.HasPrefix(downloadURL, "/download/"))

	first := env.do(t, http.MethodGet, downloadURL, nil, "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Header().Get("Content-Disposition"), "deck.pdf")
	assert.True(t, bytes.HasPrefix(first.Body.Bytes(), []byte("%PDF")))

	second := env.do(t, http.MethodGet, downloadURL, nil, "")
	assert.Equal(t, http.StatusNotFound, second.Code)
}

func TestConvertMultipleFilesReturnsZip(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	body, contentType := multipartBody(t, "a.pptx", "b.pptx")
	rec := env.do(t, http.MethodPost, "/convert", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeJSON(t, rec)
	assert.Equal(t, "converted.zip", payload["filename"])

	downloadURL, _ := payload["downloadUrl"].(string)
	download := env.do(t, http.MethodGet, downloadURL, nil, "")
	assert.Equal(t, http.StatusOK, download.Code)
	assert.Contains(t, download.Header().Get("Content-Disposition"), "converted.zip")
	// zip magic
	assert.True(t, bytes.HasPrefix(download.Body.Bytes(), []byte("PK")))
}

func TestConvertTimeoutReturns500(t *testing.T) {
	env := newTestEnv(t, time.Minute)
	env.converter.err = convert.ErrTimeout

	body, contentType := multipartBody(t, "deck.pptx")
	rec := env.do(t, http.MethodPost, "/convert", body, contentType)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeJSON(t, rec)
	assert.Contains(t, payload["error"], "timed out")
}

func TestPreviewFlowIsOneTime(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	body, contentType := multipartBody(t, "deck.pptx")
	rec := env.do(t, http.MethodPost, "/preview", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeJSON(t, rec)
	previewURL, _ := payload["previewUrl"].(string)
	require.True(t, strings.HasPrefix(previewURL, "/preview/"))

	first := env.do(t, http.MethodGet, previewURL, nil, "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "image/png", first.Header().Get("Content-Type"))

	second := env.do(t, http.MethodGet, previewURL, nil, "")
	assert.Equal(t, http.StatusNotFound, second.Code)
}

func TestPreviewPDFStreamsBytes(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	body, contentType := multipartBody(t, "deck.pptx")
	rec := env.do(t, http.MethodPost, "/preview-pdf", body, contentType)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestDownloadExpiresWithTTL(t *testing.T) {
	env := newTestEnv(t, 30*time.Millisecond)

	body, contentType := multipartBody(t, "deck.pptx")
	rec := env.do(t, http.MethodPost, "/convert", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	downloadURL, _ := decodeJSON(t, rec)["downloadUrl"].(string)

	assert.Eventually(t, func() bool {
		resp := env.do(t, http.MethodGet, downloadURL, nil, "")
		return resp.Code == http.StatusNotFound
	}, time.Second, 10*time.Millisecond)
}

func TestDownloadUnknownID(t *testing.T) {
	env := newTestEnv(t, time.Minute)

	rec := env.do(t, http.MethodGet, "/download/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeJSON(t, rec)
	assert.Equal(t, "not found or expired", payload["error"])
}
