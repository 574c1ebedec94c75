package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mioriaty/lms-with-better-auth/internal/middleware"
	"github.com/mioriaty/lms-with-better-auth/internal/redis"
	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/storage"
	"github.com/mioriaty/lms-with-better-auth/pkg/logger"
)

type stubStore struct {
	partETag string
	partErr  error
	parts    []storage.CompletedPart
	aborted  bool
	deleted  string
}

func (s *stubStore) PresignPut(_ context.Context, key, _ string, _ int64) (string, map[string]string, error) {
	return "https://store.example/" + key, nil, nil
}

func (s *stubStore) CreateMultipart(_ context.Context, _, _ string) (string, error) {
	return "upload-42", nil
}

func (s *stubStore) UploadPart(_ context.Context, _, _ string, _ int32, body io.Reader) (string, error) {
	io.Copy(io.Discard, body)
	return s.partETag, s.partErr
}

func (s *stubStore) CompleteMultipart(_ context.Context, _, _ string, parts []storage.CompletedPart) error {
	s.parts = parts
	return nil
}

func (s *stubStore) AbortMultipart(_ context.Context, _, _ string) error {
	s.aborted = true
	return nil
}

func (s *stubStore) DeleteObject(_ context.Context, key string) error {
	s.deleted = key
	return nil
}

func testUser() uuid.UUID {
	return uuid.MustParse("11111111-2222-3333-4444-555555555555")
}

// injectUser stands in for the auth middleware in tests.
func injectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := services.WithUserContext(c.Request.Context(), testUser(), "admin")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func allowAll(_ context.Context, _ string) (*redis.RateLimitResult, error) {
	return &redis.RateLimitResult{Allowed: true, Remaining: 4, Limit: 5}, nil
}

func uploadRouter(store *stubStore, gate middleware.LimitCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := &logger.Logger{Logger: zap.NewNop()}
	h := NewUploadHandler(services.NewUploadService(store, 100<<20), log)

	r := gin.New()
	g := r.Group("/v1/s3", injectUser(), middleware.RateLimitMiddleware(gate))
	g.POST("/upload", h.Presign)
	g.POST("/multipart/init", h.InitMultipart)
	g.POST("/multipart/upload-part", h.UploadPart)
	g.POST("/multipart/complete", h.CompleteMultipart)
	g.POST("/multipart/abort", h.AbortMultipart)
	g.DELETE("/delete", h.DeleteObject)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPresignEndpointReturnsURLAndKey(t *testing.T) {
	r := uploadRouter(&stubStore{}, allowAll)

	w := postJSON(t, r, http.MethodPost, "/v1/s3/upload", map[string]interface{}{
		"fileName":    "intro.mp4",
		"contentType": "video/mp4",
		"size":        1024,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, strings.HasSuffix(body["key"], "-intro.mp4"))
	assert.Equal(t, "https://store.example/"+body["key"], body["presignedUrl"])
}

func TestPresignEndpointRejectsMissingFields(t *testing.T) {
	r := uploadRouter(&stubStore{}, allowAll)

	w := postJSON(t, r, http.MethodPost, "/v1/s3/upload", map[string]interface{}{
		"fileName": "intro.mp4",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestInitEndpointOpensSession(t *testing.T) {
	r := uploadRouter(&stubStore{}, allowAll)

	w := postJSON(t, r, http.MethodPost, "/v1/s3/multipart/init", map[string]interface{}{
		"fileName":    "course.mp4",
		"contentType": "video/mp4",
		"fileSize":    50 << 20,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		UploadID string `json:"uploadId"`
		Key      string `json:"key"`
		FileSize int64  `json:"fileSize"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "upload-42", body.UploadID)
	assert.Equal(t, int64(50<<20), body.FileSize)
	assert.True(t, strings.HasSuffix(body.Key, "-course.mp4"))
}

func partForm(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	if withFile {
		fw, err := form.CreateFormFile("part", "chunk.bin")
		require.NoError(t, err)
		_, err = fw.Write([]byte("chunk-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())
	return &buf, form.FormDataContentType()
}

func TestUploadPartEndpointStripsETagQuotes(t *testing.T) {
	r := uploadRouter(&stubStore{partETag: `"etag-7"`}, allowAll)

	body, contentType := partForm(t, map[string]string{
		"key":        "abc-course.mp4",
		"uploadId":   "upload-42",
		"partNumber": "7",
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/v1/s3/multipart/upload-part", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		PartNumber int32  `json:"PartNumber"`
		ETag       string `json:"ETag"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int32(7), resp.PartNumber)
	assert.Equal(t, "etag-7", resp.ETag)
}

func TestUploadPartEndpointRequiresAllFields(t *testing.T) {
	r := uploadRouter(&stubStore{partETag: "x"}, allowAll)

	cases := []struct {
		fields   map[string]string
		withFile bool
	}{
		{map[string]string{"uploadId": "upload-42", "partNumber": "1"}, true},
		{map[string]string{"key": "k", "partNumber": "1"}, true},
		{map[string]string{"key": "k", "uploadId": "upload-42"}, true},
		{map[string]string{"key": "k", "uploadId": "upload-42", "partNumber": "1"}, false},
	}
	for _, tc := range cases {
		body, contentType := partForm(t, tc.fields, tc.withFile)
		req := httptest.NewRequest(http.MethodPost, "/v1/s3/multipart/upload-part", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Missing required fields")
	}
}

func TestUploadPartEndpointMissingETagIs500(t *testing.T) {
	r := uploadRouter(&stubStore{partETag: ""}, allowAll)

	body, contentType := partForm(t, map[string]string{
		"key":        "k",
		"uploadId":   "upload-42",
		"partNumber": "1",
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/v1/s3/multipart/upload-part", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "No ETag returned from store")
}

func TestCompleteEndpointForwardsParts(t *testing.T) {
	store := &stubStore{}
	r := uploadRouter(store, allowAll)

	w := postJSON(t, r, http.MethodPost, "/v1/s3/multipart/complete", map[string]interface{}{
		"key":      "abc-course.mp4",
		"uploadId": "upload-42",
		"parts": []map[string]interface{}{
			{"PartNumber": 2, "ETag": "b"},
			{"PartNumber": 1, "ETag": "a"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	require.Len(t, store.parts, 2)
	assert.Equal(t, int32(1), store.parts[0].PartNumber)
	assert.Equal(t, int32(2), store.parts[1].PartNumber)
}

func TestCompleteEndpointRejectsEmptyParts(t *testing.T) {
	r := uploadRouter(&stubStore{}, allowAll)

	w := postJSON(t, r, http.MethodPost, "/v1/s3/multipart/complete", map[string]interface{}{
		"key":      "abc-course.mp4",
		"uploadId": "upload-42",
		"parts":    []map[string]interface{}{},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAbortEndpointDiscardsSession(t *testing.T) {
	store := &stubStore{}
	r := uploadRouter(store, allowAll)

	w := postJSON(t, r, http.MethodPost, "/v1/s3/multipart/abort", map[string]interface{}{
		"key":      "abc-course.mp4",
		"uploadId": "upload-42",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.aborted)
}

func TestDeleteEndpointRemovesObject(t *testing.T) {
	store := &stubStore{}
	r := uploadRouter(store, allowAll)

	w := postJSON(t, r, http.MethodDelete, "/v1/s3/delete", map[string]interface{}{
		"key": "abc-course.mp4",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-course.mp4", store.deleted)

	w = postJSON(t, r, http.MethodDelete, "/v1/s3/delete", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Key is required")
}

func TestRateLimitedRequestGets429(t *testing.T) {
	denyAll := func(_ context.Context, _ string) (*redis.RateLimitResult, error) {
		return &redis.RateLimitResult{Allowed: false, Remaining: 0, Limit: 5}, nil
	}
	store := &stubStore{}
	r := uploadRouter(store, denyAll)

	w := postJSON(t, r, http.MethodPost, "/v1/s3/multipart/init", map[string]interface{}{
		"fileName":    "course.mp4",
		"contentType": "video/mp4",
		"fileSize":    1024,
	})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "", store.deleted)
}
