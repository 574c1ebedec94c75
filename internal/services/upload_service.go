package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mioriaty/lms-with-better-auth/internal/storage"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"

	"github.com/google/uuid"
)

// MaxPartNumber is the highest part number the object store accepts in one
// multipart session.
const MaxPartNumber = 10000

// ObjectStore is the slice of the storage client the upload service needs.
// Tests substitute a fake.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64) (string, map[string]string, error)
	CreateMultipart(ctx context.Context, key, contentType string) (string, error)
	UploadPart(ctx context.Context, key, uploadID string, partNumber int32, body io.Reader) (string, error)
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []storage.CompletedPart) error
	AbortMultipart(ctx context.Context, key, uploadID string) error
	DeleteObject(ctx context.Context, key string) error
}

type UploadService struct {
	store    ObjectStore
	maxBytes int64
}

type PresignInput struct {
	FileName    string
	ContentType string
	Size        int64
	IsImage     bool
}

type PresignResult struct {
	PresignedURL string
	Key          string
	Headers      map[string]string
}

type InitResult struct {
	UploadID string
	Key      string
	FileSize int64
}

type PartResult struct {
	PartNumber int32
	ETag       string
}

func NewUploadService(store ObjectStore, maxBytes int64) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes}
}

// buildObjectKey prefixes the original file name with a random id so two
// uploads of the same file never collide.
func buildObjectKey(fileName string) string {
	return fmt.Sprintf("%s-%s", uuid.New().String(), fileName)
}

func (s *UploadService) Presign(ctx context.Context, in PresignInput) (PresignResult, error) {
	if in.FileName == "" || in.ContentType == "" || in.Size <= 0 {
		return PresignResult{}, lms_errors.ErrInvalidInput
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return PresignResult{}, lms_errors.ErrTooLarge
	}

	key := buildObjectKey(in.FileName)
	url, headers, err := s.store.PresignPut(ctx, key, in.ContentType, in.Size)
	if err != nil {
		return PresignResult{}, err
	}
	return PresignResult{PresignedURL: url, Key: key, Headers: headers}, nil
}

func (s *UploadService) InitMultipart(ctx context.Context, fileName, contentType string, fileSize int64) (InitResult, error) {
	if fileName == "" || contentType == "" || fileSize <= 0 {
		return InitResult{}, lms_errors.ErrInvalidInput
	}

	key := buildObjectKey(fileName)
	uploadID, err := s.store.CreateMultipart(ctx, key, contentType)
	if err != nil {
		return InitResult{}, err
	}
	return InitResult{UploadID: uploadID, Key: key, FileSize: fileSize}, nil
}

func (s *UploadService) UploadPart(ctx context.Context, key, uploadID string, partNumber int, body io.Reader) (PartResult, error) {
	if key == "" || uploadID == "" || body == nil {
		return PartResult{}, lms_errors.ErrInvalidInput
	}
	if partNumber < 1 || partNumber > MaxPartNumber {
		return PartResult{}, lms_errors.ErrInvalidInput
	}

	etag, err := s.store.UploadPart(ctx, key, uploadID, int32(partNumber), body)
	if err != nil {
		return PartResult{}, err
	}
	if etag == "" {
		return PartResult{}, lms_errors.ErrMissingETag
	}

	return PartResult{
		PartNumber: int32(partNumber),
		ETag:       strings.ReplaceAll(etag, `"`, ""),
	}, nil
}

// CompleteMultipart finalizes the session. Parts are sorted ascending before
// the store call since the store rejects out-of-order lists.
func (s *UploadService) CompleteMultipart(ctx context.Context, key, uploadID string, parts []storage.CompletedPart) error {
	if key == "" || uploadID == "" || len(parts) == 0 {
		return lms_errors.ErrInvalidInput
	}
	sorted := make([]storage.CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	return s.store.CompleteMultipart(ctx, key, uploadID, sorted)
}

func (s *UploadService) AbortMultipart(ctx context.Context, key, uploadID string) error {
	if key == "" || uploadID == "" {
		return lms_errors.ErrInvalidInput
	}
	return s.store.AbortMultipart(ctx, key, uploadID)
}

func (s *UploadService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return lms_errors.ErrInvalidInput
	}
	return s.store.DeleteObject(ctx, key)
}
