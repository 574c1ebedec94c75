package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/mioriaty/lms-with-better-auth/pkg/logger"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize is 10 MiB per part.
	DefaultChunkSize int64 = 10 << 20
	// DefaultConcurrency caps simultaneous part uploads.
	DefaultConcurrency = 3
)

// ProgressFunc receives the upload percentage, monotonically non-decreasing,
// reaching 100 only after the final part.
type ProgressFunc func(percent float64)

// Client drives a multipart upload against the upload session endpoint group:
// init, then parts under bounded concurrency, then complete — or a single
// best-effort abort when anything after init fails.
type Client struct {
	http        *retryablehttp.Client
	baseURL     string
	token       string
	chunkSize   int64
	concurrency int
	logger      *logger.Logger
}

type Option func(*Client)

func WithChunkSize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

func WithHTTPClient(hc *retryablehttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	hc := retryablehttp.NewClient()
	hc.Logger = nil
	// Part uploads are idempotent per part number, so transport-level
	// retries are safe; a definitive error response is not retried.
	hc.RetryMax = 2

	c := &Client{
		http:        hc,
		baseURL:     baseURL,
		token:       token,
		chunkSize:   DefaultChunkSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type initRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

type initResponse struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

type partResponse struct {
	PartNumber int32  `json:"PartNumber"`
	ETag       string `json:"ETag"`
}

type completeRequest struct {
	Key      string         `json:"key"`
	UploadID string         `json:"uploadId"`
	Parts    []partResponse `json:"parts"`
}

type completeResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
}

type abortRequest struct {
	Key      string `json:"key"`
	UploadID string `json:"uploadId"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Upload pushes content to object storage and returns the object key.
func (c *Client) Upload(ctx context.Context, content io.ReaderAt, size int64, fileName, contentType string, onProgress ProgressFunc) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("upload size must be positive, got %d", size)
	}
	if onProgress == nil {
		onProgress = func(float64) {}
	}

	var initResp initResponse
	err := c.postJSON(ctx, "/v1/s3/multipart/init", initRequest{
		FileName:    fileName,
		ContentType: contentType,
		FileSize:    size,
	}, &initResp)
	if err != nil {
		// No session exists yet, nothing to abort.
		return "", fmt.Errorf("init multipart upload: %w", err)
	}
	if initResp.UploadID == "" || initResp.Key == "" {
		return "", fmt.Errorf("invalid init response: missing uploadId or key")
	}

	key, err := c.uploadParts(ctx, content, size, fileName, initResp, onProgress)
	if err != nil {
		c.abort(initResp.Key, initResp.UploadID)
		return "", err
	}
	return key, nil
}

func (c *Client) uploadParts(ctx context.Context, content io.ReaderAt, size int64, fileName string, session initResponse, onProgress ProgressFunc) (string, error) {
	totalChunks := int((size + c.chunkSize - 1) / c.chunkSize)
	parts := make([]partResponse, totalChunks)

	var mu sync.Mutex
	var uploadedBytes int64
	var lastReported float64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := 0; i < totalChunks; i++ {
		partNumber := i + 1
		start := int64(i) * c.chunkSize
		length := c.chunkSize
		if start+length > size {
			length = size - start
		}

		g.Go(func() error {
			chunk := io.NewSectionReader(content, start, length)
			result, err := c.uploadPart(gctx, session.Key, session.UploadID, partNumber, fileName, chunk, length)
			if err != nil {
				return err
			}
			parts[partNumber-1] = result

			mu.Lock()
			uploadedBytes += length
			percent := float64(uploadedBytes) / float64(size) * 100
			if percent > 100 {
				percent = 100
			}
			if percent > lastReported {
				lastReported = percent
				onProgress(percent)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })

	var completeResp completeResponse
	err := c.postJSON(ctx, "/v1/s3/multipart/complete", completeRequest{
		Key:      session.Key,
		UploadID: session.UploadID,
		Parts:    parts,
	}, &completeResp)
	if err != nil {
		return "", fmt.Errorf("complete multipart upload: %w", err)
	}

	if completeResp.Key != "" {
		return completeResp.Key, nil
	}
	return session.Key, nil
}

func (c *Client) uploadPart(ctx context.Context, key, uploadID string, partNumber int, fileName string, chunk io.Reader, length int64) (partResponse, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("key", key); err != nil {
		return partResponse{}, err
	}
	if err := form.WriteField("uploadId", uploadID); err != nil {
		return partResponse{}, err
	}
	if err := form.WriteField("partNumber", strconv.Itoa(partNumber)); err != nil {
		return partResponse{}, err
	}
	fw, err := form.CreateFormFile("part", fileName)
	if err != nil {
		return partResponse{}, err
	}
	if n, err := io.Copy(fw, chunk); err != nil {
		return partResponse{}, err
	} else if n != length {
		return partResponse{}, fmt.Errorf("part %d: read %d bytes, expected %d", partNumber, n, length)
	}
	if err := form.Close(); err != nil {
		return partResponse{}, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/s3/multipart/upload-part", bytes.NewReader(body.Bytes()))
	if err != nil {
		return partResponse{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return partResponse{}, fmt.Errorf("upload part %d: %w", partNumber, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return partResponse{}, fmt.Errorf("upload part %d: %w", partNumber, decodeError(resp))
	}

	var result partResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return partResponse{}, fmt.Errorf("upload part %d: decode response: %w", partNumber, err)
	}
	if result.ETag == "" {
		return partResponse{}, fmt.Errorf("no ETag returned for part %d", partNumber)
	}
	if result.PartNumber == 0 {
		result.PartNumber = int32(partNumber)
	}
	return result, nil
}

// abort releases the orphaned store session. It is best-effort: a failed
// abort is logged and swallowed so the caller sees the original error.
func (c *Client) abort(key, uploadID string) {
	err := c.postJSON(context.Background(), "/v1/s3/multipart/abort", abortRequest{
		Key:      key,
		UploadID: uploadID,
	}, nil)
	if err != nil && c.logger != nil {
		c.logger.Warnf("failed to abort upload %s: %s", uploadID, err)
	}
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *retryablehttp.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func decodeError(resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		if body.Details != "" {
			return fmt.Errorf("%s: %s (status %d)", body.Error, body.Details, resp.StatusCode)
		}
		return fmt.Errorf("%s (status %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
