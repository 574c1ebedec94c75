package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/storage"
	"github.com/mioriaty/lms-with-better-auth/internal/transport/httpdto"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"
	"github.com/mioriaty/lms-with-better-auth/pkg/logger"

	"github.com/gin-gonic/gin"
)

// UploadHandler exposes the upload session endpoint group. Each handler
// validates its input and issues exactly one object-store call through the
// upload service.
type UploadHandler struct {
	service *services.UploadService
	logger  *logger.Logger
}

func NewUploadHandler(service *services.UploadService, l *logger.Logger) *UploadHandler {
	return &UploadHandler{service: service, logger: l}
}

// Presign handles POST /v1/s3/upload: a single-shot small-file upload gets a
// time-boxed presigned PUT URL instead of proxying bytes.
func (h *UploadHandler) Presign(c *gin.Context) {
	var req httpdto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request body"))
		return
	}

	result, err := h.service.Presign(c.Request.Context(), services.PresignInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		IsImage:     req.IsImage,
	})
	if err != nil {
		if errors.Is(err, lms_errors.ErrInvalidInput) || errors.Is(err, lms_errors.ErrTooLarge) {
			c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request body"))
			return
		}
		h.logger.ErrorfCtx(c.Request.Context(), "presign upload error: %s", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorWithDetails("Internal server error", err))
		return
	}

	c.JSON(http.StatusOK, httpdto.PresignUploadResponse{
		PresignedURL: result.PresignedURL,
		Key:          result.Key,
	})
}

// InitMultipart handles POST /v1/s3/multipart/init.
func (h *UploadHandler) InitMultipart(c *gin.Context) {
	var req httpdto.MultipartInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	result, err := h.service.InitMultipart(c.Request.Context(), req.FileName, req.ContentType, req.FileSize)
	if err != nil {
		if errors.Is(err, lms_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
			return
		}
		h.logger.ErrorfCtx(c.Request.Context(), "multipart init error: %s", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorWithDetails("Failed to initiate upload", err))
		return
	}

	c.JSON(http.StatusOK, httpdto.MultipartInitResponse{
		UploadID: result.UploadID,
		Key:      result.Key,
		FileSize: result.FileSize,
	})
}

// UploadPart handles POST /v1/s3/multipart/upload-part. The chunk arrives as
// a multipart form so binary bytes never pass through JSON.
func (h *UploadHandler) UploadPart(c *gin.Context) {
	key := c.PostForm("key")
	uploadID := c.PostForm("uploadId")
	partNumber, _ := strconv.Atoi(c.PostForm("partNumber"))
	part, err := c.FormFile("part")

	if key == "" || uploadID == "" || partNumber == 0 || err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Missing required fields"))
		return
	}

	chunk, err := part.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Missing required fields"))
		return
	}
	defer chunk.Close()

	result, err := h.service.UploadPart(c.Request.Context(), key, uploadID, partNumber, chunk)
	if err != nil {
		if errors.Is(err, lms_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewError("Missing required fields"))
			return
		}
		if errors.Is(err, lms_errors.ErrMissingETag) {
			c.JSON(http.StatusInternalServerError, httpdto.NewError("No ETag returned from store"))
			return
		}
		h.logger.ErrorfCtx(c.Request.Context(), "multipart upload part error: %s", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorWithDetails("Failed to upload part", err))
		return
	}

	c.JSON(http.StatusOK, httpdto.UploadPartResponse{
		PartNumber: result.PartNumber,
		ETag:       result.ETag,
	})
}

// CompleteMultipart handles POST /v1/s3/multipart/complete.
func (h *UploadHandler) CompleteMultipart(c *gin.Context) {
	var req httpdto.MultipartCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	parts := make([]storage.CompletedPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		parts = append(parts, storage.CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag})
	}

	if err := h.service.CompleteMultipart(c.Request.Context(), req.Key, req.UploadID, parts); err != nil {
		if errors.Is(err, lms_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
			return
		}
		h.logger.ErrorfCtx(c.Request.Context(), "multipart complete error: %s", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorWithDetails("Failed to complete upload", err))
		return
	}

	c.JSON(http.StatusOK, httpdto.MultipartCompleteResponse{Success: true, Key: req.Key})
}

// AbortMultipart handles POST /v1/s3/multipart/abort.
func (h *UploadHandler) AbortMultipart(c *gin.Context) {
	var req httpdto.MultipartAbortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	if err := h.service.AbortMultipart(c.Request.Context(), req.Key, req.UploadID); err != nil {
		if errors.Is(err, lms_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
			return
		}
		h.logger.ErrorfCtx(c.Request.Context(), "multipart abort error: %s", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorWithDetails("Failed to abort upload", err))
		return
	}

	c.JSON(http.StatusOK, httpdto.MultipartAbortResponse{Success: true})
}

// DeleteObject handles DELETE /v1/s3/delete.
func (h *UploadHandler) DeleteObject(c *gin.Context) {
	var req httpdto.DeleteObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Key is required"))
		return
	}

	if err := h.service.DeleteObject(c.Request.Context(), req.Key); err != nil {
		if errors.Is(err, lms_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewError("Key is required"))
			return
		}
		h.logger.ErrorfCtx(c.Request.Context(), "object delete error: %s", err)
		c.JSON(http.StatusInternalServerError, httpdto.NewError("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, httpdto.DeleteObjectResponse{Message: "File deleted successfully"})
}
