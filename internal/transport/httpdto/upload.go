package httpdto

// PresignUploadRequest is used for POST /v1/s3/upload
type PresignUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
	IsImage     bool   `json:"isImage"`
}

// PresignUploadResponse is returned for a single-shot upload
type PresignUploadResponse struct {
	PresignedURL string `json:"presignedUrl"`
	Key          string `json:"key"`
}

// MultipartInitRequest is used for POST /v1/s3/multipart/init
type MultipartInitRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1"`
}

// MultipartInitResponse is returned after a multipart session is opened
type MultipartInitResponse struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
	FileSize int64  `json:"fileSize"`
}

// UploadPartResponse is returned per uploaded part. The ETag has the store's
// surrounding quotes stripped.
type UploadPartResponse struct {
	PartNumber int32  `json:"PartNumber"`
	ETag       string `json:"ETag"`
}

// MultipartCompleteRequest is used for POST /v1/s3/multipart/complete
type MultipartCompleteRequest struct {
	Key      string              `json:"key" binding:"required"`
	UploadID string              `json:"uploadId" binding:"required"`
	Parts    []CompletedPartBody `json:"parts" binding:"required,min=1,dive"`
}

type CompletedPartBody struct {
	PartNumber int32  `json:"PartNumber" binding:"required,min=1,max=10000"`
	ETag       string `json:"ETag" binding:"required"`
}

// MultipartCompleteResponse is returned once the object materializes
type MultipartCompleteResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
}

// MultipartAbortRequest is used for POST /v1/s3/multipart/abort
type MultipartAbortRequest struct {
	Key      string `json:"key" binding:"required"`
	UploadID string `json:"uploadId" binding:"required"`
}

// MultipartAbortResponse is returned after a session is discarded
type MultipartAbortResponse struct {
	Success bool `json:"success"`
}

// DeleteObjectRequest is used for DELETE /v1/s3/delete
type DeleteObjectRequest struct {
	Key string `json:"key" binding:"required"`
}

// DeleteObjectResponse is returned after an object is removed
type DeleteObjectResponse struct {
	Message string `json:"message"`
}
