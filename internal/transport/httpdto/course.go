package httpdto

import "github.com/mioriaty/lms-with-better-auth/internal/domain/course"

// CourseSummary decorates a course with the public URL of its cover file.
type CourseSummary struct {
	course.Course
	FileURL string `json:"fileUrl,omitempty"`
}

// CourseRequest is used for POST /v1/admin/courses and PUT /v1/admin/courses/:id
type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Excerpt     string `json:"excerpt"`
	FileKey     string `json:"fileKey"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
	Duration    int    `json:"duration"`
	Level       string `json:"level"`
	Status      string `json:"status"`
}

// UpdateLessonRequest is used for PUT /v1/admin/lessons/:id
type UpdateLessonRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	ThumbnailKey string `json:"thumbnailKey"`
	VideoKey     string `json:"videoKey"`
}
