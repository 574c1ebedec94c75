package handler

import (
	"net/http"

	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/transport/httpdto"
	"github.com/mioriaty/lms-with-better-auth/pkg/logger"

	"github.com/gin-gonic/gin"
)

// FileURLResolver turns a stored object key into a serveable URL.
type FileURLResolver interface {
	FileURL(key string) string
}

type CourseHandler struct {
	service *services.CourseService
	files   FileURLResolver
	logger  *logger.Logger
}

func NewCourseHandler(service *services.CourseService, files FileURLResolver, l *logger.Logger) *CourseHandler {
	return &CourseHandler{service: service, files: files, logger: l}
}

func (h *CourseHandler) Create(c *gin.Context) {
	ownerID, ok := adminID(c)
	if !ok {
		return
	}
	var req httpdto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	created, err := h.service.Create(c.Request.Context(), ownerID, courseInput(req))
	if err != nil {
		writeDomainError(c, err, "Failed to create course")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CourseHandler) Update(c *gin.Context) {
	ownerID, ok := adminID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId")
	if !ok {
		return
	}
	var req httpdto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), courseID, ownerID, courseInput(req))
	if err != nil {
		writeDomainError(c, err, "Failed to edit course")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	ownerID, ok := adminID(c)
	if !ok {
		return
	}
	courseID, ok := pathUUID(c, "courseId")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), courseID, ownerID); err != nil {
		writeDomainError(c, err, "Failed to delete course")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// GetDetail returns a course with chapters and lessons in position order.
func (h *CourseHandler) GetDetail(c *gin.Context) {
	courseID, ok := pathUUID(c, "courseId")
	if !ok {
		return
	}
	detail, err := h.service.GetDetail(c.Request.Context(), courseID)
	if err != nil {
		writeDomainError(c, err, "Failed to load course")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *CourseHandler) ListOwn(c *gin.Context) {
	ownerID, ok := adminID(c)
	if !ok {
		return
	}
	courses, err := h.service.ListOwn(c.Request.Context(), ownerID)
	if err != nil {
		writeDomainError(c, err, "Failed to list courses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// ListPublished is the public catalogue: only published courses, each with a
// resolved cover URL.
func (h *CourseHandler) ListPublished(c *gin.Context) {
	courses, err := h.service.ListPublished(c.Request.Context())
	if err != nil {
		writeDomainError(c, err, "Failed to list courses")
		return
	}

	items := make([]httpdto.CourseSummary, 0, len(courses))
	for _, crs := range courses {
		summary := httpdto.CourseSummary{Course: crs}
		if h.files != nil {
			summary.FileURL = h.files.FileURL(crs.FileKey)
		}
		items = append(items, summary)
	}
	c.JSON(http.StatusOK, gin.H{"courses": items})
}

func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	lessonID, ok := pathUUID(c, "lessonId")
	if !ok {
		return
	}
	var req httpdto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	updated, err := h.service.UpdateLesson(c.Request.Context(), lessonID, services.UpdateLessonInput{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailKey: req.ThumbnailKey,
		VideoKey:     req.VideoKey,
	})
	if err != nil {
		writeDomainError(c, err, "Failed to update lesson")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func courseInput(req httpdto.CourseRequest) services.CourseInput {
	return services.CourseInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Excerpt:     req.Excerpt,
		FileKey:     req.FileKey,
		Category:    req.Category,
		Price:       req.Price,
		Duration:    req.Duration,
		Level:       req.Level,
		Status:      req.Status,
	}
}
