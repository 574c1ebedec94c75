package handler

import (
	"net/http"

	"github.com/mioriaty/lms-with-better-auth/internal/repository"
	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/transport/httpdto"
	"github.com/mioriaty/lms-with-better-auth/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StructureHandler persists course outline mutations: reorder, create and
// delete for chapters and lessons. Every write is transactional so positions
// stay dense.
type StructureHandler struct {
	service *services.StructureService
	logger  *logger.Logger
}

func NewStructureHandler(service *services.StructureService, l *logger.Logger) *StructureHandler {
	return &StructureHandler{service: service, logger: l}
}

// ReorderChapters handles PUT /v1/admin/courses/:courseId/chapters/reorder.
func (h *StructureHandler) ReorderChapters(c *gin.Context) {
	courseID, ok := pathUUID(c, "courseId")
	if !ok {
		return
	}
	updates, ok := bindPositions(c)
	if !ok {
		return
	}

	if err := h.service.ReorderChapters(c.Request.Context(), courseID, updates); err != nil {
		h.logger.ErrorfCtx(c.Request.Context(), "reorder chapters error: %s", err)
		writeDomainError(c, err, "Failed to reorder chapters")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chapters reordered successfully"})
}

// ReorderLessons handles PUT /v1/admin/chapters/:chapterId/lessons/reorder.
func (h *StructureHandler) ReorderLessons(c *gin.Context) {
	chapterID, ok := pathUUID(c, "chapterId")
	if !ok {
		return
	}
	updates, ok := bindPositions(c)
	if !ok {
		return
	}

	if err := h.service.ReorderLessons(c.Request.Context(), chapterID, updates); err != nil {
		h.logger.ErrorfCtx(c.Request.Context(), "reorder lessons error: %s", err)
		writeDomainError(c, err, "Failed to reorder lessons")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lessons reordered successfully"})
}

func (h *StructureHandler) CreateChapter(c *gin.Context) {
	courseID, ok := pathUUID(c, "courseId")
	if !ok {
		return
	}
	var req httpdto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	created, err := h.service.CreateChapter(c.Request.Context(), courseID, req.Title)
	if err != nil {
		writeDomainError(c, err, "Failed to create chapter")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *StructureHandler) CreateLesson(c *gin.Context) {
	chapterID, ok := pathUUID(c, "chapterId")
	if !ok {
		return
	}
	var req httpdto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return
	}

	created, err := h.service.CreateLesson(c.Request.Context(), chapterID, services.CreateLessonInput{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailKey: req.ThumbnailKey,
		VideoKey:     req.VideoKey,
	})
	if err != nil {
		writeDomainError(c, err, "Failed to create lesson")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *StructureHandler) DeleteChapter(c *gin.Context) {
	courseID, ok := pathUUID(c, "courseId")
	if !ok {
		return
	}
	chapterID, ok := pathUUID(c, "chapterId")
	if !ok {
		return
	}

	if err := h.service.DeleteChapter(c.Request.Context(), courseID, chapterID); err != nil {
		writeDomainError(c, err, "Failed to delete chapter")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chapter deleted successfully"})
}

func (h *StructureHandler) DeleteLesson(c *gin.Context) {
	chapterID, ok := pathUUID(c, "chapterId")
	if !ok {
		return
	}
	lessonID, ok := pathUUID(c, "lessonId")
	if !ok {
		return
	}

	if err := h.service.DeleteLesson(c.Request.Context(), chapterID, lessonID); err != nil {
		writeDomainError(c, err, "Failed to delete lesson")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}

func bindPositions(c *gin.Context) ([]repository.PositionUpdate, bool) {
	var req httpdto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
		return nil, false
	}
	updates := make([]repository.PositionUpdate, 0, len(req.Positions))
	for _, p := range req.Positions {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
			return nil, false
		}
		updates = append(updates, repository.PositionUpdate{ID: id, Position: p.Position})
	}
	return updates, true
}
