package services

import (
	"context"
	"time"

	"github.com/mioriaty/lms-with-better-auth/internal/domain/course"
	"github.com/mioriaty/lms-with-better-auth/internal/repository"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"

	"github.com/google/uuid"
)

type CourseService struct {
	repo repository.CourseRepository
}

type CourseInput struct {
	Title       string
	Slug        string
	Description string
	Excerpt     string
	FileKey     string
	Category    string
	Price       int
	Duration    int
	Level       string
	Status      string
}

type UpdateLessonInput struct {
	Title        string
	Description  string
	ThumbnailKey string
	VideoKey     string
}

func NewCourseService(repo repository.CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

func (s *CourseService) Create(ctx context.Context, ownerID uuid.UUID, in CourseInput) (course.Course, error) {
	if ownerID == uuid.Nil || in.Title == "" || in.Slug == "" {
		return course.Course{}, lms_errors.ErrInvalidInput
	}
	c := course.Course{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       in.Title,
		Slug:        in.Slug,
		Description: in.Description,
		Excerpt:     in.Excerpt,
		FileKey:     in.FileKey,
		Category:    in.Category,
		Price:       in.Price,
		Duration:    in.Duration,
		Level:       defaultString(in.Level, course.LevelBeginner),
		Status:      defaultString(in.Status, course.StatusDraft),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, courseID, ownerID uuid.UUID, in CourseInput) (course.Course, error) {
	if in.Title == "" || in.Slug == "" {
		return course.Course{}, lms_errors.ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return course.Course{}, err
	}
	if c.UserID != ownerID {
		return course.Course{}, lms_errors.ErrForbidden
	}

	c.Title = in.Title
	c.Slug = in.Slug
	c.Description = in.Description
	c.Excerpt = in.Excerpt
	c.FileKey = in.FileKey
	c.Category = in.Category
	c.Price = in.Price
	c.Duration = in.Duration
	c.Level = defaultString(in.Level, c.Level)
	c.Status = defaultString(in.Status, c.Status)

	if err := s.repo.Update(ctx, c); err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (s *CourseService) Delete(ctx context.Context, courseID, ownerID uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if c.UserID != ownerID {
		return lms_errors.ErrForbidden
	}
	return s.repo.Delete(ctx, courseID)
}

// GetDetail returns a course with chapters and lessons ordered by position.
func (s *CourseService) GetDetail(ctx context.Context, courseID uuid.UUID) (course.Course, error) {
	return s.repo.GetDetail(ctx, courseID)
}

func (s *CourseService) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]course.Course, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *CourseService) ListPublished(ctx context.Context) ([]course.Course, error) {
	return s.repo.ListPublished(ctx)
}

func (s *CourseService) UpdateLesson(ctx context.Context, lessonID uuid.UUID, in UpdateLessonInput) (course.Lesson, error) {
	if in.Title == "" {
		return course.Lesson{}, lms_errors.ErrInvalidInput
	}
	l, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return course.Lesson{}, err
	}
	l.Title = in.Title
	l.Description = in.Description
	l.ThumbnailKey = in.ThumbnailKey
	l.VideoKey = in.VideoKey

	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		return course.Lesson{}, err
	}
	return l, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
