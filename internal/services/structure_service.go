package services

import (
	"context"
	"time"

	"github.com/mioriaty/lms-with-better-auth/internal/domain/course"
	"github.com/mioriaty/lms-with-better-auth/internal/repository"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"

	"github.com/google/uuid"
)

// StructureService guards the dense-position invariant for chapters and
// lessons: within one parent, positions are always 1..N with no gaps or
// duplicates. All writes go through the repository inside one transaction.
type StructureService struct {
	repo repository.StructureRepository
}

type CreateLessonInput struct {
	Title        string
	Description  string
	ThumbnailKey string
	VideoKey     string
}

func NewStructureService(repo repository.StructureRepository) *StructureService {
	return &StructureService{repo: repo}
}

func (s *StructureService) ListChapters(ctx context.Context, courseID uuid.UUID) ([]course.Chapter, error) {
	return s.repo.ListChapters(ctx, courseID)
}

func (s *StructureService) ListLessons(ctx context.Context, chapterID uuid.UUID) ([]course.Lesson, error) {
	return s.repo.ListLessons(ctx, chapterID)
}

func (s *StructureService) CreateChapter(ctx context.Context, courseID uuid.UUID, title string) (course.Chapter, error) {
	if courseID == uuid.Nil || title == "" {
		return course.Chapter{}, lms_errors.ErrInvalidInput
	}
	ch := course.Chapter{
		ID:        uuid.New(),
		CourseID:  courseID,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.CreateChapter(ctx, &ch); err != nil {
		return course.Chapter{}, err
	}
	return ch, nil
}

func (s *StructureService) CreateLesson(ctx context.Context, chapterID uuid.UUID, in CreateLessonInput) (course.Lesson, error) {
	if chapterID == uuid.Nil || in.Title == "" {
		return course.Lesson{}, lms_errors.ErrInvalidInput
	}
	l := course.Lesson{
		ID:           uuid.New(),
		ChapterID:    chapterID,
		Title:        in.Title,
		Description:  in.Description,
		ThumbnailKey: in.ThumbnailKey,
		VideoKey:     in.VideoKey,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.CreateLesson(ctx, &l); err != nil {
		return course.Lesson{}, err
	}
	return l, nil
}

func (s *StructureService) ReorderChapters(ctx context.Context, courseID uuid.UUID, updates []repository.PositionUpdate) error {
	if courseID == uuid.Nil {
		return lms_errors.ErrInvalidInput
	}
	if err := validatePositions(updates); err != nil {
		return err
	}
	return s.repo.ReorderChapters(ctx, courseID, updates)
}

func (s *StructureService) ReorderLessons(ctx context.Context, chapterID uuid.UUID, updates []repository.PositionUpdate) error {
	if chapterID == uuid.Nil {
		return lms_errors.ErrInvalidInput
	}
	if err := validatePositions(updates); err != nil {
		return err
	}
	return s.repo.ReorderLessons(ctx, chapterID, updates)
}

func (s *StructureService) DeleteChapter(ctx context.Context, courseID, chapterID uuid.UUID) error {
	if courseID == uuid.Nil || chapterID == uuid.Nil {
		return lms_errors.ErrInvalidInput
	}
	return s.repo.DeleteChapter(ctx, courseID, chapterID)
}

func (s *StructureService) DeleteLesson(ctx context.Context, chapterID, lessonID uuid.UUID) error {
	if chapterID == uuid.Nil || lessonID == uuid.Nil {
		return lms_errors.ErrInvalidInput
	}
	return s.repo.DeleteLesson(ctx, chapterID, lessonID)
}

// validatePositions requires the updates to assign exactly the positions
// 1..N, each to a distinct id.
func validatePositions(updates []repository.PositionUpdate) error {
	if len(updates) == 0 {
		return lms_errors.ErrInvalidInput
	}
	seenIDs := make(map[uuid.UUID]bool, len(updates))
	seenPos := make(map[int]bool, len(updates))
	for _, u := range updates {
		if u.ID == uuid.Nil {
			return lms_errors.ErrInvalidInput
		}
		if seenIDs[u.ID] || seenPos[u.Position] {
			return lms_errors.ErrSparsePositions
		}
		if u.Position < 1 || u.Position > len(updates) {
			return lms_errors.ErrSparsePositions
		}
		seenIDs[u.ID] = true
		seenPos[u.Position] = true
	}
	return nil
}
