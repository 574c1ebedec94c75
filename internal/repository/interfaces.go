package repository

import (
	"context"

	"github.com/mioriaty/lms-with-better-auth/internal/domain/course"
	"github.com/mioriaty/lms-with-better-auth/internal/domain/user"

	"github.com/google/uuid"
)

// PositionUpdate assigns a new position to one chapter or lesson.
type PositionUpdate struct {
	ID       uuid.UUID
	Position int
}

type CourseRepository interface {
	Create(ctx context.Context, c *course.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (course.Course, error)
	GetDetail(ctx context.Context, id uuid.UUID) (course.Course, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]course.Course, error)
	ListPublished(ctx context.Context) ([]course.Course, error)
	Update(ctx context.Context, c course.Course) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetLesson(ctx context.Context, id uuid.UUID) (course.Lesson, error)
	UpdateLesson(ctx context.Context, l course.Lesson) error
}

// StructureRepository owns every write that touches position columns. Each
// method runs inside a single transaction so a partial failure leaves the
// stored positions untouched.
type StructureRepository interface {
	ListChapters(ctx context.Context, courseID uuid.UUID) ([]course.Chapter, error)
	ListLessons(ctx context.Context, chapterID uuid.UUID) ([]course.Lesson, error)

	CreateChapter(ctx context.Context, ch *course.Chapter) error
	CreateLesson(ctx context.Context, l *course.Lesson) error

	ReorderChapters(ctx context.Context, courseID uuid.UUID, updates []PositionUpdate) error
	ReorderLessons(ctx context.Context, chapterID uuid.UUID, updates []PositionUpdate) error

	DeleteChapter(ctx context.Context, courseID, chapterID uuid.UUID) error
	DeleteLesson(ctx context.Context, chapterID, lessonID uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}
