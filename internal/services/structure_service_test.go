package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mioriaty/lms-with-better-auth/internal/domain/course"
	"github.com/mioriaty/lms-with-better-auth/internal/repository"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"
)

type fakeStructureRepo struct {
	chapters        []course.Chapter
	lessons         []course.Lesson
	chapterReorders [][]repository.PositionUpdate
	lessonReorders  [][]repository.PositionUpdate
	err             error
}

func (f *fakeStructureRepo) ListChapters(_ context.Context, _ uuid.UUID) ([]course.Chapter, error) {
	return f.chapters, f.err
}

func (f *fakeStructureRepo) ListLessons(_ context.Context, _ uuid.UUID) ([]course.Lesson, error) {
	return f.lessons, f.err
}

func (f *fakeStructureRepo) CreateChapter(_ context.Context, ch *course.Chapter) error {
	if f.err != nil {
		return f.err
	}
	ch.Position = len(f.chapters) + 1
	f.chapters = append(f.chapters, *ch)
	return nil
}

func (f *fakeStructureRepo) CreateLesson(_ context.Context, l *course.Lesson) error {
	if f.err != nil {
		return f.err
	}
	l.Position = len(f.lessons) + 1
	f.lessons = append(f.lessons, *l)
	return nil
}

func (f *fakeStructureRepo) ReorderChapters(_ context.Context, _ uuid.UUID, updates []repository.PositionUpdate) error {
	f.chapterReorders = append(f.chapterReorders, updates)
	return f.err
}

func (f *fakeStructureRepo) ReorderLessons(_ context.Context, _ uuid.UUID, updates []repository.PositionUpdate) error {
	f.lessonReorders = append(f.lessonReorders, updates)
	return f.err
}

func (f *fakeStructureRepo) DeleteChapter(_ context.Context, _, chapterID uuid.UUID) error {
	return f.err
}

func (f *fakeStructureRepo) DeleteLesson(_ context.Context, _, lessonID uuid.UUID) error {
	return f.err
}

func TestCreateChapterAssignsNextPosition(t *testing.T) {
	repo := &fakeStructureRepo{}
	svc := NewStructureService(repo)
	courseID := uuid.New()

	first, err := svc.CreateChapter(context.Background(), courseID, "Intro")
	require.NoError(t, err)
	second, err := svc.CreateChapter(context.Background(), courseID, "Basics")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, courseID, first.CourseID)
	assert.Equal(t, 1, repo.chapters[0].Position)
	assert.Equal(t, 2, repo.chapters[1].Position)
	assert.Equal(t, "Basics", second.Title)
}

func TestCreateChapterRequiresTitle(t *testing.T) {
	svc := NewStructureService(&fakeStructureRepo{})

	_, err := svc.CreateChapter(context.Background(), uuid.New(), "")
	require.ErrorIs(t, err, lms_errors.ErrInvalidInput)

	_, err = svc.CreateChapter(context.Background(), uuid.Nil, "Intro")
	require.ErrorIs(t, err, lms_errors.ErrInvalidInput)
}

func TestCreateLessonCarriesMediaKeys(t *testing.T) {
	repo := &fakeStructureRepo{}
	svc := NewStructureService(repo)
	chapterID := uuid.New()

	lesson, err := svc.CreateLesson(context.Background(), chapterID, CreateLessonInput{
		Title:        "Welcome",
		Description:  "First steps",
		ThumbnailKey: "thumb-key",
		VideoKey:     "video-key",
	})
	require.NoError(t, err)
	assert.Equal(t, chapterID, lesson.ChapterID)
	assert.Equal(t, "thumb-key", lesson.ThumbnailKey)
	assert.Equal(t, "video-key", lesson.VideoKey)
	assert.Equal(t, 1, repo.lessons[0].Position)
}

func TestReorderChaptersAcceptsDensePermutation(t *testing.T) {
	repo := &fakeStructureRepo{}
	svc := NewStructureService(repo)

	updates := []repository.PositionUpdate{
		{ID: uuid.New(), Position: 2},
		{ID: uuid.New(), Position: 1},
		{ID: uuid.New(), Position: 3},
	}
	require.NoError(t, svc.ReorderChapters(context.Background(), uuid.New(), updates))
	require.Len(t, repo.chapterReorders, 1)
}

func TestReorderRejectsDuplicatePositions(t *testing.T) {
	svc := NewStructureService(&fakeStructureRepo{})

	updates := []repository.PositionUpdate{
		{ID: uuid.New(), Position: 1},
		{ID: uuid.New(), Position: 1},
	}
	err := svc.ReorderChapters(context.Background(), uuid.New(), updates)
	require.ErrorIs(t, err, lms_errors.ErrSparsePositions)
}

func TestReorderRejectsDuplicateIDs(t *testing.T) {
	svc := NewStructureService(&fakeStructureRepo{})

	id := uuid.New()
	updates := []repository.PositionUpdate{
		{ID: id, Position: 1},
		{ID: id, Position: 2},
	}
	err := svc.ReorderLessons(context.Background(), uuid.New(), updates)
	require.ErrorIs(t, err, lms_errors.ErrSparsePositions)
}

func TestReorderRejectsGappedPositions(t *testing.T) {
	svc := NewStructureService(&fakeStructureRepo{})

	// Positions 1 and 3 over two items leave a gap.
	updates := []repository.PositionUpdate{
		{ID: uuid.New(), Position: 1},
		{ID: uuid.New(), Position: 3},
	}
	err := svc.ReorderChapters(context.Background(), uuid.New(), updates)
	require.ErrorIs(t, err, lms_errors.ErrSparsePositions)
}

func TestReorderRejectsEmptyUpdate(t *testing.T) {
	svc := NewStructureService(&fakeStructureRepo{})

	err := svc.ReorderChapters(context.Background(), uuid.New(), nil)
	require.ErrorIs(t, err, lms_errors.ErrInvalidInput)

	err = svc.ReorderLessons(context.Background(), uuid.New(), nil)
	require.ErrorIs(t, err, lms_errors.ErrInvalidInput)
}

func TestReorderLessonsRejectsZeroBasedPositions(t *testing.T) {
	svc := NewStructureService(&fakeStructureRepo{})

	updates := []repository.PositionUpdate{
		{ID: uuid.New(), Position: 0},
		{ID: uuid.New(), Position: 1},
	}
	err := svc.ReorderLessons(context.Background(), uuid.New(), updates)
	require.ErrorIs(t, err, lms_errors.ErrSparsePositions)
}

func TestDeleteValidatesIDs(t *testing.T) {
	svc := NewStructureService(&fakeStructureRepo{})

	require.ErrorIs(t, svc.DeleteChapter(context.Background(), uuid.Nil, uuid.New()), lms_errors.ErrInvalidInput)
	require.ErrorIs(t, svc.DeleteLesson(context.Background(), uuid.New(), uuid.Nil), lms_errors.ErrInvalidInput)
	require.NoError(t, svc.DeleteChapter(context.Background(), uuid.New(), uuid.New()))
}
