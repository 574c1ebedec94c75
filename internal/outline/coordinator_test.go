package outline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mioriaty/lms-with-better-auth/internal/repository"
)

type fakePersister struct {
	chapterCalls []chapterCall
	lessonCalls  []lessonCall
	err          error
}

type chapterCall struct {
	courseID uuid.UUID
	updates  []repository.PositionUpdate
}

type lessonCall struct {
	chapterID uuid.UUID
	updates   []repository.PositionUpdate
}

func (f *fakePersister) ReorderChapters(_ context.Context, courseID uuid.UUID, updates []repository.PositionUpdate) error {
	f.chapterCalls = append(f.chapterCalls, chapterCall{courseID: courseID, updates: updates})
	return f.err
}

func (f *fakePersister) ReorderLessons(_ context.Context, chapterID uuid.UUID, updates []repository.PositionUpdate) error {
	f.lessonCalls = append(f.lessonCalls, lessonCall{chapterID: chapterID, updates: updates})
	return f.err
}

func testOutline() (uuid.UUID, []ChapterNode) {
	courseID := uuid.New()
	chapters := []ChapterNode{
		{ID: uuid.New(), Title: "Intro", Position: 1, Lessons: []LessonNode{
			{ID: uuid.New(), Title: "Welcome", Position: 1},
			{ID: uuid.New(), Title: "Setup", Position: 2},
			{ID: uuid.New(), Title: "Tour", Position: 3},
		}},
		{ID: uuid.New(), Title: "Basics", Position: 2, Lessons: []LessonNode{
			{ID: uuid.New(), Title: "Types", Position: 1},
		}},
		{ID: uuid.New(), Title: "Advanced", Position: 3},
	}
	return courseID, chapters
}

func chapterIDs(chapters []ChapterNode) []uuid.UUID {
	ids := make([]uuid.UUID, len(chapters))
	for i, ch := range chapters {
		ids[i] = ch.ID
	}
	return ids
}

func TestChapterMoveReordersAndPersists(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{}
	co := NewCoordinator(courseID, chapters, p, nil)

	// Drag the first chapter onto the last one.
	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:   chapters[0].ID,
		ActiveKind: KindChapter,
		OverID:     chapters[2].ID,
		OverKind:   KindChapter,
	})
	require.NoError(t, err)
	require.NotNil(t, move)
	assert.Equal(t, MoveConfirmed, move.Status)

	got := co.Chapters()
	assert.Equal(t, []uuid.UUID{chapters[1].ID, chapters[2].ID, chapters[0].ID}, chapterIDs(got))
	for i, ch := range got {
		assert.Equal(t, i+1, ch.Position)
	}

	require.Len(t, p.chapterCalls, 1)
	assert.Equal(t, courseID, p.chapterCalls[0].courseID)
	assert.Equal(t, []repository.PositionUpdate{
		{ID: chapters[1].ID, Position: 1},
		{ID: chapters[2].ID, Position: 2},
		{ID: chapters[0].ID, Position: 3},
	}, p.chapterCalls[0].updates)
}

func TestChapterDroppedOnLessonTargetsOwningChapter(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{}
	co := NewCoordinator(courseID, chapters, p, nil)

	// Drop the last chapter onto a lesson inside the first chapter.
	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:      chapters[2].ID,
		ActiveKind:    KindChapter,
		OverID:        chapters[0].Lessons[1].ID,
		OverKind:      KindLesson,
		OverChapterID: chapters[0].ID,
	})
	require.NoError(t, err)
	require.NotNil(t, move)
	assert.Equal(t, MoveConfirmed, move.Status)

	assert.Equal(t, []uuid.UUID{chapters[2].ID, chapters[0].ID, chapters[1].ID}, chapterIDs(co.Chapters()))
}

func TestChapterMoveRollsBackOnPersistFailure(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{err: errors.New("db down")}
	co := NewCoordinator(courseID, chapters, p, nil)

	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:   chapters[0].ID,
		ActiveKind: KindChapter,
		OverID:     chapters[1].ID,
		OverKind:   KindChapter,
	})
	require.Error(t, err)
	require.NotNil(t, move)
	assert.Equal(t, MoveRolledBack, move.Status)

	// The outline shows the original order again.
	assert.Equal(t, chapterIDs(chapters), chapterIDs(co.Chapters()))
}

func TestLessonMoveWithinChapter(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{}
	co := NewCoordinator(courseID, chapters, p, nil)

	lessons := chapters[0].Lessons
	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:        lessons[2].ID,
		ActiveKind:      KindLesson,
		ActiveChapterID: chapters[0].ID,
		OverID:          lessons[0].ID,
		OverKind:        KindLesson,
		OverChapterID:   chapters[0].ID,
	})
	require.NoError(t, err)
	require.NotNil(t, move)
	assert.Equal(t, MoveConfirmed, move.Status)

	got := co.Chapters()[0].Lessons
	require.Len(t, got, 3)
	assert.Equal(t, lessons[2].ID, got[0].ID)
	assert.Equal(t, lessons[0].ID, got[1].ID)
	assert.Equal(t, lessons[1].ID, got[2].ID)
	for i, l := range got {
		assert.Equal(t, i+1, l.Position)
	}

	require.Len(t, p.lessonCalls, 1)
	assert.Equal(t, chapters[0].ID, p.lessonCalls[0].chapterID)
}

func TestLessonMoveAcrossChaptersIsRejected(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{}
	co := NewCoordinator(courseID, chapters, p, nil)

	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:        chapters[0].Lessons[0].ID,
		ActiveKind:      KindLesson,
		ActiveChapterID: chapters[0].ID,
		OverID:          chapters[1].Lessons[0].ID,
		OverKind:        KindLesson,
		OverChapterID:   chapters[1].ID,
	})
	require.ErrorIs(t, err, ErrCrossChapterMove)
	assert.Nil(t, move)
	assert.Empty(t, p.lessonCalls)
	assert.Equal(t, chapterIDs(chapters), chapterIDs(co.Chapters()))
}

func TestLessonDroppedOnChapterHeaderIsNoOp(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{}
	co := NewCoordinator(courseID, chapters, p, nil)

	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:        chapters[0].Lessons[0].ID,
		ActiveKind:      KindLesson,
		ActiveChapterID: chapters[0].ID,
		OverID:          chapters[1].ID,
		OverKind:        KindChapter,
	})
	require.NoError(t, err)
	assert.Nil(t, move)
	assert.Empty(t, p.lessonCalls)
	assert.Empty(t, p.chapterCalls)
}

func TestDragWithoutTargetOrOntoSelfIsNoOp(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{}
	co := NewCoordinator(courseID, chapters, p, nil)

	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:   chapters[0].ID,
		ActiveKind: KindChapter,
	})
	require.NoError(t, err)
	assert.Nil(t, move)

	move, err = co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:   chapters[0].ID,
		ActiveKind: KindChapter,
		OverID:     chapters[0].ID,
		OverKind:   KindChapter,
	})
	require.NoError(t, err)
	assert.Nil(t, move)
	assert.Empty(t, p.chapterCalls)
}

func TestLessonMoveRollsBackOnPersistFailure(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{err: errors.New("tx aborted")}
	co := NewCoordinator(courseID, chapters, p, nil)

	lessons := chapters[0].Lessons
	move, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:        lessons[0].ID,
		ActiveKind:      KindLesson,
		ActiveChapterID: chapters[0].ID,
		OverID:          lessons[2].ID,
		OverKind:        KindLesson,
		OverChapterID:   chapters[0].ID,
	})
	require.Error(t, err)
	require.NotNil(t, move)
	assert.Equal(t, MoveRolledBack, move.Status)

	got := co.Chapters()[0].Lessons
	for i, l := range got {
		assert.Equal(t, lessons[i].ID, l.ID)
	}
}

func TestUnknownItemIsRejected(t *testing.T) {
	courseID, chapters := testOutline()
	p := &fakePersister{}
	co := NewCoordinator(courseID, chapters, p, nil)

	_, err := co.HandleDragEnd(context.Background(), DragEvent{
		ActiveID:   uuid.New(),
		ActiveKind: KindChapter,
		OverID:     chapters[0].ID,
		OverKind:   KindChapter,
	})
	require.ErrorIs(t, err, ErrUnknownItem)
	assert.Empty(t, p.chapterCalls)
}
