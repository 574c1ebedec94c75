package outline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mioriaty/lms-with-better-auth/internal/repository"
	"github.com/mioriaty/lms-with-better-auth/pkg/logger"
)

var (
	// ErrCrossChapterMove rejects dragging a lesson into another chapter.
	ErrCrossChapterMove = errors.New("lessons cannot be moved between chapters")
	// ErrUnknownItem means the dragged or target item is not in the outline.
	ErrUnknownItem = errors.New("item not found in course outline")
)

type ItemKind string

const (
	KindChapter ItemKind = "chapter"
	KindLesson  ItemKind = "lesson"
)

// LessonNode is a lesson entry in the course outline.
type LessonNode struct {
	ID       uuid.UUID
	Title    string
	Position int
}

// ChapterNode is a chapter with its ordered lessons.
type ChapterNode struct {
	ID       uuid.UUID
	Title    string
	Position int
	Lessons  []LessonNode
}

// DragEvent describes a completed drag gesture over the outline.
// ChapterID fields carry the owning chapter when the corresponding
// item is a lesson, and are zero otherwise.
type DragEvent struct {
	ActiveID        uuid.UUID
	ActiveKind      ItemKind
	ActiveChapterID uuid.UUID
	OverID          uuid.UUID
	OverKind        ItemKind
	OverChapterID   uuid.UUID
}

// Persister saves the new sibling order produced by a move.
type Persister interface {
	ReorderChapters(ctx context.Context, courseID uuid.UUID, updates []repository.PositionUpdate) error
	ReorderLessons(ctx context.Context, chapterID uuid.UUID, updates []repository.PositionUpdate) error
}

type MoveStatus string

const (
	MovePending    MoveStatus = "pending"
	MoveConfirmed  MoveStatus = "confirmed"
	MoveRolledBack MoveStatus = "rolled_back"
)

// Move records the outcome of a single drag gesture.
type Move struct {
	Status  MoveStatus
	Kind    ItemKind
	ItemID  uuid.UUID
	Updates []repository.PositionUpdate
}

// Coordinator applies drag moves to an in-memory course outline
// optimistically: the outline changes first, persistence follows, and
// a persistence failure restores the outline from a snapshot.
type Coordinator struct {
	courseID  uuid.UUID
	chapters  []ChapterNode
	persister Persister
	logger    *logger.Logger
}

func NewCoordinator(courseID uuid.UUID, chapters []ChapterNode, persister Persister, log *logger.Logger) *Coordinator {
	return &Coordinator{
		courseID:  courseID,
		chapters:  cloneChapters(chapters),
		persister: persister,
		logger:    log,
	}
}

// Chapters returns a copy of the current outline.
func (co *Coordinator) Chapters() []ChapterNode {
	return cloneChapters(co.chapters)
}

// HandleDragEnd resolves a drag gesture into a reorder. A gesture with
// no target, targeting itself, or dropping a lesson onto a chapter
// header is a no-op and returns (nil, nil).
func (co *Coordinator) HandleDragEnd(ctx context.Context, ev DragEvent) (*Move, error) {
	if ev.OverID == uuid.Nil || ev.ActiveID == ev.OverID {
		return nil, nil
	}

	switch ev.ActiveKind {
	case KindChapter:
		return co.moveChapter(ctx, ev)
	case KindLesson:
		if ev.OverKind != KindLesson {
			return nil, nil
		}
		return co.moveLesson(ctx, ev)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrUnknownItem, ev.ActiveKind)
	}
}

func (co *Coordinator) moveChapter(ctx context.Context, ev DragEvent) (*Move, error) {
	// Dropping a chapter onto a lesson targets the lesson's owning chapter.
	targetID := ev.OverID
	if ev.OverKind == KindLesson {
		targetID = ev.OverChapterID
	}
	if targetID == uuid.Nil {
		return nil, fmt.Errorf("%w: drop target has no chapter", ErrUnknownItem)
	}
	if targetID == ev.ActiveID {
		return nil, nil
	}

	from := chapterIndex(co.chapters, ev.ActiveID)
	to := chapterIndex(co.chapters, targetID)
	if from < 0 || to < 0 {
		return nil, ErrUnknownItem
	}

	snapshot := cloneChapters(co.chapters)
	co.chapters = moveElement(co.chapters, from, to)
	updates := make([]repository.PositionUpdate, len(co.chapters))
	for i := range co.chapters {
		co.chapters[i].Position = i + 1
		updates[i] = repository.PositionUpdate{ID: co.chapters[i].ID, Position: i + 1}
	}

	move := &Move{Status: MovePending, Kind: KindChapter, ItemID: ev.ActiveID, Updates: updates}
	if err := co.persister.ReorderChapters(ctx, co.courseID, updates); err != nil {
		co.chapters = snapshot
		move.Status = MoveRolledBack
		if co.logger != nil {
			co.logger.Warnf("chapter reorder rolled back: %s", err)
		}
		return move, fmt.Errorf("persist chapter order: %w", err)
	}
	move.Status = MoveConfirmed
	return move, nil
}

func (co *Coordinator) moveLesson(ctx context.Context, ev DragEvent) (*Move, error) {
	if ev.ActiveChapterID == uuid.Nil || ev.OverChapterID == uuid.Nil {
		return nil, fmt.Errorf("%w: lesson without owning chapter", ErrUnknownItem)
	}
	if ev.ActiveChapterID != ev.OverChapterID {
		return nil, ErrCrossChapterMove
	}

	ci := chapterIndex(co.chapters, ev.ActiveChapterID)
	if ci < 0 {
		return nil, ErrUnknownItem
	}
	lessons := co.chapters[ci].Lessons
	from := lessonIndex(lessons, ev.ActiveID)
	to := lessonIndex(lessons, ev.OverID)
	if from < 0 || to < 0 {
		return nil, ErrUnknownItem
	}

	snapshot := cloneChapters(co.chapters)
	co.chapters[ci].Lessons = moveElement(lessons, from, to)
	lessons = co.chapters[ci].Lessons
	updates := make([]repository.PositionUpdate, len(lessons))
	for i := range lessons {
		lessons[i].Position = i + 1
		updates[i] = repository.PositionUpdate{ID: lessons[i].ID, Position: i + 1}
	}

	move := &Move{Status: MovePending, Kind: KindLesson, ItemID: ev.ActiveID, Updates: updates}
	if err := co.persister.ReorderLessons(ctx, ev.ActiveChapterID, updates); err != nil {
		co.chapters = snapshot
		move.Status = MoveRolledBack
		if co.logger != nil {
			co.logger.Warnf("lesson reorder rolled back: %s", err)
		}
		return move, fmt.Errorf("persist lesson order: %w", err)
	}
	move.Status = MoveConfirmed
	return move, nil
}

func chapterIndex(chapters []ChapterNode, id uuid.UUID) int {
	for i := range chapters {
		if chapters[i].ID == id {
			return i
		}
	}
	return -1
}

func lessonIndex(lessons []LessonNode, id uuid.UUID) int {
	for i := range lessons {
		if lessons[i].ID == id {
			return i
		}
	}
	return -1
}

func moveElement[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	item := items[from]
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}

func cloneChapters(chapters []ChapterNode) []ChapterNode {
	out := make([]ChapterNode, len(chapters))
	for i, ch := range chapters {
		out[i] = ch
		out[i].Lessons = append([]LessonNode(nil), ch.Lessons...)
	}
	return out
}
