package repository

import (
	"context"

	"github.com/mioriaty/lms-with-better-auth/internal/domain/course"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresStructureRepository struct {
	db *gorm.DB
}

func NewStructureRepository(db *gorm.DB) StructureRepository {
	return &PostgresStructureRepository{db: db}
}

func (r *PostgresStructureRepository) ListChapters(ctx context.Context, courseID uuid.UUID) ([]course.Chapter, error) {
	var chapters []course.Chapter
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (r *PostgresStructureRepository) ListLessons(ctx context.Context, chapterID uuid.UUID) ([]course.Lesson, error) {
	var lessons []course.Lesson
	err := r.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("position ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

// CreateChapter appends the chapter at max sibling position + 1. The max is
// read inside the insert transaction so two concurrent creates cannot claim
// the same position.
func (r *PostgresStructureRepository) CreateChapter(ctx context.Context, ch *course.Chapter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		err := tx.Model(&course.Chapter{}).
			Where("course_id = ?", ch.CourseID).
			Select("COALESCE(MAX(position), 0)").
			Row().Scan(&maxPos)
		if err != nil {
			return err
		}
		ch.Position = maxPos + 1
		return tx.Create(ch).Error
	})
}

func (r *PostgresStructureRepository) CreateLesson(ctx context.Context, l *course.Lesson) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int
		err := tx.Model(&course.Lesson{}).
			Where("chapter_id = ?", l.ChapterID).
			Select("COALESCE(MAX(position), 0)").
			Row().Scan(&maxPos)
		if err != nil {
			return err
		}
		l.Position = maxPos + 1
		return tx.Create(l).Error
	})
}

func (r *PostgresStructureRepository) ReorderChapters(ctx context.Context, courseID uuid.UUID, updates []PositionUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&course.Chapter{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(updates)) {
			return lms_errors.ErrSparsePositions
		}
		for _, u := range updates {
			res := tx.Model(&course.Chapter{}).
				Where("id = ? AND course_id = ?", u.ID, courseID).
				Update("position", u.Position)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return lms_errors.ErrNotFound
			}
		}
		return nil
	})
}

func (r *PostgresStructureRepository) ReorderLessons(ctx context.Context, chapterID uuid.UUID, updates []PositionUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&course.Lesson{}).Where("chapter_id = ?", chapterID).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(updates)) {
			return lms_errors.ErrSparsePositions
		}
		for _, u := range updates {
			res := tx.Model(&course.Lesson{}).
				Where("id = ? AND chapter_id = ?", u.ID, chapterID).
				Update("position", u.Position)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return lms_errors.ErrNotFound
			}
		}
		return nil
	})
}

// DeleteChapter removes the chapter and renumbers the surviving siblings so
// positions stay dense, all in one transaction.
func (r *PostgresStructureRepository) DeleteChapter(ctx context.Context, courseID, chapterID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chapters []course.Chapter
		if err := tx.Where("course_id = ?", courseID).Order("position ASC").Find(&chapters).Error; err != nil {
			return err
		}
		found := false
		for _, ch := range chapters {
			if ch.ID == chapterID {
				found = true
				break
			}
		}
		if !found {
			return lms_errors.ErrNotFound
		}

		res := tx.Delete(&course.Chapter{}, "id = ? AND course_id = ?", chapterID, courseID)
		if res.Error != nil {
			return res.Error
		}

		pos := 0
		for _, ch := range chapters {
			if ch.ID == chapterID {
				continue
			}
			pos++
			if ch.Position == pos {
				continue
			}
			if err := tx.Model(&course.Chapter{}).Where("id = ?", ch.ID).Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresStructureRepository) DeleteLesson(ctx context.Context, chapterID, lessonID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lessons []course.Lesson
		if err := tx.Where("chapter_id = ?", chapterID).Order("position ASC").Find(&lessons).Error; err != nil {
			return err
		}
		found := false
		for _, l := range lessons {
			if l.ID == lessonID {
				found = true
				break
			}
		}
		if !found {
			return lms_errors.ErrNotFound
		}

		res := tx.Delete(&course.Lesson{}, "id = ? AND chapter_id = ?", lessonID, chapterID)
		if res.Error != nil {
			return res.Error
		}

		pos := 0
		for _, l := range lessons {
			if l.ID == lessonID {
				continue
			}
			pos++
			if l.Position == pos {
				continue
			}
			if err := tx.Model(&course.Lesson{}).Where("id = ?", l.ID).Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
