package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mioriaty/lms-with-better-auth/internal/domain/course"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &PostgresCourseRepository{db: db}
}

func (r *PostgresCourseRepository) Create(ctx context.Context, c *course.Course) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) || isUniqueViolation(res.Error) {
			return lms_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (course.Course, error) {
	var c course.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course.Course{}, lms_errors.ErrNotFound
		}
		return course.Course{}, err
	}
	return c, nil
}

// GetDetail loads a course with its chapters and lessons in position order.
func (r *PostgresCourseRepository) GetDetail(ctx context.Context, id uuid.UUID) (course.Course, error) {
	var c course.Course
	err := r.db.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course.Course{}, lms_errors.ErrNotFound
		}
		return course.Course{}, err
	}
	return c, nil
}

func (r *PostgresCourseRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]course.Course, error) {
	var courses []course.Course
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *PostgresCourseRepository) ListPublished(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	err := r.db.WithContext(ctx).
		Where("status = ?", course.StatusPublished).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *PostgresCourseRepository) Update(ctx context.Context, c course.Course) error {
	c.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Save(&c)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return lms_errors.ErrAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lms_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&course.Course{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lms_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCourseRepository) GetLesson(ctx context.Context, id uuid.UUID) (course.Lesson, error) {
	var l course.Lesson
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course.Lesson{}, lms_errors.ErrNotFound
		}
		return course.Lesson{}, err
	}
	return l, nil
}

func (r *PostgresCourseRepository) UpdateLesson(ctx context.Context, l course.Lesson) error {
	l.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Save(&l)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return lms_errors.ErrNotFound
	}
	return nil
}
