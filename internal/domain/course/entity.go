package course

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

// Course represents courses
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `json:"description"`
	Excerpt     string    `json:"excerpt"`
	FileKey     string    `json:"fileKey"`
	Category    string    `json:"category"`
	Price       int       `gorm:"default:0" json:"price"`
	Duration    int       `gorm:"default:0" json:"duration"`
	Level       string    `gorm:"default:'BEGINNER'" json:"level"`
	Status      string    `gorm:"default:'DRAFT';index" json:"status"`
	Chapters    []Chapter `gorm:"constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
	CreatedAt   time.Time `gorm:"default:now()" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"default:now()" json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}

// Chapter represents chapters. Position is 1-based and dense within a course.
type Chapter struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"courseId"`
	Title     string    `gorm:"not null" json:"title"`
	Position  int       `gorm:"not null" json:"position"`
	Lessons   []Lesson  `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	CreatedAt time.Time `gorm:"default:now()" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updatedAt"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// Lesson represents lessons. Position is 1-based and dense within a chapter.
type Lesson struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ChapterID    uuid.UUID `gorm:"type:uuid;not null;index" json:"chapterId"`
	Title        string    `gorm:"not null" json:"title"`
	Position     int       `gorm:"not null" json:"position"`
	Description  string    `json:"description"`
	ThumbnailKey string    `json:"thumbnailKey"`
	VideoKey     string    `json:"videoKey"`
	CreatedAt    time.Time `gorm:"default:now()" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"default:now()" json:"updatedAt"`
}

func (Lesson) TableName() string {
	return "lessons"
}
