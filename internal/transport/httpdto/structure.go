package httpdto

// PositionBody assigns a position to one chapter or lesson.
type PositionBody struct {
	ID       string `json:"id" binding:"required,uuid"`
	Position int    `json:"position" binding:"required,min=1"`
}

// ReorderRequest is used for the chapter and lesson reorder endpoints. The
// list must cover every sibling of the parent with dense positions 1..N.
type ReorderRequest struct {
	Positions []PositionBody `json:"positions" binding:"required,min=1,dive"`
}

// CreateChapterRequest is used for POST /v1/admin/courses/:id/chapters
type CreateChapterRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateLessonRequest is used for POST /v1/admin/chapters/:id/lessons
type CreateLessonRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	ThumbnailKey string `json:"thumbnailKey"`
	VideoKey     string `json:"videoKey"`
}
