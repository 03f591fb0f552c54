package trainerdto

import "time"

type ChapterDTO struct {
	Title string `json:"title"`
	PGN   string `json:"pgn"`
}

type CreateLessonRequest struct {
	Title     string       `json:"title"`
	UserColor string       `json:"userColor"`
	Chapters  []ChapterDTO `json:"chapters"`
}

// UpdateLessonRequest replaces every field of a stored lesson.
type UpdateLessonRequest struct {
	Title     string       `json:"title"`
	UserColor string       `json:"userColor"`
	Chapters  []ChapterDTO `json:"chapters"`
}

type LessonDTO struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	UserColor string       `json:"userColor"`
	Chapters  []ChapterDTO `json:"chapters"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type RatioDTO struct {
	CompletedCount int `json:"completedCount"`
	TotalCount     int `json:"totalCount"`
}

type RatiosResponse struct {
	LessonID string     `json:"lessonId"`
	Chapters []RatioDTO `json:"chapters"`
	Total    RatioDTO   `json:"total"`
}

// CompleteLineRequest marks the line with Signature done in Chapter.
type CompleteLineRequest struct {
	Chapter   int    `json:"chapter"`
	Signature string `json:"signature"`
}

type ResetChapterRequest struct {
	Chapter int `json:"chapter"`
}
