// Package lesson holds the lesson and chapter model, its boundary limits and
// persistence.
package lesson

import (
	"fmt"
	"strings"
	"time"

	chess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return "", fmt.Errorf("unknown color %q", s)
	}
}

func (c Color) Chess() chess.Color {
	if c == Black {
		return chess.Black
	}
	return chess.White
}

// Chapter is one PGN study of a lesson. Its tree and lines are derived from
// PGN on demand.
type Chapter struct {
	Title string `json:"title"`
	PGN   string `json:"pgn"`
}

type Lesson struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UserColor Color     `json:"userColor"`
	Chapters  []Chapter `json:"chapters"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns a lesson with a fresh ID. It is not validated.
func New(title string, color Color, chapters []Chapter) *Lesson {
	now := time.Now().UTC()
	return &Lesson{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		UserColor: color,
		Chapters:  chapters,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Lesson) Chapter(i int) (Chapter, bool) {
	if i < 0 || i >= len(l.Chapters) {
		return Chapter{}, false
	}
	return l.Chapters[i], true
}

func (l *Lesson) clone() *Lesson {
	cp := *l
	cp.Chapters = append([]Chapter(nil), l.Chapters...)
	return &cp
}
