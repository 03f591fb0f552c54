package lesson

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

type Limits struct {
	MaxChapters    int
	MaxPGNLength   int
	MaxTitleLength int
}

func DefaultLimits() Limits {
	return Limits{
		MaxChapters:    50,
		MaxPGNLength:   20000,
		MaxTitleLength: 100,
	}
}

type Field string

const (
	FieldTitle        Field = "title"
	FieldColor        Field = "userColor"
	FieldChapters     Field = "chapters"
	FieldChapterTitle Field = "chapterTitle"
	FieldPGN          Field = "pgn"
)

var (
	ErrTitleRequired = errors.New("lesson title is required")
	ErrBadColor      = errors.New("lesson color must be white or black")
)

// ValidationError reports a value over its limit. Chapter is the zero-based
// chapter index, -1 for lesson-level fields.
type ValidationError struct {
	Field   Field
	Chapter int
	Limit   int
	Actual  int
}

// Excess is how far Actual is over Limit.
func (e *ValidationError) Excess() int { return e.Actual - e.Limit }

func (e *ValidationError) Error() string {
	unit := "characters"
	if e.Field == FieldChapters {
		unit = "chapters"
	}
	if e.Chapter >= 0 {
		return fmt.Sprintf("chapter %d %s exceeds by %d %s (limit %d)", e.Chapter+1, e.Field, e.Excess(), unit, e.Limit)
	}
	return fmt.Sprintf("%s exceeds by %d %s (limit %d)", e.Field, e.Excess(), unit, e.Limit)
}

// MessageKey names the user-facing catalog template for the error.
func (e *ValidationError) MessageKey() string {
	return "lesson.limit." + string(e.Field)
}

// MessageData is the template data for MessageKey. Chapter is one-based.
func (e *ValidationError) MessageData() map[string]any {
	return map[string]any{
		"Field":   string(e.Field),
		"Chapter": e.Chapter + 1,
		"Limit":   e.Limit,
		"Actual":  e.Actual,
		"Excess":  e.Excess(),
	}
}

// Validate checks l against the limits and reports every violation.
func (lim Limits) Validate(l *Lesson) error {
	var errs []error
	if l.Title == "" {
		errs = append(errs, ErrTitleRequired)
	}
	if l.UserColor != White && l.UserColor != Black {
		errs = append(errs, ErrBadColor)
	}
	if n := utf8.RuneCountInString(l.Title); lim.MaxTitleLength > 0 && n > lim.MaxTitleLength {
		errs = append(errs, &ValidationError{Field: FieldTitle, Chapter: -1, Limit: lim.MaxTitleLength, Actual: n})
	}
	if lim.MaxChapters > 0 && len(l.Chapters) > lim.MaxChapters {
		errs = append(errs, &ValidationError{Field: FieldChapters, Chapter: -1, Limit: lim.MaxChapters, Actual: len(l.Chapters)})
	}
	for i, ch := range l.Chapters {
		if n := utf8.RuneCountInString(ch.Title); lim.MaxTitleLength > 0 && n > lim.MaxTitleLength {
			errs = append(errs, &ValidationError{Field: FieldChapterTitle, Chapter: i, Limit: lim.MaxTitleLength, Actual: n})
		}
		if n := utf8.RuneCountInString(ch.PGN); lim.MaxPGNLength > 0 && n > lim.MaxPGNLength {
			errs = append(errs, &ValidationError{Field: FieldPGN, Chapter: i, Limit: lim.MaxPGNLength, Actual: n})
		}
	}
	return errors.Join(errs...)
}

// Violations flattens the ValidationErrors inside err.
func Violations(err error) []*ValidationError {
	switch e := err.(type) {
	case nil:
		return nil
	case *ValidationError:
		return []*ValidationError{e}
	case interface{ Unwrap() []error }:
		var out []*ValidationError
		for _, inner := range e.Unwrap() {
			out = append(out, Violations(inner)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []*ValidationError{ve}
	}
	return nil
}
