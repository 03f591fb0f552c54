package completion

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/internal/pgntree"
)

// Tracker derives ratios from chapter PGN through a shared parse cache.
type Tracker struct {
	cache *pgntree.Cache
}

func NewTracker(cache *pgntree.Cache) *Tracker {
	return &Tracker{cache: cache}
}

func (t *Tracker) ChapterRatio(ch lesson.Chapter, stats ChapterStats) (Ratio, error) {
	parsed, err := t.cache.Parse(ch.PGN)
	if err != nil {
		return Ratio{}, err
	}
	return ChapterRatio(parsed.Signatures, stats), nil
}

// LessonRatios returns one ratio per chapter in chapter order. Chapters are
// parsed concurrently; the first parse error cancels the rest.
func (t *Tracker) LessonRatios(ctx context.Context, l *lesson.Lesson, stats []ChapterStats) ([]Ratio, error) {
	out := make([]Ratio, len(l.Chapters))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, ch := range l.Chapters {
		var st ChapterStats
		if i < len(stats) {
			st = stats[i]
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := t.ChapterRatio(ch, st)
			if err != nil {
				return fmt.Errorf("chapter %d: %w", i+1, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
