package httpapi

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/completion"
	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/pkg/trainerdto"
)

func (s *Server) handleCreateLesson(ctx *fasthttp.RequestCtx) {
	var req trainerdto.CreateLessonRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	l, err := s.buildLesson(req.Title, req.UserColor, req.Chapters)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if err := s.lessons.Create(ctx, l); err != nil {
		s.fail(ctx, err)
		return
	}
	s.logger.Info("lesson created",
		zap.String("lesson_id", l.ID.String()),
		zap.Int("chapters", len(l.Chapters)),
	)
	s.writeJSON(ctx, fasthttp.StatusCreated, lessonDTO(l))
}

// handleUpdateLesson replaces a lesson's title, color and chapters. Stored
// progress is kept; lines that no longer exist simply stop counting.
func (s *Server) handleUpdateLesson(ctx *fasthttp.RequestCtx, rawID string) {
	prev, err := s.loadLesson(ctx, rawID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	var req trainerdto.UpdateLessonRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	l, err := s.buildLesson(req.Title, req.UserColor, req.Chapters)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	l.ID, l.CreatedAt = prev.ID, prev.CreatedAt
	if err := s.lessons.Update(ctx, l); err != nil {
		s.fail(ctx, err)
		return
	}
	s.logger.Info("lesson updated",
		zap.String("lesson_id", l.ID.String()),
		zap.Int("chapters", len(l.Chapters)),
	)
	s.writeJSON(ctx, fasthttp.StatusOK, lessonDTO(l))
}

// handleDeleteLesson removes the lesson and the progress of its chapters.
func (s *Server) handleDeleteLesson(ctx *fasthttp.RequestCtx, rawID string) {
	l, err := s.loadLesson(ctx, rawID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if err := s.lessons.Delete(ctx, l.ID); err != nil {
		s.fail(ctx, err)
		return
	}
	for i := range l.Chapters {
		if err := s.progress.Reset(ctx, l.ID, i); err != nil {
			s.logger.Warn("reset progress of deleted lesson",
				zap.String("lesson_id", l.ID.String()),
				zap.Int("chapter", i),
				zap.Error(err),
			)
		}
	}
	s.logger.Info("lesson deleted", zap.String("lesson_id", l.ID.String()))
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) buildLesson(title, userColor string, in []trainerdto.ChapterDTO) (*lesson.Lesson, error) {
	color, err := lesson.ParseColor(userColor)
	if err != nil {
		color = lesson.Color(strings.TrimSpace(userColor))
	}
	chapters := make([]lesson.Chapter, 0, len(in))
	for _, ch := range in {
		chapters = append(chapters, lesson.Chapter{Title: strings.TrimSpace(ch.Title), PGN: ch.PGN})
	}
	l := lesson.New(title, color, chapters)
	if err := s.limits.Validate(l); err != nil {
		return nil, err
	}
	for i, ch := range l.Chapters {
		if _, err := s.cache.Parse(ch.PGN); err != nil {
			return nil, fmt.Errorf("chapter %d: %w", i+1, err)
		}
	}
	return l, nil
}

func (s *Server) handleGetLesson(ctx *fasthttp.RequestCtx, rawID string) {
	l, err := s.loadLesson(ctx, rawID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, lessonDTO(l))
}

func (s *Server) handleRatios(ctx *fasthttp.RequestCtx, rawID string) {
	l, err := s.loadLesson(ctx, rawID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	stats, err := s.progress.LoadLesson(ctx, l.ID, len(l.Chapters))
	if err != nil {
		s.fail(ctx, err)
		return
	}
	ratios, err := s.tracker.LessonRatios(ctx, l, stats)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	resp := trainerdto.RatiosResponse{
		LessonID: l.ID.String(),
		Chapters: make([]trainerdto.RatioDTO, 0, len(ratios)),
		Total:    ratioDTO(completion.Sum(ratios)),
	}
	for _, r := range ratios {
		resp.Chapters = append(resp.Chapters, ratioDTO(r))
	}
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleComplete(ctx *fasthttp.RequestCtx, rawID string) {
	l, err := s.loadLesson(ctx, rawID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	var req trainerdto.CompleteLineRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	ch, ok := l.Chapter(req.Chapter)
	if !ok {
		s.fail(ctx, badRequest(fmt.Sprintf("chapter %d out of range", req.Chapter)))
		return
	}
	parsed, err := s.cache.Parse(ch.PGN)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	sig := strings.Join(strings.Fields(req.Signature), " ")
	if !slices.Contains(parsed.Signatures, sig) {
		s.fail(ctx, badRequest("signature is not a line of the chapter"))
		return
	}
	if err := s.progress.MarkComplete(ctx, l.ID, req.Chapter, sig); err != nil {
		s.fail(ctx, err)
		return
	}

	stats, err := s.progress.Load(ctx, l.ID, req.Chapter)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	r := completion.ChapterRatio(parsed.Signatures, stats)
	s.logger.Info("line completed",
		zap.String("lesson_id", l.ID.String()),
		zap.Int("chapter", req.Chapter),
		zap.Int("completed", r.CompletedCount),
		zap.Int("total", r.TotalCount),
	)
	s.writeJSON(ctx, fasthttp.StatusOK, ratioDTO(r))
}

func (s *Server) handleReset(ctx *fasthttp.RequestCtx, rawID string) {
	l, err := s.loadLesson(ctx, rawID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	var req trainerdto.ResetChapterRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	ch, ok := l.Chapter(req.Chapter)
	if !ok {
		s.fail(ctx, badRequest(fmt.Sprintf("chapter %d out of range", req.Chapter)))
		return
	}
	parsed, err := s.cache.Parse(ch.PGN)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if err := s.progress.Reset(ctx, l.ID, req.Chapter); err != nil {
		s.fail(ctx, err)
		return
	}
	s.logger.Info("chapter progress reset",
		zap.String("lesson_id", l.ID.String()),
		zap.Int("chapter", req.Chapter),
	)
	s.writeJSON(ctx, fasthttp.StatusOK, ratioDTO(completion.ChapterRatio(parsed.Signatures, nil)))
}

func (s *Server) loadLesson(ctx *fasthttp.RequestCtx, rawID string) (*lesson.Lesson, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, badRequest("invalid lesson id")
	}
	return s.lessons.Get(ctx, id)
}

func lessonDTO(l *lesson.Lesson) trainerdto.LessonDTO {
	dto := trainerdto.LessonDTO{
		ID:        l.ID.String(),
		Title:     l.Title,
		UserColor: string(l.UserColor),
		Chapters:  make([]trainerdto.ChapterDTO, 0, len(l.Chapters)),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
	for _, ch := range l.Chapters {
		dto.Chapters = append(dto.Chapters, trainerdto.ChapterDTO{Title: ch.Title, PGN: ch.PGN})
	}
	return dto
}

func ratioDTO(r completion.Ratio) trainerdto.RatioDTO {
	return trainerdto.RatioDTO{CompletedCount: r.CompletedCount, TotalCount: r.TotalCount}
}
