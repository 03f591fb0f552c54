package httpapi

import (
	"errors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/internal/notation"
	"github.com/park285/cheese-opening-trainer/internal/pgntree"
	"github.com/park285/cheese-opening-trainer/internal/review"
	"github.com/park285/cheese-opening-trainer/pkg/trainerdto"
)

// requestError is a client mistake detected by a handler.
type requestError struct {
	code   string
	detail string
}

func (e *requestError) Error() string { return e.code + ": " + e.detail }

func badRequest(detail string) error { return &requestError{code: trainerdto.CodeBadRequest, detail: detail} }

func notFound(what string) error { return &requestError{code: trainerdto.CodeNotFound, detail: what} }

var errNoEngine = errors.New("no engine configured")

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, err error) {
	_, de := s.domainError(err)
	s.writeJSON(ctx, status, trainerdto.ErrorResponse{Error: de})
}

func (s *Server) fail(ctx *fasthttp.RequestCtx, err error) {
	status, de := s.domainError(err)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.String("code", de.Code),
			zap.Error(err),
		)
	}
	s.writeJSON(ctx, status, trainerdto.ErrorResponse{Error: de})
}

// domainError maps err to a status and a rendered DomainError.
func (s *Server) domainError(err error) (int, trainerdto.DomainError) {
	var (
		reqErr    *requestError
		parseErr  *pgntree.ParseError
		syntaxErr *pgntree.SyntaxError
		illegal   *notation.IllegalMoveError
		ambiguous *notation.AmbiguousMoveError
	)

	if issues := lesson.Violations(err); len(issues) > 0 || errors.Is(err, lesson.ErrTitleRequired) || errors.Is(err, lesson.ErrBadColor) {
		de := trainerdto.DomainError{Code: trainerdto.CodeValidation, Message: err.Error()}
		for _, v := range issues {
			issue := trainerdto.ValidationIssue{
				Field:   string(v.Field),
				Limit:   v.Limit,
				Excess:  v.Excess(),
				Message: s.catalog.RenderOr(v.MessageKey(), v.MessageData(), v.Error()),
			}
			if v.Chapter >= 0 {
				ch := v.Chapter
				issue.Chapter = &ch
			}
			de.Details = append(de.Details, issue)
		}
		if errors.Is(err, lesson.ErrTitleRequired) && len(issues) == 0 {
			de.Message = s.catalog.RenderOr("lesson.required.title", nil, err.Error())
		}
		return fasthttp.StatusUnprocessableEntity, de
	}

	switch {
	case errors.As(err, &reqErr):
		if reqErr.code == trainerdto.CodeNotFound {
			return fasthttp.StatusNotFound, trainerdto.DomainError{Code: reqErr.code, Message: reqErr.detail + " not found"}
		}
		return fasthttp.StatusBadRequest, trainerdto.DomainError{
			Code:    reqErr.code,
			Message: s.catalog.RenderOr("error.bad_request", map[string]any{"Detail": reqErr.detail}, reqErr.Error()),
		}

	case errors.As(err, &parseErr):
		de := trainerdto.DomainError{Ply: parseErr.Ply, Path: parseErr.Path}
		data := map[string]any{"Token": parseErr.Token, "Ply": parseErr.Ply}
		if errors.Is(err, notation.ErrAmbiguousMove) {
			de.Code = trainerdto.CodeAmbiguousMove
			de.Message = s.catalog.RenderOr("pgn.ambiguous", data, err.Error())
		} else {
			de.Code = trainerdto.CodeIllegalMove
			de.Message = s.catalog.RenderOr("pgn.illegal", data, err.Error())
		}
		return fasthttp.StatusUnprocessableEntity, de

	case errors.As(err, &syntaxErr):
		return fasthttp.StatusUnprocessableEntity, trainerdto.DomainError{
			Code:    trainerdto.CodePGNSyntax,
			Message: s.catalog.RenderOr("pgn.syntax", map[string]any{"Offset": syntaxErr.Offset, "Msg": syntaxErr.Msg}, err.Error()),
		}

	case errors.As(err, &ambiguous):
		return fasthttp.StatusUnprocessableEntity, trainerdto.DomainError{
			Code:    trainerdto.CodeAmbiguousMove,
			Message: s.catalog.RenderOr("notation.ambiguous", map[string]any{"Token": ambiguous.Token}, err.Error()),
		}

	case errors.As(err, &illegal):
		return fasthttp.StatusUnprocessableEntity, trainerdto.DomainError{
			Code:    trainerdto.CodeIllegalMove,
			Message: s.catalog.RenderOr("notation.illegal", map[string]any{"Token": illegal.Token}, err.Error()),
		}

	case errors.Is(err, lesson.ErrNotFound):
		return fasthttp.StatusNotFound, trainerdto.DomainError{Code: trainerdto.CodeNotFound, Message: err.Error()}

	case errors.Is(err, errNoEngine), errors.Is(err, review.ErrNoAnalysis):
		return fasthttp.StatusServiceUnavailable, trainerdto.DomainError{
			Code:      trainerdto.CodeEngineUnavailable,
			Message:   s.catalog.RenderOr("error.engine_unavailable", nil, err.Error()),
			Retryable: true,
		}
	}

	return fasthttp.StatusInternalServerError, trainerdto.DomainError{
		Code:    trainerdto.CodeInternal,
		Message: s.catalog.RenderOr("error.internal", nil, "internal error"),
	}
}
