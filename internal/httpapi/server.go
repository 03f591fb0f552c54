// Package httpapi serves the trainer over JSON/HTTP with fasthttp.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/completion"
	"github.com/park285/cheese-opening-trainer/internal/judgement"
	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/internal/msgcat"
	"github.com/park285/cheese-opening-trainer/internal/pgntree"
	"github.com/park285/cheese-opening-trainer/internal/review"
)

const maxBodySize = 1 << 20

// Reviewer is satisfied by *review.Service.
type Reviewer interface {
	ReviewMove(ctx context.Context, req review.Request) (*review.Result, error)
}

// Deps are the collaborators of a Server. Reviewer may be nil when no engine
// is configured.
type Deps struct {
	Cache      *pgntree.Cache
	Classifier *judgement.Classifier
	Limits     lesson.Limits
	Lessons    lesson.Repository
	Progress   completion.Store
	Reviewer   Reviewer
	Catalog    *msgcat.Catalog
	Logger     *zap.Logger
}

type Server struct {
	cache      *pgntree.Cache
	classifier *judgement.Classifier
	limits     lesson.Limits
	lessons    lesson.Repository
	progress   completion.Store
	tracker    *completion.Tracker
	reviewer   Reviewer
	catalog    *msgcat.Catalog
	logger     *zap.Logger
}

func New(d Deps) (*Server, error) {
	if d.Cache == nil || d.Classifier == nil || d.Lessons == nil || d.Progress == nil {
		return nil, errors.New("httpapi: cache, classifier, lessons and progress are required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Catalog == nil {
		d.Catalog = msgcat.Default()
	}
	return &Server{
		cache:      d.Cache,
		classifier: d.Classifier,
		limits:     d.Limits,
		lessons:    d.Lessons,
		progress:   d.Progress,
		tracker:    completion.NewTracker(d.Cache),
		reviewer:   d.Reviewer,
		catalog:    d.Catalog,
		logger:     d.Logger,
	}, nil
}

// Handler routes requests. Paths:
//
//	GET  /healthz
//	POST /v1/lines
//	POST /v1/convert
//	POST /v1/judge
//	POST /v1/review
//	POST /v1/lessons
//	GET    /v1/lessons/{id}
//	PUT    /v1/lessons/{id}
//	DELETE /v1/lessons/{id}
//	GET    /v1/lessons/{id}/ratios   (POST accepted)
//	POST   /v1/lessons/{id}/complete
//	POST   /v1/lessons/{id}/reset
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		s.route(ctx)
		s.logger.Debug("http request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := strings.TrimRight(string(ctx.Path()), "/")
	method := string(ctx.Method())

	switch path {
	case "/healthz":
		if method == fasthttp.MethodGet {
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.SetBodyString("ok")
			return
		}
	case "/v1/lines":
		if method == fasthttp.MethodPost {
			s.handleLines(ctx)
			return
		}
	case "/v1/convert":
		if method == fasthttp.MethodPost {
			s.handleConvert(ctx)
			return
		}
	case "/v1/judge":
		if method == fasthttp.MethodPost {
			s.handleJudge(ctx)
			return
		}
	case "/v1/review":
		if method == fasthttp.MethodPost {
			s.handleReview(ctx)
			return
		}
	case "/v1/lessons":
		if method == fasthttp.MethodPost {
			s.handleCreateLesson(ctx)
			return
		}
	default:
		if rest, ok := strings.CutPrefix(path, "/v1/lessons/"); ok {
			s.routeLesson(ctx, method, rest)
			return
		}
		s.writeError(ctx, fasthttp.StatusNotFound, notFound("route"))
		return
	}
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, badRequest("method not allowed"))
}

func (s *Server) routeLesson(ctx *fasthttp.RequestCtx, method, rest string) {
	id, action, _ := strings.Cut(rest, "/")
	switch {
	case action == "" && method == fasthttp.MethodGet:
		s.handleGetLesson(ctx, id)
	case action == "" && method == fasthttp.MethodPut:
		s.handleUpdateLesson(ctx, id)
	case action == "" && method == fasthttp.MethodDelete:
		s.handleDeleteLesson(ctx, id)
	case action == "ratios" && (method == fasthttp.MethodGet || method == fasthttp.MethodPost):
		s.handleRatios(ctx, id)
	case action == "complete" && method == fasthttp.MethodPost:
		s.handleComplete(ctx, id)
	case action == "reset" && method == fasthttp.MethodPost:
		s.handleReset(ctx, id)
	case action == "" || action == "ratios" || action == "complete" || action == "reset":
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, badRequest("method not allowed"))
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, notFound("route"))
	}
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "opening-trainer",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       60 * time.Second,
		MaxRequestBodySize: maxBodySize,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("http api listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("http api shutting down")
		if err := srv.Shutdown(); err != nil {
			return err
		}
		return <-errCh
	}
}

func decodeJSON(ctx *fasthttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return badRequest("empty body")
	}
	if len(body) > maxBodySize {
		return badRequest("body too large")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(b)
}
