package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/cheese-opening-trainer/internal/completion"
	"github.com/park285/cheese-opening-trainer/internal/engine/uci"
	"github.com/park285/cheese-opening-trainer/internal/eval"
	"github.com/park285/cheese-opening-trainer/internal/judgement"
	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/internal/notation"
	"github.com/park285/cheese-opening-trainer/internal/pgntree"
	"github.com/park285/cheese-opening-trainer/internal/review"
	"github.com/park285/cheese-opening-trainer/pkg/trainerdto"
)

type stubReviewer struct{}

func (stubReviewer) ReviewMove(_ context.Context, req review.Request) (*review.Result, error) {
	lan, _ := notation.ParseLAN("e2e4")
	return &review.Result{
		Move:    notation.Move{LAN: lan, SAN: "e4", Ply: 1},
		Verdict: judgement.Verdict{Judgement: judgement.Best, Reference: eval.CP(25), ReferenceLAN: "d2d4", PlayedRank: 1},
		BestLAN: "e2e4",
		BestSAN: "e4",
		Analysis: uci.Analysis{
			Depth:      14,
			Candidates: []eval.MultiPV{{Rank: 1, Score: eval.CP(30), LANLine: []string{"e2e4"}}},
		},
	}, nil
}

type testAPI struct {
	t      *testing.T
	client *fasthttp.Client
}

func newTestAPI(t *testing.T, reviewer Reviewer) *testAPI {
	t.Helper()
	cache, err := pgntree.NewCache(16)
	require.NoError(t, err)
	classifier, err := judgement.NewClassifier(judgement.DefaultThresholds())
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := New(Deps{
		Cache:      cache,
		Classifier: classifier,
		Limits:     lesson.Limits{MaxChapters: 3, MaxPGNLength: 200, MaxTitleLength: 20},
		Lessons:    lesson.NewMemoryRepository(),
		Progress:   completion.NewRedisStore(rdb),
		Reviewer:   reviewer,
	})
	require.NoError(t, err)

	ln := fasthttputil.NewInmemoryListener()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return &testAPI{
		t:      t,
		client: &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }},
	}
}

func (a *testAPI) do(method, path string, in, out any) int {
	a.t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(method)
	req.SetRequestURI("http://trainer" + path)
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(a.t, err)
		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}
	require.NoError(a.t, a.client.Do(req, resp))
	if out != nil {
		require.NoError(a.t, json.Unmarshal(resp.Body(), out), string(resp.Body()))
	}
	return resp.StatusCode()
}

func TestHealthAndRouting(t *testing.T) {
	api := newTestAPI(t, nil)
	assert.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodGet, "/healthz", nil, nil))

	var er trainerdto.ErrorResponse
	assert.Equal(t, fasthttp.StatusNotFound, api.do(fasthttp.MethodGet, "/v2/nothing", nil, &er))
	assert.Equal(t, trainerdto.CodeNotFound, er.Error.Code)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, api.do(fasthttp.MethodGet, "/v1/lines", nil, nil))
}

func TestLines(t *testing.T) {
	api := newTestAPI(t, nil)

	var resp trainerdto.LinesResponse
	status := api.do(fasthttp.MethodPost, "/v1/lines", trainerdto.LinesRequest{
		PGN: `[Event "Rep"]

1. e4 e5 (1... c5 2. Nf3) 2. Nf3 *`,
	}, &resp)
	require.Equal(t, fasthttp.StatusOK, status)

	assert.Equal(t, "Rep", resp.Tags["Event"])
	assert.Equal(t, 5, resp.Plies)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "e2e4 e7e5 g1f3", resp.Lines[0].Signature)
	assert.Equal(t, []string{"e4", "e5", "Nf3"}, resp.Lines[0].SAN)
	assert.Equal(t, []string{"e2e4", "c7c5", "g1f3"}, resp.Lines[1].LAN)
	assert.NotNil(t, resp.Lines[1].Opening)
}

func TestLinesReportsParseErrors(t *testing.T) {
	api := newTestAPI(t, nil)

	var er trainerdto.ErrorResponse
	status := api.do(fasthttp.MethodPost, "/v1/lines", trainerdto.LinesRequest{PGN: "1. e4 e5 2. Ke3"}, &er)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, status)
	assert.Equal(t, trainerdto.CodeIllegalMove, er.Error.Code)
	assert.Equal(t, 3, er.Error.Ply)
	assert.Equal(t, "Illegal move Ke3 at ply 3.", er.Error.Message)

	status = api.do(fasthttp.MethodPost, "/v1/lines", trainerdto.LinesRequest{PGN: "1. e4 {open"}, &er)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, status)
	assert.Equal(t, trainerdto.CodePGNSyntax, er.Error.Code)

	status = api.do(fasthttp.MethodPost, "/v1/lines", nil, &er)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestConvert(t *testing.T) {
	api := newTestAPI(t, nil)

	var resp trainerdto.ConvertResponse
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/convert", trainerdto.ConvertRequest{
		Moves: []string{"d2d4", "d7d5", "g1f3", "g8f6"},
		SAN:   "Nbd2",
	}, &resp))
	assert.Equal(t, "b1d2", resp.LAN)
	assert.Equal(t, "Nbd2", resp.SAN)

	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/convert", trainerdto.ConvertRequest{LAN: "e2e4"}, &resp))
	assert.Equal(t, "e4", resp.SAN)
	assert.Contains(t, resp.FEN, " b ")

	var er trainerdto.ErrorResponse
	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, "/v1/convert", trainerdto.ConvertRequest{SAN: "e4", LAN: "e2e4"}, &er))
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, api.do(fasthttp.MethodPost, "/v1/convert",
		trainerdto.ConvertRequest{Moves: []string{"d2d4", "d7d5", "g1f3", "g8f6"}, SAN: "Nd2"}, &er))
	assert.Equal(t, trainerdto.CodeAmbiguousMove, er.Error.Code)
	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, "/v1/convert", trainerdto.ConvertRequest{FEN: "garbage", SAN: "e4"}, &er))

	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/convert", trainerdto.ConvertRequest{FEN: "startpos", SAN: "Nf3"}, &resp))
	assert.Equal(t, "g1f3", resp.LAN)
}

func TestJudge(t *testing.T) {
	api := newTestAPI(t, nil)

	var resp trainerdto.JudgeResponse
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/judge", trainerdto.JudgeRequest{
		Color: "white", Played: "cp 10", Reference: "cp 30",
	}, &resp))
	assert.Equal(t, "good", resp.Judgement)
	assert.Zero(t, resp.PlayedRank)

	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/judge", trainerdto.JudgeRequest{
		Color:     "white",
		Played:    "cp 30",
		PlayedLAN: "e2e4",
		Candidates: []trainerdto.CandidateDTO{
			{Rank: 1, Score: "cp 30", Line: []string{"e2e4"}},
			{Rank: 2, Score: "cp 28", Line: []string{"d2d4"}},
		},
	}, &resp))
	assert.Equal(t, "best", resp.Judgement)
	assert.Equal(t, 1, resp.PlayedRank)
	assert.Equal(t, "d2d4", resp.ReferenceLAN)

	var er trainerdto.ErrorResponse
	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, "/v1/judge", trainerdto.JudgeRequest{
		Color: "green", Played: "cp 10", Reference: "cp 30",
	}, &er))
	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, "/v1/judge", trainerdto.JudgeRequest{
		Color: "black", Played: "ten", Reference: "cp 30",
	}, &er))
}

func TestReview(t *testing.T) {
	var er trainerdto.ErrorResponse
	off := newTestAPI(t, nil)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, off.do(fasthttp.MethodPost, "/v1/review", trainerdto.ReviewRequest{Played: "e4"}, &er))
	assert.True(t, er.Error.Retryable)

	api := newTestAPI(t, stubReviewer{})
	var resp trainerdto.ReviewResponse
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/review", trainerdto.ReviewRequest{Played: "e4"}, &resp))
	assert.Equal(t, "best", resp.Judgement)
	assert.Equal(t, "e2e4", resp.PlayedLAN)
	assert.Equal(t, 14, resp.Depth)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "+0.30", resp.Candidates[0].Score)

	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/review",
		trainerdto.ReviewRequest{FEN: "startpos", Moves: []string{"e2e4"}, Played: "c5"}, &resp))

	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, "/v1/review", trainerdto.ReviewRequest{}, &er))
}

func TestLessonLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)

	var er trainerdto.ErrorResponse
	status := api.do(fasthttp.MethodPost, "/v1/lessons", trainerdto.CreateLessonRequest{
		Title:     "A title well over twenty",
		UserColor: "white",
		Chapters:  []trainerdto.ChapterDTO{{Title: "Main", PGN: "1. e4 e5"}},
	}, &er)
	require.Equal(t, fasthttp.StatusUnprocessableEntity, status)
	assert.Equal(t, trainerdto.CodeValidation, er.Error.Code)
	require.Len(t, er.Error.Details, 1)
	assert.Equal(t, "title", er.Error.Details[0].Field)
	assert.Equal(t, 4, er.Error.Details[0].Excess)
	assert.Nil(t, er.Error.Details[0].Chapter)
	assert.Equal(t, "Title exceeds the limit by 4 characters (limit 20).", er.Error.Details[0].Message)

	status = api.do(fasthttp.MethodPost, "/v1/lessons", trainerdto.CreateLessonRequest{
		Title: "Open games", UserColor: "white",
		Chapters: []trainerdto.ChapterDTO{{Title: "Bad", PGN: "1. e4 e5 2. Ke3"}},
	}, &er)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, status)
	assert.Equal(t, trainerdto.CodeIllegalMove, er.Error.Code)

	var created trainerdto.LessonDTO
	require.Equal(t, fasthttp.StatusCreated, api.do(fasthttp.MethodPost, "/v1/lessons", trainerdto.CreateLessonRequest{
		Title:     "Open games",
		UserColor: "white",
		Chapters: []trainerdto.ChapterDTO{
			{Title: "Main", PGN: "1. e4 e5 (1... c5 2. Nf3) 2. Nf3"},
			{Title: "Queen", PGN: "1. d4 d5"},
		},
	}, &created))
	require.NotEmpty(t, created.ID)

	var got trainerdto.LessonDTO
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodGet, "/v1/lessons/"+created.ID, nil, &got))
	assert.Equal(t, "Open games", got.Title)
	assert.Len(t, got.Chapters, 2)

	var ratios trainerdto.RatiosResponse
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodGet, "/v1/lessons/"+created.ID+"/ratios", nil, &ratios))
	assert.Equal(t, []trainerdto.RatioDTO{{CompletedCount: 0, TotalCount: 2}, {CompletedCount: 0, TotalCount: 1}}, ratios.Chapters)
	assert.Equal(t, trainerdto.RatioDTO{CompletedCount: 0, TotalCount: 3}, ratios.Total)

	var ratio trainerdto.RatioDTO
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/lessons/"+created.ID+"/complete",
		trainerdto.CompleteLineRequest{Chapter: 0, Signature: "e2e4  c7c5 g1f3"}, &ratio))
	assert.Equal(t, trainerdto.RatioDTO{CompletedCount: 1, TotalCount: 2}, ratio)

	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, "/v1/lessons/"+created.ID+"/complete",
		trainerdto.CompleteLineRequest{Chapter: 0, Signature: "d2d4 d7d5"}, &er))
	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, "/v1/lessons/"+created.ID+"/complete",
		trainerdto.CompleteLineRequest{Chapter: 5, Signature: "d2d4 d7d5"}, &er))

	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, "/v1/lessons/"+created.ID+"/ratios", nil, &ratios))
	assert.Equal(t, trainerdto.RatioDTO{CompletedCount: 1, TotalCount: 3}, ratios.Total)

	assert.Equal(t, fasthttp.StatusNotFound, api.do(fasthttp.MethodGet, "/v1/lessons/00000000-0000-0000-0000-000000000001", nil, &er))
	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodGet, "/v1/lessons/not-a-uuid", nil, &er))
}

func TestLessonEditResetDelete(t *testing.T) {
	api := newTestAPI(t, nil)
	const full = "1. e4 e5 (1... c5 2. Nf3) 2. Nf3"

	var created trainerdto.LessonDTO
	require.Equal(t, fasthttp.StatusCreated, api.do(fasthttp.MethodPost, "/v1/lessons", trainerdto.CreateLessonRequest{
		Title: "Open games", UserColor: "white",
		Chapters: []trainerdto.ChapterDTO{{Title: "Main", PGN: full}},
	}, &created))
	base := "/v1/lessons/" + created.ID

	var ratio trainerdto.RatioDTO
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, base+"/complete",
		trainerdto.CompleteLineRequest{Chapter: 0, Signature: "e2e4 c7c5 g1f3"}, &ratio))
	assert.Equal(t, trainerdto.RatioDTO{CompletedCount: 1, TotalCount: 2}, ratio)

	// Removing the completed line drops it from both counts.
	var updated trainerdto.LessonDTO
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPut, base, trainerdto.UpdateLessonRequest{
		Title: "Open games", UserColor: "white",
		Chapters: []trainerdto.ChapterDTO{{Title: "Main", PGN: "1. e4 e5 2. Nf3"}},
	}, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	var ratios trainerdto.RatiosResponse
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodGet, base+"/ratios", nil, &ratios))
	assert.Equal(t, []trainerdto.RatioDTO{{CompletedCount: 0, TotalCount: 1}}, ratios.Chapters)

	// The stale entry survived the edit and counts again once the line is back.
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPut, base, trainerdto.UpdateLessonRequest{
		Title: "Open games", UserColor: "white",
		Chapters: []trainerdto.ChapterDTO{{Title: "Main", PGN: full}},
	}, &updated))
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodGet, base+"/ratios", nil, &ratios))
	assert.Equal(t, []trainerdto.RatioDTO{{CompletedCount: 1, TotalCount: 2}}, ratios.Chapters)

	var er trainerdto.ErrorResponse
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, api.do(fasthttp.MethodPut, base, trainerdto.UpdateLessonRequest{
		Title: "Open games", UserColor: "white",
		Chapters: []trainerdto.ChapterDTO{{Title: "Main", PGN: "1. e4 e5 2. Ke3"}},
	}, &er))
	assert.Equal(t, trainerdto.CodeIllegalMove, er.Error.Code)
	assert.Equal(t, fasthttp.StatusNotFound, api.do(fasthttp.MethodPut, "/v1/lessons/00000000-0000-0000-0000-000000000001",
		trainerdto.UpdateLessonRequest{Title: "x", UserColor: "white"}, &er))

	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodPost, base+"/reset", trainerdto.ResetChapterRequest{Chapter: 0}, &ratio))
	assert.Equal(t, trainerdto.RatioDTO{CompletedCount: 0, TotalCount: 2}, ratio)
	require.Equal(t, fasthttp.StatusOK, api.do(fasthttp.MethodGet, base+"/ratios", nil, &ratios))
	assert.Equal(t, trainerdto.RatioDTO{CompletedCount: 0, TotalCount: 2}, ratios.Total)
	assert.Equal(t, fasthttp.StatusBadRequest, api.do(fasthttp.MethodPost, base+"/reset", trainerdto.ResetChapterRequest{Chapter: 3}, &er))

	assert.Equal(t, fasthttp.StatusNoContent, api.do(fasthttp.MethodDelete, base, nil, nil))
	assert.Equal(t, fasthttp.StatusNotFound, api.do(fasthttp.MethodGet, base, nil, &er))
	assert.Equal(t, fasthttp.StatusNotFound, api.do(fasthttp.MethodDelete, base, nil, &er))
}
