// Package review judges a trainee's move with engine analysis.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	chess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/engine/uci"
	"github.com/park285/cheese-opening-trainer/internal/eval"
	"github.com/park285/cheese-opening-trainer/internal/judgement"
	"github.com/park285/cheese-opening-trainer/internal/notation"
	"github.com/park285/cheese-opening-trainer/internal/openings"
)

// Analyzer is satisfied by *uci.Session and *uci.Pool.
type Analyzer interface {
	Analyze(ctx context.Context, req uci.AnalyzeRequest) (uci.Analysis, error)
}

var ErrNoAnalysis = errors.New("engine returned no candidates")

type Service struct {
	analyzer   Analyzer
	classifier *judgement.Classifier
	book       *openings.Book
	limits     uci.Limits
	logger     *zap.Logger
}

type Option func(*Service)

// WithBook marks reviewed moves that a polyglot book knows.
func WithBook(b *openings.Book) Option { return func(s *Service) { s.book = b } }

func WithLimits(l uci.Limits) Option { return func(s *Service) { s.limits = l } }

func NewService(analyzer Analyzer, classifier *judgement.Classifier, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		analyzer:   analyzer,
		classifier: classifier,
		limits:     uci.Limits{Depth: 16},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Request struct {
	FEN   string
	Moves []string
	// Played is SAN or LAN.
	Played string
}

type Result struct {
	Move     notation.Move
	Verdict  judgement.Verdict
	BestLAN  string
	BestSAN  string
	InBook   bool
	Opening  *openings.Opening
	Analysis uci.Analysis
}

func (s *Service) ReviewMove(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	board, err := notation.StartBoard(req.FEN)
	if err != nil {
		return nil, err
	}
	board, err = board.PlayLANs(req.Moves)
	if err != nil {
		return nil, fmt.Errorf("replay moves: %w", err)
	}
	mover := board.Turn()

	mv, after, err := playAny(board, req.Played)
	if err != nil {
		return nil, err
	}
	playedLAN := mv.LAN.String()

	analysis, err := s.analyzer.Analyze(ctx, uci.AnalyzeRequest{FEN: req.FEN, Moves: req.Moves, Limits: s.limits})
	if err != nil {
		return nil, fmt.Errorf("analyze position: %w", err)
	}
	if len(analysis.Candidates) == 0 {
		return nil, ErrNoAnalysis
	}

	played, err := judgement.PlayedScore(analysis.Candidates, playedLAN)
	if err != nil {
		// not among the candidates: score the position after the move
		if score, ok := terminalScore(after, mover); ok {
			played = score
		} else if played, err = s.scoreAfter(ctx, req, playedLAN); err != nil {
			return nil, err
		}
	}

	verdict, err := s.classifier.Judge(mover, played, analysis.Candidates, playedLAN)
	if err != nil {
		return nil, err
	}

	res := &Result{Move: mv, Verdict: verdict, Analysis: analysis}
	if best := bestOf(analysis.Candidates); best != "" {
		res.BestLAN = best
		if lan, err := notation.ParseLAN(best); err == nil {
			if san, err := board.SAN(lan); err == nil {
				res.BestSAN = san
			}
		}
	}
	line := append(append([]string(nil), req.Moves...), playedLAN)
	if s.book != nil {
		in, err := s.book.Contains(req.FEN, req.Moves, playedLAN)
		if err != nil {
			s.logger.Warn("book lookup failed", zap.Error(err))
		}
		res.InBook = in
	}
	if fen := strings.TrimSpace(req.FEN); fen == "" || fen == "startpos" {
		if o, ok, err := openings.Name(line); err == nil && ok {
			res.Opening = &o
		}
	}

	s.logger.Info("move reviewed",
		zap.String("played", playedLAN),
		zap.String("san", mv.SAN),
		zap.Int("ply", mv.Ply),
		zap.String("judgement", verdict.Judgement.String()),
		zap.Float64("loss", verdict.Loss),
		zap.String("best", res.BestLAN),
		zap.Bool("in_book", res.InBook),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (s *Service) scoreAfter(ctx context.Context, req Request, playedLAN string) (eval.Score, error) {
	moves := append(append([]string(nil), req.Moves...), playedLAN)
	after, err := s.analyzer.Analyze(ctx, uci.AnalyzeRequest{FEN: req.FEN, Moves: moves, Limits: s.limits})
	if err != nil {
		return eval.Score{}, fmt.Errorf("analyze reply: %w", err)
	}
	for _, c := range after.Candidates {
		if c.Rank == 1 {
			return c.Score, nil
		}
	}
	if len(after.Candidates) > 0 {
		return after.Candidates[0].Score, nil
	}
	return eval.Score{}, ErrNoAnalysis
}

// terminalScore scores a position the engine cannot search: a checkmate
// delivered by mover, or a stalemate.
func terminalScore(after *notation.Board, mover chess.Color) (eval.Score, bool) {
	switch after.Status() {
	case chess.Checkmate:
		if mover == chess.White {
			return eval.Mate(1), true
		}
		return eval.Mate(-1), true
	case chess.Stalemate:
		return eval.CP(0), true
	default:
		return eval.Score{}, false
	}
}

// playAny accepts either coordinate notation or SAN.
func playAny(b *notation.Board, move string) (notation.Move, *notation.Board, error) {
	if lan, err := notation.ParseLAN(move); err == nil {
		if mv, next, err := b.PlayLAN(lan); err == nil {
			return mv, next, nil
		}
	}
	return b.PlaySAN(move)
}

func bestOf(cands []eval.MultiPV) string {
	best := ""
	rank := 0
	for _, c := range cands {
		if rank == 0 || c.Rank < rank {
			rank, best = c.Rank, c.FirstMove()
		}
	}
	return best
}
