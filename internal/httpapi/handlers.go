package httpapi

import (
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/eval"
	"github.com/park285/cheese-opening-trainer/internal/judgement"
	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/internal/notation"
	"github.com/park285/cheese-opening-trainer/internal/openings"
	"github.com/park285/cheese-opening-trainer/internal/pgntree"
	"github.com/park285/cheese-opening-trainer/internal/review"
	"github.com/park285/cheese-opening-trainer/pkg/trainerdto"
)

func (s *Server) handleLines(ctx *fasthttp.RequestCtx) {
	var req trainerdto.LinesRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	parsed, err := s.cache.Parse(req.PGN)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, linesResponse(parsed))
}

func linesResponse(p *pgntree.Parsed) trainerdto.LinesResponse {
	t := p.Tree
	resp := trainerdto.LinesResponse{
		Tags:  t.Tags(),
		Plies: t.Plies(),
		Lines: make([]trainerdto.LineDTO, 0, len(p.Lines)),
	}
	for i, l := range p.Lines {
		dto := trainerdto.LineDTO{
			Signature: p.Signatures[i],
			LAN:       l.LANs(t),
			SAN:       l.SANs(t),
		}
		if t.RootFEN() == "" {
			if o, ok, err := openings.Name(dto.LAN); err == nil && ok {
				dto.Opening = &trainerdto.Opening{Code: o.Code, Title: o.Title}
			}
		}
		resp.Lines = append(resp.Lines, dto)
	}
	return resp
}

func (s *Server) handleConvert(ctx *fasthttp.RequestCtx) {
	var req trainerdto.ConvertRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	if (req.SAN == "") == (req.LAN == "") {
		s.fail(ctx, badRequest("exactly one of san or lan is required"))
		return
	}
	board, err := boardAt(req.FEN, req.Moves)
	if err != nil {
		s.fail(ctx, err)
		return
	}

	var mv notation.Move
	var next *notation.Board
	if req.SAN != "" {
		mv, next, err = board.PlaySAN(req.SAN)
	} else {
		lan, perr := notation.ParseLAN(req.LAN)
		if perr != nil {
			s.fail(ctx, badRequest(perr.Error()))
			return
		}
		mv, next, err = board.PlayLAN(lan)
	}
	if err != nil {
		s.fail(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, trainerdto.ConvertResponse{SAN: mv.SAN, LAN: mv.LAN.String(), FEN: next.FEN()})
}

func boardAt(fen string, moves []string) (*notation.Board, error) {
	board, err := notation.StartBoard(fen)
	if err != nil {
		return nil, badRequest(err.Error())
	}
	return board.PlayLANs(moves)
}

func (s *Server) handleJudge(ctx *fasthttp.RequestCtx) {
	var req trainerdto.JudgeRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	color, err := lesson.ParseColor(req.Color)
	if err != nil {
		s.fail(ctx, badRequest(err.Error()))
		return
	}
	played, err := eval.ParseScore(req.Played)
	if err != nil {
		s.fail(ctx, badRequest("played: "+err.Error()))
		return
	}

	var v judgement.Verdict
	if len(req.Candidates) == 0 {
		ref, err := eval.ParseScore(req.Reference)
		if err != nil {
			s.fail(ctx, badRequest("reference: "+err.Error()))
			return
		}
		v = s.classifier.JudgeScores(color.Chess(), played, ref)
	} else {
		cands, err := candidatesFromDTO(req.Candidates)
		if err != nil {
			s.fail(ctx, err)
			return
		}
		v, err = s.classifier.Judge(color.Chess(), played, cands, strings.ToLower(strings.TrimSpace(req.PlayedLAN)))
		if err != nil {
			s.fail(ctx, badRequest(err.Error()))
			return
		}
	}
	s.writeJSON(ctx, fasthttp.StatusOK, verdictDTO(v))
}

func candidatesFromDTO(in []trainerdto.CandidateDTO) ([]eval.MultiPV, error) {
	out := make([]eval.MultiPV, 0, len(in))
	for _, c := range in {
		sc, err := eval.ParseScore(c.Score)
		if err != nil {
			return nil, badRequest("candidate score: " + err.Error())
		}
		out = append(out, eval.MultiPV{Rank: c.Rank, Score: sc, LANLine: c.Line})
	}
	return out, nil
}

func candidatesToDTO(in []eval.MultiPV) []trainerdto.CandidateDTO {
	out := make([]trainerdto.CandidateDTO, 0, len(in))
	for _, c := range in {
		out = append(out, trainerdto.CandidateDTO{Rank: c.Rank, Score: c.Score.String(), Line: c.LANLine})
	}
	return out
}

func verdictDTO(v judgement.Verdict) trainerdto.JudgeResponse {
	return trainerdto.JudgeResponse{
		Judgement:    v.Judgement.String(),
		Loss:         v.Loss,
		Reference:    v.Reference.String(),
		ReferenceLAN: v.ReferenceLAN,
		PlayedRank:   v.PlayedRank,
	}
}

func (s *Server) handleReview(ctx *fasthttp.RequestCtx) {
	if s.reviewer == nil {
		s.fail(ctx, errNoEngine)
		return
	}
	var req trainerdto.ReviewRequest
	if err := decodeJSON(ctx, &req); err != nil {
		s.fail(ctx, err)
		return
	}
	if strings.TrimSpace(req.Played) == "" {
		s.fail(ctx, badRequest("played is required"))
		return
	}
	if _, err := boardAt(req.FEN, req.Moves); err != nil {
		s.fail(ctx, err)
		return
	}

	res, err := s.reviewer.ReviewMove(ctx, review.Request{FEN: req.FEN, Moves: req.Moves, Played: req.Played})
	if err != nil {
		s.fail(ctx, err)
		return
	}
	resp := trainerdto.ReviewResponse{
		JudgeResponse: verdictDTO(res.Verdict),
		PlayedSAN:     res.Move.SAN,
		PlayedLAN:     res.Move.LAN.String(),
		BestSAN:       res.BestSAN,
		BestLAN:       res.BestLAN,
		InBook:        res.InBook,
		Depth:         res.Analysis.Depth,
		Candidates:    candidatesToDTO(res.Analysis.Candidates),
	}
	if res.Opening != nil {
		resp.Opening = &trainerdto.Opening{Code: res.Opening.Code, Title: res.Opening.Title}
	}
	s.logger.Debug("review served", zap.String("played", resp.PlayedLAN), zap.String("judgement", resp.Judgement))
	s.writeJSON(ctx, fasthttp.StatusOK, resp)
}
