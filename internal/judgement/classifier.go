package judgement

import (
	"errors"
	"fmt"
	"sort"

	chess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-opening-trainer/internal/eval"
)

var ErrNoCandidates = errors.New("no engine candidates")

type Classifier struct {
	bounds [5]float64
}

// NewClassifier validates t and returns a classifier over its bands.
func NewClassifier(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{bounds: t.ordered()}, nil
}

// Classify maps a non-negative loss to its band. Negative losses (the played
// move scored above the reference) count as zero.
func (c *Classifier) Classify(loss float64) Judgement {
	if loss < 0 {
		loss = 0
	}
	j := Best
	for i, b := range c.bounds {
		// a zero bound still leaves a lossless move in the better band
		if loss > b || (loss == b && b > 0) {
			j = Judgement(i + 1)
		}
	}
	return j
}

// Verdict is the outcome of judging one move.
type Verdict struct {
	Judgement Judgement
	Loss      float64
	Played    eval.Score
	Reference eval.Score
	// ReferenceLAN is empty when the reference came from a bare score.
	ReferenceLAN string
	PlayedRank   int
}

// JudgeScores compares the played score with a single reference score. No
// rank information is involved.
func (c *Classifier) JudgeScores(color chess.Color, played, reference eval.Score) Verdict {
	loss := eval.PovDiff(color, reference, played)
	return Verdict{
		Judgement: c.Classify(loss),
		Loss:      max(loss, 0),
		Played:    played,
		Reference: reference,
	}
}

// Judge rates the played move against engine candidates. The reference is
// the rank-1 candidate, or the next best one when the played move is itself
// rank 1. A played move that is not rank 1 but loses nothing is Excellent,
// not Best.
func (c *Classifier) Judge(color chess.Color, played eval.Score, candidates []eval.MultiPV, playedLAN string) (Verdict, error) {
	ranked := byRank(candidates)
	if len(ranked) == 0 {
		return Verdict{}, ErrNoCandidates
	}

	playedRank := 0
	for _, m := range ranked {
		if playedLAN != "" && m.FirstMove() == playedLAN {
			playedRank = m.Rank
			break
		}
	}

	ref := ranked[0]
	if playedRank == ranked[0].Rank {
		if len(ranked) == 1 {
			return Verdict{
				Judgement:    Best,
				Played:       played,
				Reference:    ref.Score,
				ReferenceLAN: ref.FirstMove(),
				PlayedRank:   playedRank,
			}, nil
		}
		ref = ranked[1]
	}

	v := c.JudgeScores(color, played, ref.Score)
	v.ReferenceLAN = ref.FirstMove()
	v.PlayedRank = playedRank
	switch {
	case playedRank == ranked[0].Rank:
		// the engine's own choice cannot be worse than the runner-up
		v.Judgement = Best
	case v.Judgement == Best:
		v.Judgement = Excellent
	}
	return v, nil
}

// PlayedScore finds the score of playedLAN among the candidates.
func PlayedScore(candidates []eval.MultiPV, playedLAN string) (eval.Score, error) {
	for _, m := range candidates {
		if m.FirstMove() == playedLAN {
			return m.Score, nil
		}
	}
	return eval.Score{}, fmt.Errorf("move %s not among engine candidates", playedLAN)
}

func byRank(candidates []eval.MultiPV) []eval.MultiPV {
	out := make([]eval.MultiPV, 0, len(candidates))
	for _, m := range candidates {
		if m.Rank >= 1 && m.Score.Valid() && len(m.LANLine) > 0 {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
