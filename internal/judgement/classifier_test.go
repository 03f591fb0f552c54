package judgement

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	chess "github.com/corentings/chess/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-opening-trainer/internal/eval"
)

func newDefault(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultThresholds())
	require.NoError(t, err)
	return c
}

func TestDefaultThresholdsValid(t *testing.T) {
	th := DefaultThresholds()
	require.NoError(t, th.Validate())
	assert.Equal(t, 0.14, th.Blunder)
}

func TestClassifyBands(t *testing.T) {
	c, err := NewClassifier(Thresholds{Excellent: 0.01, Good: 0.02, Inaccuracy: 0.05, Mistake: 0.1, Blunder: 0.3})
	require.NoError(t, err)

	cases := []struct {
		loss float64
		want Judgement
	}{
		{-0.2, Best},
		{0, Best},
		{0.009, Best},
		{0.01, Excellent},
		{0.019, Excellent},
		{0.02, Good},
		{0.05, Inaccuracy},
		{0.099, Inaccuracy},
		{0.1, Mistake},
		{0.3, Blunder},
		{1, Blunder},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.loss), "loss %v", tc.loss)
	}
}

func TestClassifyMonotone(t *testing.T) {
	c := newDefault(t)
	prev := Best
	for loss := 0.0; loss <= 1; loss += 0.001 {
		j := c.Classify(loss)
		assert.False(t, prev.Worse(j), "label improved at loss %v", loss)
		prev = j
	}
}

func TestValidateRejects(t *testing.T) {
	bad := []Thresholds{
		{Excellent: -0.1, Good: 0.1, Inaccuracy: 0.2, Mistake: 0.3, Blunder: 0.4},
		{Excellent: 0.1, Good: 0.05, Inaccuracy: 0.2, Mistake: 0.3, Blunder: 0.4},
		{Excellent: 0.1, Good: 0.2, Inaccuracy: 0.3, Mistake: 0.4, Blunder: 0.35},
	}
	for _, th := range bad {
		_, err := NewClassifier(th)
		assert.True(t, errors.Is(err, ErrInvalidThresholds), "%+v", th)
	}
}

func TestLoadThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  excellent: 0.01\n  good: 0.02\n  inaccuracy: 0.05\n  mistake: 0.1\n  blunder: 0.3\n"), 0o600))

	th, err := LoadThresholds(path)
	require.NoError(t, err)
	assert.Equal(t, 0.3, th.Blunder)

	def, err := LoadThresholds("")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), def)

	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  excellent: 0.5\n  good: 0.1\n"), 0o600))
	_, err = LoadThresholds(path)
	assert.True(t, errors.Is(err, ErrInvalidThresholds))

	_, err = LoadThresholds(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func candidates() []eval.MultiPV {
	return []eval.MultiPV{
		{Rank: 2, Score: eval.CP(20), LANLine: []string{"d2d4", "d7d5"}},
		{Rank: 1, Score: eval.CP(35), LANLine: []string{"e2e4", "e7e5"}},
		{Rank: 3, Score: eval.CP(-300), LANLine: []string{"g2g4", "d7d5"}},
	}
}

func TestJudgeRankOne(t *testing.T) {
	c := newDefault(t)
	v, err := c.Judge(chess.White, eval.CP(35), candidates(), "e2e4")
	require.NoError(t, err)
	assert.Equal(t, Best, v.Judgement)
	assert.Equal(t, 1, v.PlayedRank)
	assert.Equal(t, "d2d4", v.ReferenceLAN)
	assert.Equal(t, 0.0, v.Loss)
}

func TestJudgeNearBestIsExcellent(t *testing.T) {
	c, err := NewClassifier(Thresholds{Excellent: 0.05, Good: 0.06, Inaccuracy: 0.07, Mistake: 0.08, Blunder: 0.2})
	require.NoError(t, err)

	v, err := c.Judge(chess.White, eval.CP(20), candidates(), "d2d4")
	require.NoError(t, err)
	assert.Equal(t, Excellent, v.Judgement)
	assert.Equal(t, "e2e4", v.ReferenceLAN)
	assert.Equal(t, 2, v.PlayedRank)

	// the same scores without rank information stay Best
	assert.Equal(t, Best, c.JudgeScores(chess.White, eval.CP(20), eval.CP(35)).Judgement)
}

func TestJudgeBlunder(t *testing.T) {
	c := newDefault(t)
	v, err := c.Judge(chess.White, eval.CP(-300), candidates(), "g2g4")
	require.NoError(t, err)
	assert.Equal(t, Blunder, v.Judgement)
	assert.Greater(t, v.Loss, 0.14)
}

func TestJudgeBlackPerspective(t *testing.T) {
	c := newDefault(t)
	// White-relative scores: Black's best keeps White at +0.10, the played
	// move hands White a winning position.
	cands := []eval.MultiPV{
		{Rank: 1, Score: eval.CP(10), LANLine: []string{"e7e5"}},
		{Rank: 2, Score: eval.CP(600), LANLine: []string{"f7f6"}},
	}
	v, err := c.Judge(chess.Black, eval.CP(600), cands, "f7f6")
	require.NoError(t, err)
	assert.Equal(t, Blunder, v.Judgement)

	v, err = c.Judge(chess.Black, eval.Mate(-2), cands, "d8h4")
	require.NoError(t, err)
	assert.Equal(t, Excellent, v.Judgement, "a lossless move outside the candidates is not Best")
	assert.Equal(t, 0.0, v.Loss)
	assert.Equal(t, 0, v.PlayedRank)
}

func TestJudgeSingleCandidate(t *testing.T) {
	c := newDefault(t)
	only := []eval.MultiPV{{Rank: 1, Score: eval.Mate(1), LANLine: []string{"h5f7"}}}
	v, err := c.Judge(chess.White, eval.Mate(1), only, "h5f7")
	require.NoError(t, err)
	assert.Equal(t, Best, v.Judgement)

	_, err = c.Judge(chess.White, eval.CP(0), nil, "e2e4")
	assert.True(t, errors.Is(err, ErrNoCandidates))
}

func TestPlayedScore(t *testing.T) {
	s, err := PlayedScore(candidates(), "d2d4")
	require.NoError(t, err)
	assert.Equal(t, eval.CP(20), s)

	_, err = PlayedScore(candidates(), "a2a3")
	assert.Error(t, err)
}

func TestJudgementText(t *testing.T) {
	b, err := json.Marshal(map[string]Judgement{"j": Inaccuracy})
	require.NoError(t, err)
	assert.JSONEq(t, `{"j":"inaccuracy"}`, string(b))

	var j Judgement
	require.NoError(t, j.UnmarshalText([]byte("Blunder")))
	assert.Equal(t, Blunder, j)
	assert.Error(t, j.UnmarshalText([]byte("brilliant")))
}
