package trainerbuilder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-opening-trainer/internal/completion"
	"github.com/park285/cheese-opening-trainer/internal/config"
	"github.com/park285/cheese-opening-trainer/internal/httpapi"
	"github.com/park285/cheese-opening-trainer/internal/judgement"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		LessonMaxChapters:    50,
		LessonMaxPGNLength:   20000,
		LessonMaxTitleLength: 100,
		PGNCacheSize:         8,
		EngineMultiPV:        3,
	}
}

func TestNewInMemory(t *testing.T) {
	d, err := New(context.Background(), baseConfig(), nil)
	require.NoError(t, err)
	defer d.Close()

	assert.IsType(t, &completion.MemoryStore{}, d.Progress)
	assert.NotNil(t, d.Lessons)
	assert.Nil(t, d.Engine)
	assert.Nil(t, d.Review)
	assert.Equal(t, 50, d.Limits.MaxChapters)

	hd := d.HTTPDeps(nil)
	assert.Nil(t, hd.Reviewer)
	_, err = httpapi.New(hd)
	require.NoError(t, err)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	d, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer d.Close()
	assert.IsType(t, &completion.RedisStore{}, d.Progress)
}

func TestNewThresholdsFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`thresholds:
  excellent: 0.01
  good: 0.02
  inaccuracy: 0.05
  mistake: 0.1
  blunder: 0.2
`), 0o644))
	cfg := baseConfig()
	cfg.JudgementThresholdsFile = good
	d, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, judgement.Excellent, d.Classifier.Classify(0.015))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("thresholds:\n  excellent: 0.5\n  good: 0.1\n"), 0o644))
	cfg.JudgementThresholdsFile = bad
	_, err = New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNewFailsOnMissingEngine(t *testing.T) {
	cfg := baseConfig()
	cfg.StockfishPath = filepath.Join(t.TempDir(), "stockfish")
	cfg.EngineHashMB = 16
	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "init engine")
}
