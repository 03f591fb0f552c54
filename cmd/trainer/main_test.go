package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-opening-trainer/internal/lesson"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "false")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLinesCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rep.pgn")
	require.NoError(t, os.WriteFile(path, []byte("1. e4 e5 (1... c5 2. Nf3) 2. Nf3 Nc6"), 0o644))

	out, err := run(t, "", "lines", path)
	require.NoError(t, err)
	assert.Contains(t, out, "  1. 1. e4 e5 2. Nf3 Nc6")
	assert.Contains(t, out, "e2e4 e7e5 g1f3 b8c6")
	assert.Contains(t, out, "  2. 1. e4 c5 2. Nf3")

	out, err = run(t, "1. d4 d5 2. c4", "lines", "--json", "-")
	require.NoError(t, err)
	var rows []lineRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "d2d4 d7d5 c2c4", rows[0].Signature)
	assert.NotEmpty(t, rows[0].ECO)

	_, err = run(t, "1. e4 e5 2. Ke3", "lines", "-")
	assert.ErrorContains(t, err, "ply 3")
}

func TestConvertCommand(t *testing.T) {
	out, err := run(t, "", "convert", "--moves", "d2d4 d7d5 g1f3 g8f6", "--san", "Nbd2")
	require.NoError(t, err)
	assert.Equal(t, "b1d2\n", out)

	out, err = run(t, "", "convert", "--fen", "4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "--lan", "a1a3")
	require.NoError(t, err)
	assert.Equal(t, "R1a3\n", out)

	_, err = run(t, "", "convert", "--san", "e4", "--lan", "e2e4")
	assert.Error(t, err)
	_, err = run(t, "", "convert", "--san", "Ke2")
	assert.Error(t, err)
}

func TestJudgeCommand(t *testing.T) {
	out, err := run(t, "", "judge", "--color", "white", "--played", "cp 10", "--reference", "cp 30")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "good (loss 0.0200 vs +0.30)"), out)

	out, err = run(t, "", "judge", "--color", "black", "--played", "cp 25", "--played-lan", "e7e5",
		"--pv", "1;cp 25;e7e5 g1f3", "--pv", "2;cp 40;c7c5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "best "), out)

	_, err = run(t, "", "judge", "--played", "cp 10", "--pv", "broken")
	assert.Error(t, err)
}

func TestSanText(t *testing.T) {
	assert.Equal(t, "1. e4 e5 2. Nf3", sanText([]string{"e4", "e5", "Nf3"}, 1))
	assert.Equal(t, "1... e5 2. Nf3", sanText([]string{"e5", "Nf3"}, 2))
}

func TestSplitMoves(t *testing.T) {
	assert.Equal(t, []string{"e2e4", "e7e5", "g1f3"}, splitMoves(" e2e4,e7e5  g1f3 "))
	assert.Empty(t, splitMoves(""))
}

func TestBookCommandRequiresPath(t *testing.T) {
	isolateConfig(t)
	_, err := run(t, "", "book")
	assert.ErrorContains(t, err, "OPENING_BOOK_PATH")

	_, err = run(t, "", "book", "--book", filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorContains(t, err, "open polyglot book")
}

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("TRAINER_CONFIG", filepath.Join(t.TempDir(), "none.toml"))
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "STOCKFISH_PATH", "OPENING_BOOK_PATH"} {
		t.Setenv(key, "")
	}
}

func TestLessonCommands(t *testing.T) {
	isolateConfig(t)
	path := filepath.Join(t.TempDir(), "open.pgn")
	require.NoError(t, os.WriteFile(path, []byte("1. e4 e5 2. Nf3"), 0o644))

	out, err := run(t, "", "lesson", "import", path, "--title", "Open games")
	require.NoError(t, err)
	_, err = uuid.Parse(strings.TrimSpace(out))
	assert.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pgn")
	require.NoError(t, os.WriteFile(bad, []byte("1. e4 e5 2. Ke3"), 0o644))
	_, err = run(t, "", "lesson", "import", bad, "--title", "Broken")
	assert.ErrorContains(t, err, "chapter 1 (bad)")

	missing := uuid.NewString()
	_, err = run(t, "", "lesson", "update", missing, "--title", "Renamed")
	assert.ErrorIs(t, err, lesson.ErrNotFound)
	_, err = run(t, "", "lesson", "update", "not-a-uuid")
	assert.ErrorContains(t, err, "lesson id")
	_, err = run(t, "", "lesson", "delete", missing)
	assert.ErrorIs(t, err, lesson.ErrNotFound)
	_, err = run(t, "", "progress", "reset", "--lesson", missing)
	assert.ErrorIs(t, err, lesson.ErrNotFound)
}
