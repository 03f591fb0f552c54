package uci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-opening-trainer/internal/eval"
)

func TestParseInfo(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Info
	}{
		{
			name: "centipawns",
			line: "info depth 20 seldepth 28 multipv 2 score cp -17 nodes 1 pv d7d5 c2c4",
			want: Info{MultiPV: 2, Depth: 20, Score: eval.CP(-17), Principal: []string{"d7d5", "c2c4"}},
		},
		{
			name: "mate keeps its distance",
			line: "info depth 30 score mate 3 pv h5f7 e8e7 f7e6",
			want: Info{MultiPV: 1, Depth: 30, Score: eval.Mate(3), Principal: []string{"h5f7", "e8e7", "f7e6"}},
		},
		{
			name: "bound",
			line: "info depth 9 multipv 1 score cp 44 upperbound pv e2e4",
			want: Info{MultiPV: 1, Depth: 9, Score: eval.CP(44), Bound: "upperbound", Principal: []string{"e2e4"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseInfo(tc.line)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseInfoSkipsPartialLines(t *testing.T) {
	for _, line := range []string{
		"",
		"info string NNUE evaluation enabled",
		"info depth 5 currmove e2e4 currmovenumber 1",
		"info depth 5 score cp 10",
		"info depth 5 pv e2e4",
		"bestmove e2e4",
	} {
		_, ok := ParseInfo(line)
		assert.False(t, ok, line)
	}
}

func TestCollapseOrdersByRank(t *testing.T) {
	got := collapse(map[int]Info{
		3: {MultiPV: 3},
		1: {MultiPV: 1},
		2: {MultiPV: 2},
	})
	require.Len(t, got, 3)
	for i, info := range got {
		assert.Equal(t, i+1, info.MultiPV)
	}
	assert.Nil(t, collapse(nil))
}
