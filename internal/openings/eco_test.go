package openings

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameKnownOpening(t *testing.T) {
	o, ok, err := Name([]string{"e2e4", "c7c5"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B20", o.Code)
	assert.Contains(t, o.Title, "Sicilian")
}

func TestNameRejectsIllegalMoves(t *testing.T) {
	_, _, err := Name([]string{"e2e5"})
	assert.Error(t, err)
}

func TestNilBookHasNoMoves(t *testing.T) {
	var b *Book
	moves, err := b.Moves("", []string{"e2e4"})
	require.NoError(t, err)
	assert.Empty(t, moves)

	_, err = LoadBook("")
	assert.Error(t, err)
}

func TestNilBookWalk(t *testing.T) {
	var b *Book
	lines, err := b.Walk("", nil, WalkOptions{})
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestBookLineSignature(t *testing.T) {
	l := BookLine{LANs: []string{"e2e4", "c7c5"}}
	assert.Equal(t, "e2e4 c7c5", l.Signature())
}

// startKey is the polyglot key of the standard starting position.
const startKey uint64 = 0x463b96181691fc9c

func polyglotBook(t *testing.T, entries ...[3]uint64) *Book {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range entries {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, e[0]))
		require.NoError(t, binary.Write(&buf, binary.BigEndian, uint16(e[1])))
		require.NoError(t, binary.Write(&buf, binary.BigEndian, uint16(e[2])))
		require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(0)))
	}
	b, err := ReadBook(&buf)
	require.NoError(t, err)
	return b
}

func TestBookMovesAndWalk(t *testing.T) {
	const (
		e2e4 = 4 | 3<<3 | 4<<6 | 1<<9
		d2d4 = 3 | 3<<3 | 3<<6 | 1<<9
	)
	b := polyglotBook(t, [3]uint64{startKey, d2d4, 5}, [3]uint64{startKey, e2e4, 10})

	moves, err := b.Moves("", nil)
	require.NoError(t, err)
	assert.Equal(t, []BookMove{{LAN: "e2e4", Weight: 10}, {LAN: "d2d4", Weight: 5}}, moves)

	ok, err := b.Contains("", nil, "D2D4")
	require.NoError(t, err)
	assert.True(t, ok)

	lines, err := b.Walk("", nil, WalkOptions{MaxPly: 1})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "d2d4", lines[0].Signature())
	assert.Equal(t, []string{"d4"}, lines[0].SANs)
	assert.Equal(t, 5, lines[0].Weight)
	assert.Equal(t, []string{"e4"}, lines[1].SANs)

	lines, err = b.Walk("", nil, WalkOptions{MaxPly: 1, MinWeight: 6})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "e2e4", lines[0].Signature())

	_, err = b.Walk("", []string{"e2e5"}, WalkOptions{})
	assert.Error(t, err)
}
