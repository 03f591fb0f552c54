package pgntree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitsByContent(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	a, err := c.Parse("1. e4 e5 2. Nf3")
	require.NoError(t, err)
	b, err := c.Parse("1. e4 e5 2. Nf3")
	require.NoError(t, err)
	assert.Same(t, a.Tree, b.Tree)
	assert.Equal(t, ContentKey("1. e4 e5 2. Nf3"), a.Key)
	assert.Equal(t, []string{"e2e4 e7e5 g1f3"}, a.Signatures)

	edited, err := c.Parse("1. e4 e5 2. Nc3")
	require.NoError(t, err)
	assert.NotSame(t, a.Tree, edited.Tree)
	assert.Equal(t, 2, c.Len())
}

func TestCacheSkipsErrors(t *testing.T) {
	c, err := NewCache(4)
	require.NoError(t, err)

	_, err = c.Parse("1. e4 e4")
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCacheEvicts(t *testing.T) {
	c, err := NewCache(1)
	require.NoError(t, err)

	_, err = c.Parse("1. d4")
	require.NoError(t, err)
	_, err = c.Parse("1. c4")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestCacheConcurrent(t *testing.T) {
	c, err := NewCache(8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Parsed, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.Parse("1. e4 (1. d4 d5) 1... e5")
			if err == nil {
				results[i] = p
			}
		}(i)
	}
	wg.Wait()
	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, []string{"e2e4 e7e5", "d2d4 d7d5"}, p.Signatures)
	}
}

func TestCachedParseIsolatedFromCallers(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	first, err := c.Parse("1. e4 e5 (1... c5) 2. Nf3")
	require.NoError(t, err)
	first.Signatures[0] = "tampered"
	first.Lines[0][0] = first.Lines[1][1]
	kids := first.Tree.Children(Root)
	kids[0] = NodeID(99)
	node := first.Tree.Node(first.Lines[1][0])
	node.Children[0] = NodeID(99)

	again, err := c.Parse("1. e4 e5 (1... c5) 2. Nf3")
	require.NoError(t, err)
	assert.Equal(t, []string{"e2e4 e7e5 g1f3", "e2e4 c7c5"}, again.Signatures)
	assert.Equal(t, "e2e4 e7e5 g1f3", again.Lines[0].Signature(again.Tree))
	assert.Equal(t, again.Signatures, again.Tree.Signatures())
}
