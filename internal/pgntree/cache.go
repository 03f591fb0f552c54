package pgntree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheSize = 256

// Parsed is the derived form of a chapter's PGN text. Cache.Parse hands out
// copies of Lines and Signatures; Tree is read-only.
type Parsed struct {
	Key        string
	Tree       *Tree
	Lines      []Line
	Signatures []string
}

// Cache memoises Parse by content hash. Parse errors are not cached.
type Cache struct {
	entries *lru.Cache[string, *Parsed]
	group   singleflight.Group
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *Parsed](size)
	if err != nil {
		return nil, fmt.Errorf("create pgn cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// ContentKey is the hex sha256 of the PGN text.
func ContentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Parse returns the cached parse of text, parsing it on a miss. Concurrent
// misses for the same text share one parse.
func (c *Cache) Parse(text string) (*Parsed, error) {
	key := ContentKey(text)
	if p, ok := c.entries.Get(key); ok {
		return p.clone(), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if p, ok := c.entries.Get(key); ok {
			return p, nil
		}
		p, err := ParseLines(text)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Parsed).clone(), nil
}

func (p *Parsed) clone() *Parsed {
	lines := make([]Line, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = slices.Clone(l)
	}
	return &Parsed{Key: p.Key, Tree: p.Tree, Lines: lines, Signatures: slices.Clone(p.Signatures)}
}

func (c *Cache) Len() int { return c.entries.Len() }

// ParseLines parses text and extracts its lines without caching.
func ParseLines(text string) (*Parsed, error) {
	tree, err := Parse(text)
	if err != nil {
		return nil, err
	}
	lines := tree.Lines()
	sigs := make([]string, len(lines))
	for i, l := range lines {
		sigs[i] = l.Signature(tree)
	}
	return &Parsed{Key: ContentKey(text), Tree: tree, Lines: lines, Signatures: sigs}, nil
}
