// Package pgntree parses PGN movetext with nested variations into an
// arena-backed move tree and enumerates its root-to-leaf lines.
package pgntree

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/park285/cheese-opening-trainer/internal/notation"
)

// NodeID indexes Tree nodes. Root is the position before any move.
type NodeID int

const Root NodeID = 0

// Node is one move of the tree. Children[0] is the main continuation, later
// children are variations in source order.
type Node struct {
	Ply              int
	SAN              string
	LAN              notation.LAN
	Parent           NodeID
	Children         []NodeID
	IsVariationStart bool
	Comment          string
	NAGs             []string
}

// Tree is an immutable move tree produced by Parse.
type Tree struct {
	nodes   []Node
	tags    map[string]string
	result  string
	rootFEN string
}

// Node returns a copy of the node; its slices are not shared with the tree.
func (t *Tree) Node(id NodeID) Node {
	n := t.nodes[id]
	n.Children = slices.Clone(n.Children)
	n.NAGs = slices.Clone(n.NAGs)
	return n
}

func (t *Tree) Children(id NodeID) []NodeID { return slices.Clone(t.nodes[id].Children) }

// Plies is the number of move nodes, root excluded.
func (t *Tree) Plies() int { return len(t.nodes) - 1 }

func (t *Tree) Tag(key string) (string, bool) {
	v, ok := t.tags[key]
	return v, ok
}

// Tags returns a copy of the header tags.
func (t *Tree) Tags() map[string]string {
	out := make(map[string]string, len(t.tags))
	for k, v := range t.tags {
		out[k] = v
	}
	return out
}

func (t *Tree) Result() string { return t.result }

// RootFEN is the starting position, empty for the standard one.
func (t *Tree) RootFEN() string { return t.rootFEN }

// Path returns the child indexes leading from the root to id.
func (t *Tree) Path(id NodeID) []int {
	var rev []int
	for id != Root {
		parent := t.nodes[id].Parent
		for i, c := range t.nodes[parent].Children {
			if c == id {
				rev = append(rev, i)
				break
			}
		}
		id = parent
	}
	out := make([]int, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// ParseError reports a move that could not be resolved. Path is the branch
// path (child indexes from the root) to the position the move was played
// from.
type ParseError struct {
	Ply   int
	Path  []int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("pgn move %q at ply %d (path [%s]): %v", e.Token, e.Ply, strings.Join(parts, " "), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type frame struct {
	cur   NodeID
	moved bool
}

type parser struct {
	tree   *Tree
	boards []*notation.Board
	// depth is the variation nesting level of the shallowest line that
	// passed through each node.
	depth []int
	cur   NodeID
	moved bool
	stack []frame
}

// Parse builds the move tree of a single PGN game. Any unresolvable move
// fails the whole parse; no partial tree is returned.
func Parse(text string) (*Tree, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{
		tree: &Tree{
			nodes: []Node{{Parent: Root}},
			tags:  make(map[string]string),
		},
		boards: []*notation.Board{notation.NewBoard()},
		depth:  []int{0},
	}
	for _, tok := range toks {
		done, err := p.consume(tok)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	if len(p.stack) > 0 {
		return nil, &SyntaxError{Offset: len(text), Msg: "unterminated variation"}
	}
	return p.tree, nil
}

func (p *parser) consume(tok token) (bool, error) {
	switch tok.Kind {
	case tokTag:
		return false, p.tag(tok)
	case tokMoveNumber:
	case tokSAN:
		return false, p.move(tok)
	case tokComment:
		n := &p.tree.nodes[p.cur]
		if n.Comment != "" {
			n.Comment += " " + tok.Value
		} else {
			n.Comment = tok.Value
		}
	case tokNAG:
		if p.cur != Root {
			n := &p.tree.nodes[p.cur]
			n.NAGs = append(n.NAGs, tok.Value)
		}
	case tokVariationStart:
		if !p.moved {
			return false, &SyntaxError{Offset: tok.Offset, Msg: "variation does not follow a move"}
		}
		p.stack = append(p.stack, frame{cur: p.cur, moved: p.moved})
		p.cur = p.tree.nodes[p.cur].Parent
		p.moved = false
	case tokVariationEnd:
		if len(p.stack) == 0 {
			return false, &SyntaxError{Offset: tok.Offset, Msg: "unbalanced ')'"}
		}
		top := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		p.cur, p.moved = top.cur, top.moved
	case tokResult:
		if len(p.stack) == 0 {
			p.tree.result = tok.Value
			return true, nil
		}
	}
	return false, nil
}

func (p *parser) tag(tok token) error {
	if p.tree.Plies() > 0 {
		return &SyntaxError{Offset: tok.Offset, Msg: fmt.Sprintf("tag %s after movetext", tok.Key)}
	}
	p.tree.tags[tok.Key] = tok.Value
	if tok.Key != "FEN" {
		return nil
	}
	b, err := notation.BoardFromFEN(tok.Value)
	if err != nil {
		return &ParseError{Token: tok.Value, Err: err}
	}
	p.boards[Root] = b
	p.tree.rootFEN = tok.Value
	return nil
}

func (p *parser) move(tok token) error {
	board := p.boards[p.cur]
	mv, next, err := board.PlaySAN(tok.Value)
	if err != nil {
		return &ParseError{
			Ply:   p.tree.nodes[p.cur].Ply + 1,
			Path:  p.tree.Path(p.cur),
			Token: tok.Value,
			Err:   err,
		}
	}
	p.moved = true

	level := len(p.stack)
	for _, c := range p.tree.nodes[p.cur].Children {
		if p.tree.nodes[c].LAN != mv.LAN {
			continue
		}
		if level < p.depth[c] {
			p.depth[c] = level
			p.place(p.cur, c)
		}
		p.cur = c
		return nil
	}

	id := NodeID(len(p.tree.nodes))
	p.tree.nodes = append(p.tree.nodes, Node{
		Ply:    p.tree.nodes[p.cur].Ply + 1,
		SAN:    mv.SAN,
		LAN:    mv.LAN,
		Parent: p.cur,
	})
	p.boards = append(p.boards, next)
	p.depth = append(p.depth, level)
	p.place(p.cur, id)
	p.cur = id
	return nil
}

// place positions child among the children of parent. A child reached by
// the line that owns parent becomes the main continuation unless parent
// already has one; any other child keeps source order.
func (p *parser) place(parent, child NodeID) {
	n := &p.tree.nodes[parent]
	kids := make([]NodeID, 0, len(n.Children)+1)
	for _, c := range n.Children {
		if c != child {
			kids = append(kids, c)
		}
	}
	main := p.depth[child] == p.depth[parent] &&
		(len(kids) == 0 || p.depth[kids[0]] != p.depth[parent])
	switch {
	case main:
		kids = append([]NodeID{child}, kids...)
	case len(kids) == len(n.Children):
		kids = append(kids, child)
	default:
		kids = n.Children
	}
	n.Children = kids
	for i, c := range kids {
		p.tree.nodes[c].IsVariationStart = i > 0
	}
}
