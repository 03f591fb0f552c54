package pgntree

import "strings"

// Line is a root-to-leaf path, root excluded.
type Line []NodeID

// Lines enumerates every root-to-leaf path depth first, main continuation
// before variations. A tree without moves has no lines.
func (t *Tree) Lines() []Line {
	var out []Line
	type item struct {
		id    NodeID
		depth int
	}
	path := make([]NodeID, 0, 32)
	stack := make([]item, 0, 32)
	for i := len(t.nodes[Root].Children) - 1; i >= 0; i-- {
		stack = append(stack, item{id: t.nodes[Root].Children[i], depth: 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		path = append(path[:it.depth], it.id)

		children := t.nodes[it.id].Children
		if len(children) == 0 {
			out = append(out, append(Line(nil), path...))
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, item{id: children[i], depth: it.depth + 1})
		}
	}
	return out
}

// Signature is the space-joined LAN of the line's moves.
func (l Line) Signature(t *Tree) string {
	var sb strings.Builder
	for i, id := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.nodes[id].LAN.String())
	}
	return sb.String()
}

// LANs returns the coordinate moves of the line.
func (l Line) LANs(t *Tree) []string {
	out := make([]string, len(l))
	for i, id := range l {
		out[i] = t.nodes[id].LAN.String()
	}
	return out
}

func (l Line) SANs(t *Tree) []string {
	out := make([]string, len(l))
	for i, id := range l {
		out[i] = t.nodes[id].SAN
	}
	return out
}

// Signatures lists line signatures in Lines order.
func (t *Tree) Signatures() []string {
	lines := t.Lines()
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Signature(t)
	}
	return out
}

// LineMoves returns copies of the line's nodes.
func (t *Tree) LineMoves(l Line) []Node {
	out := make([]Node, len(l))
	for i, id := range l {
		out[i] = t.Node(id)
	}
	return out
}
