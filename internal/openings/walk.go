package openings

import (
	"fmt"
	"sort"
	"strings"

	chess "github.com/corentings/chess/v2"
)

type WalkOptions struct {
	MaxPly    int
	MinWeight uint16
}

// BookLine is one book variation found by Walk.
type BookLine struct {
	LANs     []string `json:"lan"`
	SANs     []string `json:"san"`
	Weight   int      `json:"weight"`
	FinalFEN string   `json:"fen"`
	Opening  *Opening `json:"opening,omitempty"`
}

// Signature is the space-joined coordinate moves of the line.
func (l BookLine) Signature() string { return strings.Join(l.LANs, " ") }

// Walk enumerates book variations after lans until the book runs out, no
// continuation reaches MinWeight, or MaxPly moves were added. Lines are
// sorted by signature.
func (b *Book) Walk(fen string, lans []string, opt WalkOptions) ([]BookLine, error) {
	if b == nil || b.pb == nil {
		return nil, nil
	}
	maxPly := opt.MaxPly
	if maxPly <= 0 {
		maxPly = 12
	}
	minWeight := opt.MinWeight
	if minWeight == 0 {
		minWeight = 1
	}
	start, err := replay(fen, lans)
	if err != nil {
		return nil, err
	}
	named := strings.TrimSpace(fen) == "" || fen == "startpos"
	hasher := chess.NewZobristHasher()
	uci := chess.UCINotation{}
	san := chess.AlgebraicNotation{}

	var out []BookLine
	var walk func(game *chess.Game, line BookLine) error
	walk = func(game *chess.Game, line BookLine) error {
		if len(line.LANs) >= maxPly {
			out = appendLine(out, game, line, named)
			return nil
		}
		hashStr, err := hasher.HashPosition(game.FEN())
		if err != nil {
			return fmt.Errorf("compute polyglot hash: %w", err)
		}
		expanded := false
		for _, e := range b.pb.FindMoves(chess.ZobristHashToUint64(hashStr)) {
			if e.Weight < minWeight {
				continue
			}
			mv := chess.DecodeMove(e.Move).ToMove()
			lan := mv.String()
			next := BookLine{
				LANs:   append(append([]string(nil), line.LANs...), lan),
				SANs:   append(append([]string(nil), line.SANs...), san.Encode(game.Position(), &mv)),
				Weight: line.Weight + int(e.Weight),
			}
			child := game.Clone()
			if err := child.PushNotationMove(lan, uci, nil); err != nil {
				return fmt.Errorf("apply book move %q: %w", lan, err)
			}
			expanded = true
			if err := walk(child, next); err != nil {
				return err
			}
		}
		if !expanded {
			out = appendLine(out, game, line, named)
		}
		return nil
	}
	if err := walk(start, BookLine{}); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Signature() < out[j].Signature() })
	return out, nil
}

func appendLine(out []BookLine, game *chess.Game, line BookLine, named bool) []BookLine {
	if len(line.LANs) == 0 {
		return out
	}
	line.FinalFEN = game.FEN()
	if named {
		if o := eco().Find(game.Moves()); o != nil {
			line.Opening = &Opening{Code: o.Code(), Title: o.Title()}
		}
	}
	return append(out, line)
}
