// Package notation converts chess moves between SAN and coordinate (LAN)
// notation against an incrementally advanced board.
package notation

import (
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// Board is an immutable position plus the number of plies played to reach
// it. Playing a move returns a new Board and leaves the receiver untouched.
type Board struct {
	pos *chess.Position
	ply int
}

// Move is a resolved move in both notations. Ply is the ply the move was
// played at, counted from the board the game started on.
type Move struct {
	LAN LAN
	SAN string
	Ply int
}

func NewBoard() *Board {
	return &Board{pos: chess.StartingPosition()}
}

// BoardFromFEN starts from an arbitrary position. Plies are counted from it.
func BoardFromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("decode fen: %w", err)
	}
	return &Board{pos: chess.NewGame(opt).Position()}, nil
}

// StartBoard is BoardFromFEN that also accepts "" and "startpos" for the
// standard starting position.
func StartBoard(fen string) (*Board, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" || fen == "startpos" {
		return NewBoard(), nil
	}
	return BoardFromFEN(fen)
}

// Status reports checkmate or stalemate of the side to move.
func (b *Board) Status() chess.Method { return b.pos.Status() }

func (b *Board) Ply() int                  { return b.ply }
func (b *Board) Turn() chess.Color         { return b.pos.Turn() }
func (b *Board) FEN() string               { return b.pos.String() }
func (b *Board) Position() *chess.Position { return b.pos }

// LegalMoves lists every legal move of the side to move.
func (b *Board) LegalMoves() []LAN {
	legal := b.pos.ValidMoves()
	out := make([]LAN, 0, len(legal))
	for i := range legal {
		out = append(out, lanOf(&legal[i]))
	}
	return out
}

// ResolveSAN returns the single legal move the SAN token denotes.
func (b *Board) ResolveSAN(token string) (LAN, error) {
	_, m, err := b.resolve(token)
	if err != nil {
		return LAN{}, err
	}
	return lanOf(m), nil
}

// SAN renders lan as canonical SAN in this position, including the check or
// mate suffix.
func (b *Board) SAN(lan LAN) (string, error) {
	legal, m, err := b.find(lan)
	if err != nil {
		return "", err
	}
	return encodeSAN(b.pos, legal, m), nil
}

// PlaySAN resolves token and returns the move with the board after it.
func (b *Board) PlaySAN(token string) (Move, *Board, error) {
	legal, m, err := b.resolve(token)
	if err != nil {
		return Move{}, nil, err
	}
	return b.play(legal, m)
}

// PlayLAN validates lan and returns the move with the board after it.
func (b *Board) PlayLAN(lan LAN) (Move, *Board, error) {
	legal, m, err := b.find(lan)
	if err != nil {
		return Move{}, nil, err
	}
	return b.play(legal, m)
}

// PlayLANs replays a sequence of coordinate moves, e.g. an engine line.
func (b *Board) PlayLANs(moves []string) (*Board, error) {
	cur := b
	for _, raw := range moves {
		lan, err := ParseLAN(raw)
		if err != nil {
			return nil, &IllegalMoveError{Token: raw, Ply: cur.ply + 1, Reason: err.Error()}
		}
		_, next, err := cur.PlayLAN(lan)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (b *Board) play(legal []chess.Move, m *chess.Move) (Move, *Board, error) {
	mv := Move{
		LAN: lanOf(m),
		SAN: encodeSAN(b.pos, legal, m),
		Ply: b.ply + 1,
	}
	return mv, &Board{pos: b.pos.Update(m), ply: b.ply + 1}, nil
}

func (b *Board) resolve(token string) ([]chess.Move, *chess.Move, error) {
	t, err := parseSAN(token)
	if err != nil {
		return nil, nil, &IllegalMoveError{Token: token, Ply: b.ply + 1, Reason: err.Error()}
	}
	legal := b.pos.ValidMoves()
	var matches []*chess.Move
	for i := range legal {
		if t.accepts(b.pos, &legal[i]) {
			matches = append(matches, &legal[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil, &IllegalMoveError{Token: token, Ply: b.ply + 1, Reason: "no legal move matches"}
	case 1:
		return legal, matches[0], nil
	default:
		cands := make([]LAN, 0, len(matches))
		for _, m := range matches {
			cands = append(cands, lanOf(m))
		}
		return nil, nil, &AmbiguousMoveError{Token: token, Ply: b.ply + 1, Candidates: cands}
	}
}

func (b *Board) find(lan LAN) ([]chess.Move, *chess.Move, error) {
	legal := b.pos.ValidMoves()
	for i := range legal {
		if lan.matches(&legal[i]) {
			return legal, &legal[i], nil
		}
	}
	return nil, nil, &IllegalMoveError{Token: lan.String(), Ply: b.ply + 1, Reason: "not legal in this position"}
}
