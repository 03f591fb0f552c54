package notation

import (
	"errors"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// Check, mate and annotation marks carry no matching information.
const sanSuffixes = "+#!?"

type castleSide uint8

const (
	noCastle castleSide = iota
	kingSide
	queenSide
)

// sanToken is a syntactically decoded SAN move. fromFile and fromRank are -1
// when the token carries no such disambiguator.
type sanToken struct {
	castle   castleSide
	piece    chess.PieceType
	fromFile int8
	fromRank int8
	capture  bool
	to       chess.Square
	promo    chess.PieceType
}

var (
	errEmptySAN      = errors.New("empty token")
	errBadPromotion  = errors.New("malformed promotion")
	errBadSquare     = errors.New("missing destination square")
	errBadDisambig   = errors.New("malformed disambiguator")
	errPawnPromotion = errors.New("only pawns promote")
)

func parseSAN(raw string) (sanToken, error) {
	s := strings.TrimRight(strings.TrimSpace(raw), sanSuffixes)
	if s == "" {
		return sanToken{}, errEmptySAN
	}
	switch s {
	case "O-O", "0-0":
		return sanToken{castle: kingSide}, nil
	case "O-O-O", "0-0-0":
		return sanToken{castle: queenSide}, nil
	}

	t := sanToken{piece: chess.Pawn, fromFile: -1, fromRank: -1, promo: chess.NoPieceType}
	if pt := pieceFromLetter(s[0]); pt != chess.NoPieceType {
		t.piece = pt
		s = s[1:]
	}

	if i := strings.IndexByte(s, '='); i >= 0 {
		if i != len(s)-2 {
			return sanToken{}, errBadPromotion
		}
		pt, ok := promotionFromLetter(s[i+1])
		if !ok {
			return sanToken{}, errBadPromotion
		}
		t.promo = pt
		s = s[:i]
	} else if t.piece == chess.Pawn && len(s) >= 3 && pieceFromLetter(s[len(s)-1]) != chess.NoPieceType {
		// e8Q without the '=' sign
		pt, ok := promotionFromLetter(s[len(s)-1])
		if !ok {
			return sanToken{}, errBadPromotion
		}
		t.promo = pt
		s = s[:len(s)-1]
	}
	if t.promo != chess.NoPieceType && t.piece != chess.Pawn {
		return sanToken{}, errPawnPromotion
	}

	if len(s) < 2 {
		return sanToken{}, errBadSquare
	}
	to, ok := parseSquare(s[len(s)-2:])
	if !ok {
		return sanToken{}, errBadSquare
	}
	t.to = to

	prefix := s[:len(s)-2]
	if strings.HasSuffix(prefix, "x") || strings.HasSuffix(prefix, ":") {
		t.capture = true
		prefix = prefix[:len(prefix)-1]
	}
	switch len(prefix) {
	case 0:
	case 1:
		c := prefix[0]
		switch {
		case c >= 'a' && c <= 'h':
			t.fromFile = int8(c - 'a')
		case c >= '1' && c <= '8':
			t.fromRank = int8(c - '1')
		default:
			return sanToken{}, errBadDisambig
		}
	case 2:
		sq, ok := parseSquare(prefix)
		if !ok {
			return sanToken{}, errBadDisambig
		}
		t.fromFile = int8(sq.File())
		t.fromRank = int8(sq.Rank())
	default:
		return sanToken{}, errBadDisambig
	}
	return t, nil
}

// accepts reports whether m is a move the token can denote. Disambiguators
// are applied file first, then rank; a square disambiguator sets both.
func (t sanToken) accepts(pos *chess.Position, m *chess.Move) bool {
	castling := m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle)
	switch t.castle {
	case kingSide:
		return m.HasTag(chess.KingSideCastle)
	case queenSide:
		return m.HasTag(chess.QueenSideCastle)
	}
	if castling || m.S2() != t.to {
		return false
	}
	if pos.Board().Piece(m.S1()).Type() != t.piece {
		return false
	}
	if t.promo != chess.NoPieceType && m.Promo() != t.promo {
		return false
	}
	if t.fromFile >= 0 && int8(m.S1().File()) != t.fromFile {
		return false
	}
	if t.fromRank >= 0 && int8(m.S1().Rank()) != t.fromRank {
		return false
	}
	return true
}

func pieceFromLetter(c byte) chess.PieceType {
	switch c {
	case 'K':
		return chess.King
	case 'Q':
		return chess.Queen
	case 'R':
		return chess.Rook
	case 'B':
		return chess.Bishop
	case 'N':
		return chess.Knight
	default:
		return chess.NoPieceType
	}
}

func encodeSAN(pos *chess.Position, legal []chess.Move, m *chess.Move) string {
	var sb strings.Builder
	switch {
	case m.HasTag(chess.KingSideCastle):
		sb.WriteString("O-O")
	case m.HasTag(chess.QueenSideCastle):
		sb.WriteString("O-O-O")
	default:
		board := pos.Board()
		pt := board.Piece(m.S1()).Type()
		capture := m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
		if pt == chess.Pawn {
			if capture {
				sb.WriteByte(fileChar(m.S1()))
			}
		} else {
			sb.WriteString(pieceLetter(pt))
			sb.WriteString(disambiguation(board, legal, m, pt))
		}
		if capture {
			sb.WriteByte('x')
		}
		sb.WriteString(squareName(m.S2()))
		if m.Promo() != chess.NoPieceType {
			sb.WriteByte('=')
			sb.WriteString(pieceLetter(m.Promo()))
		}
	}

	next := pos.Update(m)
	switch {
	case next.Status() == chess.Checkmate:
		sb.WriteByte('#')
	case m.HasTag(chess.Check):
		sb.WriteByte('+')
	}
	return sb.String()
}

func disambiguation(board *chess.Board, legal []chess.Move, m *chess.Move, pt chess.PieceType) string {
	ambiguous, sameFile, sameRank := false, false, false
	for i := range legal {
		other := &legal[i]
		if other.S1() == m.S1() || other.S2() != m.S2() {
			continue
		}
		if board.Piece(other.S1()).Type() != pt {
			continue
		}
		ambiguous = true
		if other.S1().File() == m.S1().File() {
			sameFile = true
		}
		if other.S1().Rank() == m.S1().Rank() {
			sameRank = true
		}
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(fileChar(m.S1()))
	case !sameRank:
		return string(rankChar(m.S1()))
	default:
		return squareName(m.S1())
	}
}
