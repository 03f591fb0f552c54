package notation

import (
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// LAN is a coordinate move: source square, destination square and an
// optional promotion piece.
type LAN struct {
	From      chess.Square
	To        chess.Square
	Promotion chess.PieceType
}

// ParseLAN parses coordinate notation such as "e2e4" or "e7e8q".
func ParseLAN(s string) (LAN, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if len(raw) != 4 && len(raw) != 5 {
		return LAN{}, fmt.Errorf("invalid lan %q: want 4 or 5 characters", s)
	}
	from, ok := parseSquare(raw[0:2])
	if !ok {
		return LAN{}, fmt.Errorf("invalid lan %q: bad source square", s)
	}
	to, ok := parseSquare(raw[2:4])
	if !ok {
		return LAN{}, fmt.Errorf("invalid lan %q: bad destination square", s)
	}
	lan := LAN{From: from, To: to, Promotion: chess.NoPieceType}
	if len(raw) == 5 {
		pt, ok := promotionFromLetter(raw[4])
		if !ok {
			return LAN{}, fmt.Errorf("invalid lan %q: bad promotion piece", s)
		}
		lan.Promotion = pt
	}
	return lan, nil
}

func (l LAN) String() string {
	var sb strings.Builder
	sb.Grow(5)
	sb.WriteString(squareName(l.From))
	sb.WriteString(squareName(l.To))
	if l.Promotion != chess.NoPieceType {
		sb.WriteByte(promotionLetter(l.Promotion))
	}
	return sb.String()
}

func lanOf(m *chess.Move) LAN {
	return LAN{From: m.S1(), To: m.S2(), Promotion: m.Promo()}
}

func (l LAN) matches(m *chess.Move) bool {
	return m.S1() == l.From && m.S2() == l.To && m.Promo() == l.Promotion
}

func parseSquare(s string) (chess.Square, bool) {
	if len(s) != 2 {
		return chess.NoSquare, false
	}
	f, r := s[0], s[1]
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return chess.NoSquare, false
	}
	return chess.NewSquare(chess.File(f-'a'), chess.Rank(r-'1')), true
}

func squareName(sq chess.Square) string {
	return string([]byte{fileChar(sq), rankChar(sq)})
}

func fileChar(sq chess.Square) byte { return 'a' + byte(sq.File()) }
func rankChar(sq chess.Square) byte { return '1' + byte(sq.Rank()) }

func promotionFromLetter(c byte) (chess.PieceType, bool) {
	switch c {
	case 'q', 'Q':
		return chess.Queen, true
	case 'r', 'R':
		return chess.Rook, true
	case 'b', 'B':
		return chess.Bishop, true
	case 'n', 'N':
		return chess.Knight, true
	default:
		return chess.NoPieceType, false
	}
}

func promotionLetter(pt chess.PieceType) byte {
	switch pt {
	case chess.Queen:
		return 'q'
	case chess.Rook:
		return 'r'
	case chess.Bishop:
		return 'b'
	case chess.Knight:
		return 'n'
	default:
		return '?'
	}
}

func pieceLetter(pt chess.PieceType) string {
	switch pt {
	case chess.King:
		return "K"
	case chess.Queen:
		return "Q"
	case chess.Rook:
		return "R"
	case chess.Bishop:
		return "B"
	case chess.Knight:
		return "N"
	default:
		return ""
	}
}
