// Package eval normalises engine scores into bounded, perspective-relative
// winning chances.
package eval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	chess "github.com/corentings/chess/v2"
)

type Kind uint8

const (
	KindCP Kind = iota + 1
	KindMate
)

func (k Kind) String() string {
	switch k {
	case KindCP:
		return "cp"
	case KindMate:
		return "mate"
	default:
		return "unknown"
	}
}

// Score is an engine evaluation from White's point of view: either
// centipawns or a signed distance to mate in moves. Build one with CP or
// Mate.
type Score struct {
	Kind  Kind
	Value int
}

func CP(n int) Score   { return Score{Kind: KindCP, Value: n} }
func Mate(n int) Score { return Score{Kind: KindMate, Value: n} }

func (s Score) IsMate() bool { return s.Kind == KindMate }
func (s Score) Valid() bool  { return s.Kind == KindCP || s.Kind == KindMate }

// Negate flips the side the score favours.
func (s Score) Negate() Score {
	return Score{Kind: s.Kind, Value: -s.Value}
}

// FromSideToMove converts a side-to-move relative engine score, as UCI
// engines report it, into a White-relative one.
func FromSideToMove(turn chess.Color, s Score) Score {
	if turn == chess.Black {
		return s.Negate()
	}
	return s
}

// String renders "+1.25", "-0.50", "#3" or "#-5".
func (s Score) String() string {
	switch s.Kind {
	case KindMate:
		return "#" + strconv.Itoa(s.Value)
	case KindCP:
		cp := s.Value
		sign := "+"
		if cp < 0 {
			sign = "-"
			cp = -cp
		}
		return fmt.Sprintf("%s%d.%02d", sign, cp/100, cp%100)
	default:
		return "?"
	}
}

var ErrBadScore = errors.New("malformed score")

// ParseScore reads "cp 35", "mate -3" or the String forms "+0.35", "#-3".
func ParseScore(s string) (Score, error) {
	raw := strings.TrimSpace(s)
	fields := strings.Fields(raw)
	if len(fields) == 2 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return Score{}, fmt.Errorf("%w: %q", ErrBadScore, s)
		}
		switch strings.ToLower(fields[0]) {
		case "cp":
			return CP(n), nil
		case "mate":
			return Mate(n), nil
		}
		return Score{}, fmt.Errorf("%w: %q", ErrBadScore, s)
	}
	if len(fields) != 1 {
		return Score{}, fmt.Errorf("%w: %q", ErrBadScore, s)
	}
	if rest, ok := strings.CutPrefix(raw, "#"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Score{}, fmt.Errorf("%w: %q", ErrBadScore, s)
		}
		return Mate(n), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Score{}, fmt.Errorf("%w: %q", ErrBadScore, s)
	}
	if f < 0 {
		return CP(int(f*100 - 0.5)), nil
	}
	return CP(int(f*100 + 0.5)), nil
}

// MultiPV is one ranked engine candidate. Rank 1 is the engine's best line.
type MultiPV struct {
	Rank    int
	Score   Score
	LANLine []string
}

// FirstMove is the candidate's move in the analysed position.
func (m MultiPV) FirstMove() string {
	if len(m.LANLine) == 0 {
		return ""
	}
	return m.LANLine[0]
}
