package eval

import (
	"math"

	chess "github.com/corentings/chess/v2"
)

const (
	maxCentipawns = 1000
	mateBase      = 21
	maxMateDepth  = 10
	chanceSlope   = 0.004
)

// RawWinningChances maps centipawns into (-1, 1).
func RawWinningChances(cp float64) float64 {
	return 2/(1+math.Exp(-chanceSlope*cp)) - 1
}

// Centipawns converts s into a centipawn figure. Centipawn scores are
// clamped to ±1000; mate in N becomes ±(21-min(10,|N|))*100 so that faster
// mates weigh more. Mate 0 counts as being mated.
func Centipawns(s Score) float64 {
	switch s.Kind {
	case KindCP:
		return float64(clamp(s.Value, -maxCentipawns, maxCentipawns))
	case KindMate:
		n := s.Value
		if n < 0 {
			n = -n
		}
		v := float64((mateBase - min(maxMateDepth, n)) * 100)
		if s.Value > 0 {
			return v
		}
		return -v
	default:
		return 0
	}
}

// WinningChances is the White-relative winning chance of s.
func WinningChances(s Score) float64 {
	return RawWinningChances(Centipawns(s))
}

// PovChances is the winning chance of s seen from color.
func PovChances(color chess.Color, s Score) float64 {
	w := WinningChances(s)
	if color == chess.Black {
		return -w
	}
	return w
}

// PovDiff is half the difference of the two chances seen from color, in
// [-1, 1].
func PovDiff(color chess.Color, a, b Score) float64 {
	return (PovChances(color, a) - PovChances(color, b)) / 2
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
