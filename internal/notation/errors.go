package notation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrAmbiguousMove = errors.New("ambiguous move")
)

// IllegalMoveError reports a token that matches no legal move.
type IllegalMoveError struct {
	Token  string
	Ply    int
	Reason string
}

func (e *IllegalMoveError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("illegal move %q at ply %d: %s", e.Token, e.Ply, e.Reason)
	}
	return fmt.Sprintf("illegal move %q at ply %d", e.Token, e.Ply)
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegalMove }

// AmbiguousMoveError reports a SAN token that still matches more than one
// legal move after disambiguation.
type AmbiguousMoveError struct {
	Token      string
	Ply        int
	Candidates []LAN
}

func (e *AmbiguousMoveError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, c.String())
	}
	return fmt.Sprintf("ambiguous move %q at ply %d: candidates %s", e.Token, e.Ply, strings.Join(names, ", "))
}

func (e *AmbiguousMoveError) Unwrap() error { return ErrAmbiguousMove }
