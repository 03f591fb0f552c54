// Package judgement labels a played move by how much winning chance it gave
// away relative to the engine's reference move.
package judgement

import (
	"fmt"
	"strings"
)

// Judgement is a move quality label, ordered best to worst.
type Judgement uint8

const (
	Best Judgement = iota
	Excellent
	Good
	Inaccuracy
	Mistake
	Blunder
)

var judgementNames = [...]string{
	Best:       "best",
	Excellent:  "excellent",
	Good:       "good",
	Inaccuracy: "inaccuracy",
	Mistake:    "mistake",
	Blunder:    "blunder",
}

func (j Judgement) String() string {
	if int(j) < len(judgementNames) {
		return judgementNames[j]
	}
	return fmt.Sprintf("judgement(%d)", uint8(j))
}

func (j Judgement) MarshalText() ([]byte, error) {
	if int(j) >= len(judgementNames) {
		return nil, fmt.Errorf("unknown judgement %d", uint8(j))
	}
	return []byte(j.String()), nil
}

func (j *Judgement) UnmarshalText(b []byte) error {
	p, err := ParseJudgement(string(b))
	if err != nil {
		return err
	}
	*j = p
	return nil
}

func ParseJudgement(s string) (Judgement, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range judgementNames {
		if n == name {
			return Judgement(i), nil
		}
	}
	return 0, fmt.Errorf("unknown judgement %q", s)
}

// Worse reports whether j is a lower quality label than o.
func (j Judgement) Worse(o Judgement) bool { return j > o }
