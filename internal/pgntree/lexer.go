package pgntree

import (
	"fmt"
	"strings"
)

type tokenKind uint8

const (
	tokTag tokenKind = iota + 1
	tokMoveNumber
	tokSAN
	tokComment
	tokVariationStart
	tokVariationEnd
	tokNAG
	tokResult
)

func (k tokenKind) String() string {
	switch k {
	case tokTag:
		return "tag"
	case tokMoveNumber:
		return "move number"
	case tokSAN:
		return "move"
	case tokComment:
		return "comment"
	case tokVariationStart:
		return "("
	case tokVariationEnd:
		return ")"
	case tokNAG:
		return "nag"
	case tokResult:
		return "result"
	default:
		return "unknown"
	}
}

// token is one lexical unit of PGN text. For tags Key holds the tag name and
// Value the unquoted tag value; for everything else Value is the raw text.
type token struct {
	Kind   tokenKind
	Key    string
	Value  string
	Offset int
}

// SyntaxError reports malformed movetext. Offset is a byte offset into the
// parsed text.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pgn syntax error at offset %d: %s", e.Offset, e.Msg)
}

// wordBreak ends a bare word.
const wordBreak = " \t\r\n(){};[\""

// glyphRunes are the characters of traditional move assessments such as "!?"
// or "+-" written as a standalone word.
const glyphRunes = "!?+-=/∞"

func lex(text string) ([]token, error) {
	var toks []token
	i := 0
	lineStart := true
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\n':
			lineStart = true
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r':
			i++
			continue
		case c == '%' && lineStart:
			// escape line
			i = skipLine(text, i)
			continue
		}
		lineStart = false

		switch c {
		case '[':
			tok, next, err := lexTag(text, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next
		case '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, &SyntaxError{Offset: i, Msg: "unterminated comment"}
			}
			body := strings.TrimSpace(text[i+1 : i+1+end])
			toks = append(toks, token{Kind: tokComment, Value: body, Offset: i})
			i += end + 2
		case '}':
			return nil, &SyntaxError{Offset: i, Msg: "unexpected '}'"}
		case ';':
			end := skipLine(text, i)
			toks = append(toks, token{Kind: tokComment, Value: strings.TrimSpace(text[i+1 : end]), Offset: i})
			i = end
		case '(':
			toks = append(toks, token{Kind: tokVariationStart, Value: "(", Offset: i})
			i++
		case ')':
			toks = append(toks, token{Kind: tokVariationEnd, Value: ")", Offset: i})
			i++
		case '$':
			j := i + 1
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			if j == i+1 {
				return nil, &SyntaxError{Offset: i, Msg: "'$' without glyph number"}
			}
			toks = append(toks, token{Kind: tokNAG, Value: text[i:j], Offset: i})
			i = j
		case ']', '"':
			return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected %q", c)}
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(wordBreak, rune(text[j])) {
				j++
			}
			toks = appendWord(toks, text[i:j], i)
			i = j
		}
	}
	return toks, nil
}

func skipLine(text string, i int) int {
	if end := strings.IndexByte(text[i:], '\n'); end >= 0 {
		return i + end
	}
	return len(text)
}

func lexTag(text string, start int) (token, int, error) {
	i := start + 1
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	keyStart := i
	for i < len(text) && !strings.ContainsRune(" \t\r\n\"]", rune(text[i])) {
		i++
	}
	key := text[keyStart:i]
	if key == "" {
		return token{}, 0, &SyntaxError{Offset: start, Msg: "tag without name"}
	}
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) || text[i] != '"' {
		return token{}, 0, &SyntaxError{Offset: start, Msg: fmt.Sprintf("tag %s without quoted value", key)}
	}
	i++
	var sb strings.Builder
	for ; i < len(text) && text[i] != '"'; i++ {
		if text[i] == '\\' && i+1 < len(text) {
			i++
		}
		sb.WriteByte(text[i])
	}
	if i >= len(text) {
		return token{}, 0, &SyntaxError{Offset: start, Msg: "unterminated tag value"}
	}
	i++
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) || text[i] != ']' {
		return token{}, 0, &SyntaxError{Offset: start, Msg: "unterminated tag"}
	}
	return token{Kind: tokTag, Key: key, Value: sb.String(), Offset: start}, i + 1, nil
}

// appendWord classifies a bare word. Move numbers may be glued to the move
// that follows them ("12.e4", "3...Bb4").
func appendWord(toks []token, w string, off int) []token {
	switch w {
	case "1-0", "0-1", "1/2-1/2", "½-½", "*":
		return append(toks, token{Kind: tokResult, Value: w, Offset: off})
	case "e.p.", "ep":
		return toks
	case "--", "Z0":
		// null move; left to the move resolver to reject
		return append(toks, token{Kind: tokSAN, Value: w, Offset: off})
	}

	digits := 0
	for digits < len(w) && w[digits] >= '0' && w[digits] <= '9' {
		digits++
	}
	dots := digits
	for dots < len(w) && w[dots] == '.' {
		dots++
	}
	switch {
	case digits > 0 && (dots > digits || dots == len(w)):
		toks = append(toks, token{Kind: tokMoveNumber, Value: w[:dots], Offset: off})
		if dots < len(w) {
			return appendWord(toks, w[dots:], off+dots)
		}
		return toks
	case digits == 0 && dots == len(w):
		// detached dots of "12 ..."
		return toks
	}

	if strings.Trim(w, glyphRunes) == "" {
		return append(toks, token{Kind: tokNAG, Value: w, Offset: off})
	}
	return append(toks, token{Kind: tokSAN, Value: w, Offset: off})
}
