package openings

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// BookMove is a polyglot book continuation.
type BookMove struct {
	LAN    string `json:"lan"`
	Weight uint16 `json:"weight"`
}

// Book wraps a polyglot opening book.
type Book struct {
	pb *chess.PolyglotBook
}

func LoadBook(path string) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("polyglot book path required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", path, err)
	}
	defer f.Close()
	return ReadBook(f)
}

func ReadBook(r io.Reader) (*Book, error) {
	pb, err := chess.LoadFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("load polyglot book: %w", err)
	}
	return &Book{pb: pb}, nil
}

// Moves lists the book continuations after lans, heaviest first.
func (b *Book) Moves(fen string, lans []string) ([]BookMove, error) {
	if b == nil || b.pb == nil {
		return nil, nil
	}
	game, err := replay(fen, lans)
	if err != nil {
		return nil, err
	}
	hashStr, err := chess.NewZobristHasher().HashPosition(game.FEN())
	if err != nil {
		return nil, fmt.Errorf("compute polyglot hash: %w", err)
	}
	entries := b.pb.FindMoves(chess.ZobristHashToUint64(hashStr))

	out := make([]BookMove, 0, len(entries))
	for _, e := range entries {
		mv := chess.DecodeMove(e.Move).ToMove()
		out = append(out, BookMove{LAN: mv.String(), Weight: e.Weight})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight == out[j].Weight {
			return out[i].LAN < out[j].LAN
		}
		return out[i].Weight > out[j].Weight
	})
	return out, nil
}

// Contains reports whether next is a book move after lans.
func (b *Book) Contains(fen string, lans []string, next string) (bool, error) {
	moves, err := b.Moves(fen, lans)
	if err != nil {
		return false, err
	}
	next = strings.ToLower(strings.TrimSpace(next))
	for _, m := range moves {
		if m.LAN == next {
			return true, nil
		}
	}
	return false, nil
}
