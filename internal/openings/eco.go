// Package openings names lines by ECO code and looks up polyglot book moves.
package openings

import (
	"fmt"
	"strings"
	"sync"

	chess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

func eco() *opening.BookECO {
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	return ecoBook
}

type Opening struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Name returns the deepest ECO opening matching the coordinate moves from the
// standard starting position.
func Name(lans []string) (Opening, bool, error) {
	game, err := replay("", lans)
	if err != nil {
		return Opening{}, false, err
	}
	book := eco()
	if book == nil {
		return Opening{}, false, nil
	}
	o := book.Find(game.Moves())
	if o == nil {
		return Opening{}, false, nil
	}
	return Opening{Code: o.Code(), Title: o.Title()}, true, nil
}

func replay(fen string, lans []string) (*chess.Game, error) {
	var game *chess.Game
	if strings.TrimSpace(fen) == "" || fen == "startpos" {
		game = chess.NewGame()
	} else {
		opt, err := chess.FEN(fen)
		if err != nil {
			return nil, fmt.Errorf("parse fen %q: %w", fen, err)
		}
		game = chess.NewGame(opt)
	}
	for _, mv := range lans {
		if err := game.PushNotationMove(mv, chess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("apply move %q: %w", mv, err)
		}
	}
	return game, nil
}
