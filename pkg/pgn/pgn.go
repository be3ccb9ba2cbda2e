package pgn

import (
	"fmt"
	"strings"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/notnil/chess"
	freeeve "gopkg.in/freeeve/pgn.v1"
)

// Export replays a game's wire-form moves and renders standard PGN with SAN movetext.
func Export(game entities.Game) (string, error) {
	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	for i, mv := range game.Moves {
		if err := g.MoveStr(mv); err != nil {
			return "", fmt.Errorf("failed to replay move %d (%s): %w", i+1, mv, err)
		}
	}

	switch game.Result {
	case entities.ResultWhiteResigned, entities.ResultWhiteTimeout, entities.ResultBlackWins:
		g.Resign(chess.White)
	case entities.ResultBlackResigned, entities.ResultBlackTimeout, entities.ResultWhiteWins:
		g.Resign(chess.Black)
	case entities.ResultDraw, entities.ResultStalemate:
		if g.Outcome() == chess.NoOutcome {
			if err := g.Draw(chess.DrawOffer); err != nil {
				return "", fmt.Errorf("failed to record draw: %w", err)
			}
		}
	}

	g.AddTagPair("Event", "Live game")
	g.AddTagPair("Site", "chessd")
	g.AddTagPair("Date", game.CreatedAt.UTC().Format("2006.01.02"))
	g.AddTagPair("White", game.WhitePlayerId)
	g.AddTagPair("Black", game.BlackPlayerId)
	g.AddTagPair("Result", resultTag(game.Result))
	g.AddTagPair("TimeControl", fmt.Sprintf("%d+%d", game.TimeControl*60, game.Increment))
	if t := termination(game.Result); t != "" {
		g.AddTagPair("Termination", t)
	}
	return g.String(), nil
}

func resultTag(result entities.GameResult) string {
	switch result {
	case entities.ResultWhiteWins, entities.ResultBlackResigned, entities.ResultBlackTimeout:
		return "1-0"
	case entities.ResultBlackWins, entities.ResultWhiteResigned, entities.ResultWhiteTimeout:
		return "0-1"
	case entities.ResultDraw, entities.ResultStalemate:
		return "1/2-1/2"
	}
	return "*"
}

func termination(result entities.GameResult) string {
	switch result {
	case entities.ResultWhiteTimeout, entities.ResultBlackTimeout:
		return "time forfeit"
	case entities.ResultWhiteResigned, entities.ResultBlackResigned:
		return "resignation"
	case entities.ResultWhiteWins, entities.ResultBlackWins, entities.ResultStalemate, entities.ResultDraw:
		return "normal"
	case entities.ResultAborted:
		return "aborted"
	}
	return ""
}

// Positions returns the position text reached after every move of every game in pgnText.
func Positions(pgnText string) ([]string, error) {
	ps := freeeve.NewPGNScanner(strings.NewReader(pgnText))

	var fenList []string
	for ps.Next() {
		game, err := ps.Scan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}

		fens, err := replay(game.Moves)
		if err != nil {
			return nil, err
		}
		fenList = append(fenList, fens...)
	}
	return fenList, nil
}

func replay(moves []freeeve.Move) ([]string, error) {
	b := freeeve.NewBoard()
	fens := make([]string, 0, len(moves))
	for _, move := range moves {
		if err := b.MakeMove(move); err != nil {
			return nil, fmt.Errorf("failed to replay move %q: %w", move, err)
		}
		fens = append(fens, b.String())
	}
	return fens, nil
}
