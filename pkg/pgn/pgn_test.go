package pgn

import (
	"testing"
	"time"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	freeeve "gopkg.in/freeeve/pgn.v1"
)

func TestExportCheckmate(t *testing.T) {
	game := entities.Game{
		WhitePlayerId: "alice",
		BlackPlayerId: "bob",
		Moves:         []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		Result:        entities.ResultBlackWins,
		TimeControl:   5,
		Increment:     3,
		CreatedAt:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}

	text, err := Export(game)
	require.NoError(t, err)

	assert.Contains(t, text, `[White "alice"]`)
	assert.Contains(t, text, `[Black "bob"]`)
	assert.Contains(t, text, `[Result "0-1"]`)
	assert.Contains(t, text, `[TimeControl "300+3"]`)
	assert.Contains(t, text, `[Date "2026.03.14"]`)
	assert.Contains(t, text, "Qh4#")
}

func TestExportResignation(t *testing.T) {
	game := entities.Game{
		Moves:  []string{"e2e4", "e7e5"},
		Result: entities.ResultWhiteResigned,
	}
	text, err := Export(game)
	require.NoError(t, err)
	assert.Contains(t, text, `[Result "0-1"]`)
	assert.Contains(t, text, `[Termination "resignation"]`)
}

func TestExportRejectsIllegalHistory(t *testing.T) {
	_, err := Export(entities.Game{Moves: []string{"e2e5"}})
	assert.Error(t, err)
}

func TestPositionsFromExport(t *testing.T) {
	game := entities.Game{
		WhitePlayerId: "alice",
		BlackPlayerId: "bob",
		Moves:         []string{"e2e4", "e7e5", "g1f3"},
		Result:        entities.ResultDraw,
	}
	text, err := Export(game)
	require.NoError(t, err)

	fens, err := Positions(text)
	require.NoError(t, err)
	require.Len(t, fens, 3)
	assert.Contains(t, fens[2], "5N2")
}

func TestExportResultTagFollowsGameResult(t *testing.T) {
	tests := []struct {
		result entities.GameResult
		tag    string
	}{
		{entities.ResultWhiteTimeout, "0-1"},
		{entities.ResultBlackTimeout, "1-0"},
		{entities.ResultBlackResigned, "1-0"},
		{entities.ResultStalemate, "1/2-1/2"},
		{entities.ResultDraw, "1/2-1/2"},
		{entities.ResultAborted, "*"},
		{entities.ResultNone, "*"},
	}
	for _, tt := range tests {
		t.Run(string(tt.result), func(t *testing.T) {
			text, err := Export(entities.Game{
				Moves:  []string{"e2e4", "e7e5"},
				Result: tt.result,
			})
			require.NoError(t, err)
			assert.Contains(t, text, `[Result "`+tt.tag+`"]`)
		})
	}
}

func TestReplayRejectsIllegalMove(t *testing.T) {
	_, err := replay([]freeeve.Move{
		{From: freeeve.E2, To: freeeve.E4},
		{From: freeeve.E4, To: freeeve.E5},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, freeeve.ErrMoveWrongColor)
	assert.Contains(t, err.Error(), "e4e5")

	_, err = replay([]freeeve.Move{{From: freeeve.E3, To: freeeve.E4}})
	assert.ErrorIs(t, err, freeeve.ErrMoveFromEmptySquare)
}
