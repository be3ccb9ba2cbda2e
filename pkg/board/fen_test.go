package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStartingPosition(t *testing.T) {
	p, err := Decode(StartingFEN)
	require.NoError(t, err)

	assert.Equal(t, White, p.Turn)
	assert.Equal(t, WhiteKingside|WhiteQueenside|BlackKingside|BlackQueenside, p.Castling)
	assert.Equal(t, NoSquare, p.EnPassant)
	assert.Equal(t, 0, p.HalfMoveClock)
	assert.Equal(t, 1, p.FullMoveNumber)
	assert.Equal(t, Piece{Type: King, Color: White}, p.At(NewSquare(4, 0)))
	assert.Equal(t, Piece{Type: Queen, Color: Black}, p.At(NewSquare(3, 7)))
	assert.True(t, p.At(NewSquare(4, 3)).IsEmpty())
	assert.Equal(t, StartingFEN, p.Encode())
}

func TestDecodeDefaultsMissingFields(t *testing.T) {
	p, err := Decode("4k3/8/8/8/8/8/8/4K3")
	require.NoError(t, err)
	assert.Equal(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1", p.Encode())
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"seven ranks":       "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"short rank":        "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w KQkq - 0 1",
		"long rank":         "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w KQkq - 0 1",
		"overflowing run":   "rnbqkbnr/pppppppp/44P/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"unknown piece":     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBXKBNR w KQkq - 0 1",
		"bad side":          "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"bad castling":      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkx - 0 1",
		"bad en passant":    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",
		"non-numeric clock": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
		"non-numeric moves": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 y",
		"extra field":       "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 z",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPosition)

			var mpe *MalformedPositionError
			require.True(t, errors.As(err, &mpe))
			assert.Equal(t, text, mpe.Text)
			assert.NotEmpty(t, mpe.Reason)
		})
	}
}

func TestEncodeAfterMoves(t *testing.T) {
	p := play(t, StartingPosition(), "e2e4")
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", p.Encode())

	p = play(t, p, "c7c5", "g1f3")
	assert.Equal(t, "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", p.Encode())
}

func TestRoundTripRandomPlayouts(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		randomPlayout(t, seed, 120, func(p Position) {
			decoded, err := Decode(p.Encode())
			require.NoError(t, err)
			require.Equal(t, p, decoded, "round trip of %s", p.Encode())
		})
	}
}

func TestParseMove(t *testing.T) {
	m, err := ParseMove("e7e8q")
	require.NoError(t, err)
	assert.Equal(t, Move{From: NewSquare(4, 6), To: NewSquare(4, 7), Promotion: Queen}, m)
	assert.Equal(t, "e7e8q", m.String())

	m, err = ParseMove("g1f3")
	require.NoError(t, err)
	assert.Equal(t, "g1f3", m.String())

	for _, bad := range []string{"", "e2", "e2e", "e2e4e5", "i2e4", "e2e9", "e7e8k"} {
		_, err := ParseMove(bad)
		assert.ErrorIs(t, err, ErrMalformedMove, bad)
	}
}
