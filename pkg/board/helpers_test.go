package board

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, text string) Position {
	t.Helper()
	p, err := Decode(text)
	require.NoError(t, err)
	return p
}

// play applies wire-form moves, failing the test on the first illegal one.
func play(t *testing.T, p Position, moves ...string) Position {
	t.Helper()
	for _, text := range moves {
		m, err := ParseMove(text)
		require.NoError(t, err)
		require.True(t, p.IsLegal(m), "%s should be legal in %s", text, p.Encode())
		p = p.Apply(m)
	}
	return p
}

// randomPlayout plays up to plies random legal moves from the starting position, calling visit on every
// position reached, the first included.
func randomPlayout(t *testing.T, seed uint64, plies int, visit func(Position)) {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed*31))
	p := StartingPosition()
	visit(p)
	for i := 0; i < plies; i++ {
		moves := p.LegalMoves()
		if len(moves) == 0 {
			return
		}
		p = p.Apply(moves[r.IntN(len(moves))])
		visit(p)
	}
}
