package game

import (
	"time"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/board"
)

// remainingAt derives both clocks at now. Only the side to move is charged for time since the last move.
func remainingAt(game entities.Game, now time.Time) (white, black int64) {
	white, black = game.WhiteTimeRemaining, game.BlackTimeRemaining
	if game.Status != entities.GameStatusActive && game.Status != entities.GameStatusDrawOffered {
		return white, black
	}
	elapsed := now.Sub(game.LastMoveAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	if game.Turn == entities.SideWhite {
		white -= elapsed
	} else {
		black -= elapsed
	}
	return white, black
}

func (m *match) clock(c board.Color) *int64 {
	if c == board.White {
		return &m.game.WhiteTimeRemaining
	}
	return &m.game.BlackTimeRemaining
}

// chargeClock deducts the time since the last move from c, floored at zero.
func (m *match) chargeClock(c board.Color, now time.Time) {
	elapsed := now.Sub(m.game.LastMoveAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	clock := m.clock(c)
	*clock = max(0, *clock-elapsed)
}

func (m *match) addIncrement(c board.Color) {
	*m.clock(c) += int64(m.game.Increment) * 1000
}
