package board

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedMove = errors.New("malformed move")

// Move in wire form is origin + destination + optional promotion letter, e.g. "e7e8q".
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

func ParseMove(text string) (Move, error) {
	text = strings.TrimSpace(text)
	if len(text) != 4 && len(text) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrMalformedMove, text)
	}
	from, err := ParseSquare(text[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrMalformedMove, err)
	}
	to, err := ParseSquare(text[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrMalformedMove, err)
	}
	m := Move{From: from, To: to}
	if len(text) == 5 {
		switch text[4] {
		case 'q':
			m.Promotion = Queen
		case 'r':
			m.Promotion = Rook
		case 'b':
			m.Promotion = Bishop
		case 'n':
			m.Promotion = Knight
		default:
			return Move{}, fmt.Errorf("%w: invalid promotion %q", ErrMalformedMove, text[4])
		}
	}
	return m, nil
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += string(m.Promotion.letter() + 'a' - 'A')
	}
	return s
}
