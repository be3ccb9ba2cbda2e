// Package board holds the in-memory chess position, its text codec and the move rules.
package board

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "WHITE"
	}
	return "BLACK"
}

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// letter returns the uppercase notation letter of the piece type.
func (t PieceType) letter() byte {
	switch t {
	case Pawn:
		return 'P'
	case Knight:
		return 'N'
	case Bishop:
		return 'B'
	case Rook:
		return 'R'
	case Queen:
		return 'Q'
	case King:
		return 'K'
	}
	return 0
}

type Piece struct {
	Type  PieceType
	Color Color
}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Char returns the position-text letter: uppercase for white, lowercase for black.
func (p Piece) Char() byte {
	c := p.Type.letter()
	if p.Color == Black && c != 0 {
		c += 'a' - 'A'
	}
	return c
}

func pieceFromChar(c rune) (Piece, bool) {
	color := White
	if c >= 'a' && c <= 'z' {
		color = Black
		c -= 'a' - 'A'
	}
	var t PieceType
	switch c {
	case 'P':
		t = Pawn
	case 'N':
		t = Knight
	case 'B':
		t = Bishop
	case 'R':
		t = Rook
	case 'Q':
		t = Queen
	case 'K':
		t = King
	default:
		return Piece{}, false
	}
	return Piece{Type: t, Color: color}, true
}

// Square indexes the board from a1 (0) to h8 (63), rank-major.
type Square int8

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int {
	return int(s) % 8
}

func (s Square) Rank() int {
	return int(s) / 8
}

func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", text)
	}
	file, rank := int(text[0]-'a'), int(text[1]-'1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square %q", text)
	}
	return NewSquare(file, rank), nil
}

type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
)

func (c CastlingRights) String() string {
	if c == 0 {
		return "-"
	}
	b := make([]byte, 0, 4)
	for _, r := range []struct {
		flag CastlingRights
		char byte
	}{
		{WhiteKingside, 'K'},
		{WhiteQueenside, 'Q'},
		{BlackKingside, 'k'},
		{BlackQueenside, 'q'},
	} {
		if c&r.flag != 0 {
			b = append(b, r.char)
		}
	}
	return string(b)
}

// Position is a value type: copies are independent.
type Position struct {
	board          [64]Piece
	Turn           Color
	Castling       CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
}

func (p Position) At(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return p.board[sq]
}

func (p Position) pieceAt(file, rank int) (Piece, bool) {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return Piece{}, false
	}
	return p.board[NewSquare(file, rank)], true
}

func (p Position) kingSquare(c Color) Square {
	for sq, pc := range p.board {
		if pc.Type == King && pc.Color == c {
			return Square(sq)
		}
	}
	return NoSquare
}

func (p Position) String() string {
	return p.Encode()
}
