package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrMalformedPosition = errors.New("malformed position")

type MalformedPositionError struct {
	Text   string
	Reason string
}

func (e *MalformedPositionError) Error() string {
	return fmt.Sprintf("malformed position %q: %s", e.Text, e.Reason)
}

func (e *MalformedPositionError) Is(target error) bool {
	return target == ErrMalformedPosition
}

func StartingPosition() Position {
	p, err := Decode(StartingFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Decode parses position text. Trailing fields may be omitted and default to "w - - 0 1".
func Decode(text string) (Position, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Position{}, malformed(text, "empty text")
	}
	if len(fields) > 6 {
		return Position{}, malformed(text, fmt.Sprintf("want at most 6 fields, got %d", len(fields)))
	}
	field := func(i int, def string) string {
		if i < len(fields) {
			return fields[i]
		}
		return def
	}

	p := Position{EnPassant: NoSquare}
	if err := p.decodePlacement(fields[0]); err != nil {
		return Position{}, malformed(text, err.Error())
	}

	switch side := field(1, "w"); side {
	case "w":
		p.Turn = White
	case "b":
		p.Turn = Black
	default:
		return Position{}, malformed(text, fmt.Sprintf("invalid side to move %q", side))
	}

	castling, err := decodeCastling(field(2, "-"))
	if err != nil {
		return Position{}, malformed(text, err.Error())
	}
	p.Castling = castling

	if ep := field(3, "-"); ep != "-" {
		sq, err := ParseSquare(ep)
		if err != nil {
			return Position{}, malformed(text, err.Error())
		}
		if sq.Rank() != 2 && sq.Rank() != 5 {
			return Position{}, malformed(text, fmt.Sprintf("en passant square %s off the third or sixth rank", ep))
		}
		p.EnPassant = sq
	}

	p.HalfMoveClock, err = strconv.Atoi(field(4, "0"))
	if err != nil || p.HalfMoveClock < 0 {
		return Position{}, malformed(text, fmt.Sprintf("invalid half-move clock %q", field(4, "0")))
	}
	p.FullMoveNumber, err = strconv.Atoi(field(5, "1"))
	if err != nil || p.FullMoveNumber < 1 {
		return Position{}, malformed(text, fmt.Sprintf("invalid full-move number %q", field(5, "1")))
	}
	return p, nil
}

func (p *Position) decodePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("want 8 ranks, got %d", len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range row {
			if c >= '1' && c <= '8' {
				file += int(c - '0')
			} else {
				piece, ok := pieceFromChar(c)
				if !ok {
					return fmt.Errorf("unknown piece %q", c)
				}
				if file < 8 {
					p.board[NewSquare(file, rank)] = piece
				}
				file++
			}
			if file > 8 {
				return fmt.Errorf("rank %d has more than 8 files", rank+1)
			}
		}
		if file != 8 {
			return fmt.Errorf("rank %d has %d files", rank+1, file)
		}
	}
	return nil
}

func decodeCastling(text string) (CastlingRights, error) {
	if text == "-" {
		return 0, nil
	}
	var rights CastlingRights
	for _, c := range text {
		var flag CastlingRights
		switch c {
		case 'K':
			flag = WhiteKingside
		case 'Q':
			flag = WhiteQueenside
		case 'k':
			flag = BlackKingside
		case 'q':
			flag = BlackQueenside
		default:
			return 0, fmt.Errorf("invalid castling flag %q", c)
		}
		if rights&flag != 0 {
			return 0, fmt.Errorf("duplicate castling flag %q", c)
		}
		rights |= flag
	}
	return rights, nil
}

func malformed(text, reason string) error {
	return &MalformedPositionError{Text: text, Reason: reason}
}

// Encode renders the position text. It is the inverse of Decode.
func (p Position) Encode() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	if p.Turn == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(p.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	fmt.Fprintf(&sb, " %d %d", p.HalfMoveClock, p.FullMoveNumber)
	return sb.String()
}
