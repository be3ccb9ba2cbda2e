package board

import "strings"

// Notation renders m in the simplified movetext used for game transcripts.
// Non-pawn, non-king pieces always carry their origin square, so no disambiguation is needed.
func (p Position) Notation(m Move) string {
	piece := p.board[m.From]
	if piece.Type == King {
		switch m.To.File() - m.From.File() {
		case 2:
			return "O-O"
		case -2:
			return "O-O-O"
		}
	}

	capture := !p.board[m.To].IsEmpty() ||
		(piece.Type == Pawn && m.To == p.EnPassant && m.From.File() != m.To.File())

	var sb strings.Builder
	switch piece.Type {
	case Pawn:
		if capture {
			sb.WriteByte(byte('a' + m.From.File()))
		}
	case King:
		sb.WriteByte('K')
	default:
		sb.WriteByte(piece.Type.letter())
		sb.WriteString(m.From.String())
	}
	if capture {
		sb.WriteByte('x')
	}
	sb.WriteString(m.To.String())
	if m.Promotion != NoPieceType {
		sb.WriteByte('=')
		sb.WriteByte(m.Promotion.letter())
	}
	return sb.String()
}
