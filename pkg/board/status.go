package board

// hasLegalMove stops at the first legal move. Pawns reaching the last rank only try a queen promotion.
func (p Position) hasLegalMove() bool {
	for from := Square(0); from < 64; from++ {
		pc := p.board[from]
		if pc.IsEmpty() || pc.Color != p.Turn {
			continue
		}
		for to := Square(0); to < 64; to++ {
			m := Move{From: from, To: to}
			if pc.Type == Pawn && to.Rank() == lastRank(pc.Color) {
				m.Promotion = Queen
			}
			if p.IsLegal(m) {
				return true
			}
		}
	}
	return false
}

// LegalMoves lists every legal move of the side to move, all four promotions included.
func (p Position) LegalMoves() []Move {
	var moves []Move
	for from := Square(0); from < 64; from++ {
		pc := p.board[from]
		if pc.IsEmpty() || pc.Color != p.Turn {
			continue
		}
		for to := Square(0); to < 64; to++ {
			if pc.Type == Pawn && to.Rank() == lastRank(pc.Color) {
				for _, promo := range []PieceType{Queen, Rook, Bishop, Knight} {
					if m := (Move{From: from, To: to, Promotion: promo}); p.IsLegal(m) {
						moves = append(moves, m)
					}
				}
				continue
			}
			if m := (Move{From: from, To: to}); p.IsLegal(m) {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

func (p Position) IsCheckmate() bool {
	return p.InCheck() && !p.hasLegalMove()
}

func (p Position) IsStalemate() bool {
	return !p.InCheck() && !p.hasLegalMove()
}

// IsInsufficientMaterial is conservative: only bare kings or a single minor piece on the board count.
func (p Position) IsInsufficientMaterial() bool {
	minors := 0
	for _, pc := range p.board {
		switch pc.Type {
		case Pawn, Rook, Queen:
			return false
		case Bishop, Knight:
			minors++
		}
	}
	return minors <= 1
}
