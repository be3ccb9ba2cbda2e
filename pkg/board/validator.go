package board

var (
	knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	straightRays  = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func homeRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func lastRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

func pawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// IsLegal reports whether m can be played by the side to move.
func (p Position) IsLegal(m Move) bool {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return false
	}
	piece := p.board[m.From]
	if piece.IsEmpty() || piece.Color != p.Turn {
		return false
	}
	if target := p.board[m.To]; !target.IsEmpty() && target.Color == piece.Color {
		return false
	}
	if piece.Type != Pawn && m.Promotion != NoPieceType {
		return false
	}

	df := m.To.File() - m.From.File()
	dr := m.To.Rank() - m.From.Rank()
	var ok bool
	switch piece.Type {
	case Pawn:
		ok = p.pawnMoveOK(m, piece.Color)
	case Knight:
		ok = (abs(df) == 1 && abs(dr) == 2) || (abs(df) == 2 && abs(dr) == 1)
	case Bishop:
		ok = abs(df) == abs(dr) && p.pathClear(m.From, m.To)
	case Rook:
		ok = (df == 0 || dr == 0) && p.pathClear(m.From, m.To)
	case Queen:
		ok = (df == 0 || dr == 0 || abs(df) == abs(dr)) && p.pathClear(m.From, m.To)
	case King:
		if dr == 0 && abs(df) == 2 {
			ok = p.castleOK(m, piece.Color)
		} else {
			ok = abs(df) <= 1 && abs(dr) <= 1
		}
	}
	if !ok {
		return false
	}

	next := p.Apply(m)
	return !next.isAttacked(next.kingSquare(piece.Color), next.Turn)
}

func (p Position) pawnMoveOK(m Move, c Color) bool {
	dir := pawnDirection(c)
	df := m.To.File() - m.From.File()
	dr := m.To.Rank() - m.From.Rank()
	target := p.board[m.To]

	switch {
	case df == 0 && dr == dir:
		if !target.IsEmpty() {
			return false
		}
	case df == 0 && dr == 2*dir:
		if m.From.Rank() != homeRank(c)+dir || !target.IsEmpty() {
			return false
		}
		if !p.board[NewSquare(m.From.File(), m.From.Rank()+dir)].IsEmpty() {
			return false
		}
	case abs(df) == 1 && dr == dir:
		if target.IsEmpty() {
			if m.To != p.EnPassant {
				return false
			}
			captured, _ := p.pieceAt(m.To.File(), m.From.Rank())
			if captured != (Piece{Type: Pawn, Color: c.Opposite()}) {
				return false
			}
		}
	default:
		return false
	}

	if m.To.Rank() == lastRank(c) {
		switch m.Promotion {
		case Queen, Rook, Bishop, Knight:
			return true
		}
		return false
	}
	return m.Promotion == NoPieceType
}

// pathClear reports whether every square strictly between from and to is empty.
// from and to must share a rank, file or diagonal.
func (p Position) pathClear(from, to Square) bool {
	sf, sr := sign(to.File()-from.File()), sign(to.Rank()-from.Rank())
	f, r := from.File()+sf, from.Rank()+sr
	for f != to.File() || r != to.Rank() {
		if !p.board[NewSquare(f, r)].IsEmpty() {
			return false
		}
		f += sf
		r += sr
	}
	return true
}

func (p Position) castleOK(m Move, c Color) bool {
	rank := homeRank(c)
	if m.From != NewSquare(4, rank) || m.To.Rank() != rank {
		return false
	}
	var (
		right    CastlingRights
		rookFile int
		between  []int
		kingPath []int
	)
	switch m.To.File() {
	case 6:
		right, rookFile = WhiteKingside, 7
		between, kingPath = []int{5, 6}, []int{5, 6}
	case 2:
		right, rookFile = WhiteQueenside, 0
		between, kingPath = []int{1, 2, 3}, []int{3, 2}
	default:
		return false
	}
	if c == Black {
		right <<= 2
	}
	if p.Castling&right == 0 {
		return false
	}
	if p.board[NewSquare(rookFile, rank)] != (Piece{Type: Rook, Color: c}) {
		return false
	}
	for _, f := range between {
		if !p.board[NewSquare(f, rank)].IsEmpty() {
			return false
		}
	}
	opponent := c.Opposite()
	if p.isAttacked(m.From, opponent) {
		return false
	}
	for _, f := range kingPath {
		if p.isAttacked(NewSquare(f, rank), opponent) {
			return false
		}
	}
	return true
}

// isAttacked scans outward from sq for pieces of color by that attack it.
func (p Position) isAttacked(sq Square, by Color) bool {
	if !sq.Valid() {
		return false
	}
	f, r := sq.File(), sq.Rank()

	pawnRank := r - pawnDirection(by)
	for _, df := range [2]int{-1, 1} {
		if pc, ok := p.pieceAt(f+df, pawnRank); ok && pc == (Piece{Type: Pawn, Color: by}) {
			return true
		}
	}
	for _, o := range knightOffsets {
		if pc, ok := p.pieceAt(f+o[0], r+o[1]); ok && pc == (Piece{Type: Knight, Color: by}) {
			return true
		}
	}
	for _, o := range kingOffsets {
		if pc, ok := p.pieceAt(f+o[0], r+o[1]); ok && pc == (Piece{Type: King, Color: by}) {
			return true
		}
	}
	if p.rayAttack(f, r, straightRays, by, Rook) || p.rayAttack(f, r, diagonalRays, by, Bishop) {
		return true
	}
	return false
}

func (p Position) rayAttack(f, r int, rays [4][2]int, by Color, slider PieceType) bool {
	for _, d := range rays {
		for i := 1; ; i++ {
			pc, ok := p.pieceAt(f+d[0]*i, r+d[1]*i)
			if !ok {
				break
			}
			if pc.IsEmpty() {
				continue
			}
			if pc.Color == by && (pc.Type == slider || pc.Type == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// InCheck reports whether the side to move has its king attacked.
func (p Position) InCheck() bool {
	return p.isAttacked(p.kingSquare(p.Turn), p.Turn.Opposite())
}

// Apply plays m on a copy of p. m must already be legal.
func (p Position) Apply(m Move) Position {
	next := p
	moved := p.board[m.From]
	capture := !p.board[m.To].IsEmpty()

	next.board[m.From] = Piece{}
	switch moved.Type {
	case Pawn:
		if m.To == p.EnPassant && m.From.File() != m.To.File() && !capture {
			next.board[NewSquare(m.To.File(), m.From.Rank())] = Piece{}
			capture = true
		}
	case King:
		if d := m.To.File() - m.From.File(); d == 2 || d == -2 {
			rank := m.From.Rank()
			rookFrom, rookTo := NewSquare(7, rank), NewSquare(5, rank)
			if d < 0 {
				rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
			}
			next.board[rookTo] = next.board[rookFrom]
			next.board[rookFrom] = Piece{}
		}
	}

	placed := moved
	if moved.Type == Pawn && m.Promotion != NoPieceType {
		placed.Type = m.Promotion
	}
	next.board[m.To] = placed

	next.EnPassant = NoSquare
	if moved.Type == Pawn && abs(m.To.Rank()-m.From.Rank()) == 2 {
		next.EnPassant = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	}

	if moved.Type == King {
		if moved.Color == White {
			next.Castling &^= WhiteKingside | WhiteQueenside
		} else {
			next.Castling &^= BlackKingside | BlackQueenside
		}
	}
	next.Castling &^= cornerRights(m.From) | cornerRights(m.To)

	if moved.Type == Pawn || capture {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock++
	}
	if p.Turn == Black {
		next.FullMoveNumber++
	}
	next.Turn = p.Turn.Opposite()
	return next
}

// cornerRights returns the castling right tied to a rook home square.
func cornerRights(sq Square) CastlingRights {
	switch sq {
	case NewSquare(0, 0):
		return WhiteQueenside
	case NewSquare(7, 0):
		return WhiteKingside
	case NewSquare(0, 7):
		return BlackQueenside
	case NewSquare(7, 7):
		return BlackKingside
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
