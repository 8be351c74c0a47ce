package board

// LegalMoves returns the destinations of the piece on from that do not
// leave its own king attacked. Each candidate is played on a throwaway copy
// of the board and the king is looked up afterwards, so pins, discovered
// checks and moving into check all fall out of the same test.
func (p *Position) LegalMoves(from Square) []Square {
	pc := p.PieceAt(from)
	if pc == NoPiece {
		return nil
	}
	us := pc.Color()
	them := us.Other()

	pseudo := p.PseudoLegalMoves(from)
	legal := pseudo[:0]
	for _, to := range pseudo {
		b := p.simulate(from, to)
		ksq := b.KingSquare(us)
		if ksq != NoSquare && !AttacksSquare(&b, ksq, them) {
			legal = append(legal, to)
		}
	}
	return legal
}

// IsLegal reports whether the piece on from may legally move to to.
func (p *Position) IsLegal(from, to Square) bool {
	for _, sq := range p.LegalMoves(from) {
		if sq == to {
			return true
		}
	}
	return false
}

// simulate returns a copy of the board with the move played, including the
// en passant victim removal and the castling rook hop. Promotion does not
// change which squares are attacked by the mover's side in a way that
// matters for its own king, so it is not applied here.
func (p *Position) simulate(from, to Square) Board {
	b := p.Board
	pc := b[from]

	if p.IsEnPassant(from, to) {
		b[NewSquare(to.File(), from.Rank())] = NoPiece
	}
	if p.IsCastling(from, to) {
		rookFrom, rookTo := castlingRookSquares(from, to)
		b[rookTo] = b[rookFrom]
		b[rookFrom] = NoPiece
	}

	b[to] = pc
	b[from] = NoPiece
	return b
}

// castlingRookSquares returns where the rook starts and lands for a king
// moving from -> to.
func castlingRookSquares(from, to Square) (Square, Square) {
	rank := from.Rank()
	if to.File() > from.File() {
		return NewSquare(7, rank), NewSquare(to.File()-1, rank)
	}
	return NewSquare(0, rank), NewSquare(to.File()+1, rank)
}

// IsInCheck reports whether c's king is attacked.
func (p *Position) IsInCheck(c Color) bool {
	ksq := p.Board.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return AttacksSquare(&p.Board, ksq, c.Other())
}

// HasAnyLegalMove reports whether some piece of c has a legal move.
func (p *Position) HasAnyLegalMove(c Color) bool {
	for sq := A1; sq <= H8; sq++ {
		if pc := p.Board[sq]; pc != NoPiece && pc.Color() == c && len(p.LegalMoves(sq)) > 0 {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether c is in check with no legal move.
func (p *Position) IsCheckmate(c Color) bool {
	return p.IsInCheck(c) && !p.HasAnyLegalMove(c)
}

// IsStalemate reports whether c is not in check but has no legal move.
func (p *Position) IsStalemate(c Color) bool {
	return !p.IsInCheck(c) && !p.HasAnyLegalMove(c)
}

// GameStatus summarises the position for the side to move.
type GameStatus uint8

const (
	Ongoing GameStatus = iota
	Check
	Checkmate
	Stalemate
)

// String returns the status name.
func (s GameStatus) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Check:
		return "check"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "unknown"
	}
}

// Status classifies the position for the side to move.
func (p *Position) Status() GameStatus {
	us := p.SideToMove
	inCheck := p.IsInCheck(us)
	hasMove := p.HasAnyLegalMove(us)
	switch {
	case inCheck && !hasMove:
		return Checkmate
	case !hasMove:
		return Stalemate
	case inCheck:
		return Check
	default:
		return Ongoing
	}
}
