package board

// cornerRights maps the four rook corners to the right that is lost when a
// piece leaves or is captured on them.
var cornerRights = map[Square]CastlingRights{
	A1: WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	A8: BlackQueenSideCastle,
	H8: BlackKingSideCastle,
}

// Play returns the position after moving the piece on from to to. promo is
// the piece a pawn becomes on the last rank and is ignored for any other
// move; NoPieceType leaves the pawn unchanged. Play does not check legality; the receiver is not modified.
func (p Position) Play(from, to Square, promo PieceType) Position {
	next := p
	pc := p.Board[from]
	us := pc.Color()
	captured := p.Board[to]

	if p.IsEnPassant(from, to) {
		victim := NewSquare(to.File(), from.Rank())
		captured = next.Board[victim]
		next.Board[victim] = NoPiece
	}

	moved := pc
	if promo != NoPieceType && p.IsPromotion(from, to) {
		moved = NewPiece(promo, us)
	}
	next.Board[to] = moved
	next.Board[from] = NoPiece

	if p.IsCastling(from, to) {
		rookFrom, rookTo := castlingRookSquares(from, to)
		next.Board[rookTo] = next.Board[rookFrom]
		next.Board[rookFrom] = NoPiece
	}

	if pc.Type() == King {
		next.CastlingRights &^= CastleRight(us, true) | CastleRight(us, false)
	}
	if pc.Type() == Rook {
		next.CastlingRights &^= cornerRights[from]
	}
	if captured.Type() == Rook {
		next.CastlingRights &^= cornerRights[to]
	}

	next.EnPassant = NoSquare
	if pc.Type() == Pawn && (to.Rank()-from.Rank() == 2 || from.Rank()-to.Rank() == 2) {
		next.EnPassant = NewSquare(from.File(), (from.Rank()+to.Rank())/2)
	}

	if pc.Type() == Pawn || captured != NoPiece {
		next.HalfMoveClock = 0
	} else {
		next.HalfMoveClock = p.HalfMoveClock + 1
	}
	if us == Black {
		next.FullMoveNumber = p.FullMoveNumber + 1
	}
	next.SideToMove = us.Other()
	return next
}
