package board

// PseudoLegalMoves returns the destinations the piece on from can reach by
// its movement rules alone, without checking whether its own king is left
// in check. Promotion is a property of the destination rank and is left to
// the caller.
func (p *Position) PseudoLegalMoves(from Square) []Square {
	pc := p.PieceAt(from)
	if pc == NoPiece {
		return nil
	}
	us := pc.Color()

	switch pc.Type() {
	case Pawn:
		return p.pawnMoves(from, us)
	case Knight:
		return p.stepMoves(from, us, knightDeltas[:])
	case Bishop:
		return p.slideMoves(from, us, diagonals)
	case Rook:
		return p.slideMoves(from, us, straights)
	case Queen:
		return p.slideMoves(from, us, allRays)
	case King:
		return append(p.stepMoves(from, us, kingDeltas[:]), p.castlingMoves(from, us)...)
	default:
		return nil
	}
}

// pawnMoves generates pushes, the double step from the start rank, diagonal
// captures and the en passant capture.
func (p *Position) pawnMoves(from Square, us Color) []Square {
	var moves []Square
	dir := us.forward()

	if one, ok := from.offset(0, dir); ok && p.IsEmpty(one) {
		moves = append(moves, one)
		if from.Rank() == us.pawnRank() {
			if two, ok := from.offset(0, 2*dir); ok && p.IsEmpty(two) {
				moves = append(moves, two)
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := from.offset(df, dir)
		if !ok {
			continue
		}
		target := p.Board[to]
		if target != NoPiece && target.Color() != us {
			moves = append(moves, to)
		} else if target == NoPiece && to == p.enPassantTarget(us) {
			moves = append(moves, to)
		}
	}
	return moves
}

// stepMoves generates single-step targets that are empty or hold an enemy.
func (p *Position) stepMoves(from Square, us Color, deltas []delta) []Square {
	var moves []Square
	for _, d := range deltas {
		to, ok := from.offset(d.df, d.dr)
		if !ok {
			continue
		}
		if target := p.Board[to]; target == NoPiece || target.Color() != us {
			moves = append(moves, to)
		}
	}
	return moves
}

// slideMoves walks each ray, stopping before a friendly piece and on an
// enemy piece.
func (p *Position) slideMoves(from Square, us Color, rays []delta) []Square {
	var moves []Square
	for _, d := range rays {
		sq := from
		for {
			next, ok := sq.offset(d.df, d.dr)
			if !ok {
				break
			}
			sq = next
			target := p.Board[sq]
			if target == NoPiece {
				moves = append(moves, sq)
				continue
			}
			if target.Color() != us {
				moves = append(moves, sq)
			}
			break
		}
	}
	return moves
}

// castlingMoves returns the king destinations for castling. The king must
// stand on its e-file home square and its rook on the corner of that wing.
func (p *Position) castlingMoves(from Square, us Color) []Square {
	home := us.homeRank()
	if from != NewSquare(4, home) {
		return nil
	}
	them := us.Other()
	if AttacksSquare(&p.Board, from, them) {
		return nil
	}

	var moves []Square
	for _, kingSide := range [2]bool{true, false} {
		if !p.CastlingRights.CanCastle(us, kingSide) {
			continue
		}
		rookFile, step, dest := 0, -1, 2
		if kingSide {
			rookFile, step, dest = 7, 1, 6
		}
		if !p.Board[NewSquare(rookFile, home)].Is(Rook, us) {
			continue
		}
		clear := true
		for f := 4 + step; f != rookFile; f += step {
			if !p.IsEmpty(NewSquare(f, home)) {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		safe := true
		for f := 4 + step; f != dest+step; f += step {
			if AttacksSquare(&p.Board, NewSquare(f, home), them) {
				safe = false
				break
			}
		}
		if safe {
			moves = append(moves, NewSquare(dest, home))
		}
	}
	return moves
}

// IsCastling reports whether moving the piece on from to to is a castling
// move (a king moving two files).
func (p *Position) IsCastling(from, to Square) bool {
	if p.PieceAt(from).Type() != King {
		return false
	}
	df := to.File() - from.File()
	return df == 2 || df == -2
}

// IsEnPassant reports whether moving the piece on from to to captures en
// passant.
func (p *Position) IsEnPassant(from, to Square) bool {
	pc := p.PieceAt(from)
	return pc.Type() == Pawn && to == p.enPassantTarget(pc.Color()) && p.IsEmpty(to) && from.File() != to.File()
}

// enPassantTarget returns the en passant square if a pawn of color c could
// capture onto it: rank 6 for white, rank 3 for black.
func (p *Position) enPassantTarget(c Color) Square {
	if !p.EnPassant.IsValid() || p.EnPassant.Rank() != c.Other().pawnRank()-c.forward() {
		return NoSquare
	}
	return p.EnPassant
}

// IsPromotion reports whether moving the piece on from to to reaches the
// last rank with a pawn.
func (p *Position) IsPromotion(from, to Square) bool {
	pc := p.PieceAt(from)
	return pc.Type() == Pawn && to.Rank() == pc.Color().Other().homeRank()
}
