package board

// delta is a (file, rank) step.
type delta struct{ df, dr int }

var (
	knightDeltas = [8]delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = [8]delta{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

	diagonals = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	straights = []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	allRays   = append(append([]delta{}, diagonals...), straights...)
)

// AttacksSquare reports whether any piece of color by attacks target on b.
// Whose turn it is plays no part.
func AttacksSquare(b *Board, target Square, by Color) bool {
	for _, d := range knightDeltas {
		if sq, ok := target.offset(d.df, d.dr); ok && b[sq].Is(Knight, by) {
			return true
		}
	}

	// A pawn of color by attacks target from one rank behind it, seen from
	// the pawn's own direction of travel.
	for _, df := range [2]int{-1, 1} {
		if sq, ok := target.offset(df, -by.forward()); ok && b[sq].Is(Pawn, by) {
			return true
		}
	}

	for _, d := range kingDeltas {
		if sq, ok := target.offset(d.df, d.dr); ok && b[sq].Is(King, by) {
			return true
		}
	}

	if rayAttack(b, target, diagonals, by, Bishop) || rayAttack(b, target, straights, by, Rook) {
		return true
	}
	return false
}

// rayAttack walks each ray from target and reports whether the first piece
// met is a slider of color by of type slider or a queen.
func rayAttack(b *Board, target Square, rays []delta, by Color, slider PieceType) bool {
	for _, d := range rays {
		sq := target
		for {
			next, ok := sq.offset(d.df, d.dr)
			if !ok {
				break
			}
			sq = next
			pc := b[sq]
			if pc == NoPiece {
				continue
			}
			if pc.Color() == by && (pc.Type() == slider || pc.Type() == Queen) {
				return true
			}
			break
		}
	}
	return false
}
