package engine

import (
	"math/rand"

	"github.com/hailam/chessarena/internal/board"
)

// GenerateChess960Position returns a random Fischer Random starting
// position drawn from rng.
//
// Placement order: one bishop on an even file and one on an odd file, the
// queen on a free file, two knights on two further free files, and rook,
// king, rook on the last three free files in ascending order.
func GenerateChess960Position(rng *rand.Rand) board.Position {
	var rank [8]board.PieceType
	for i := range rank {
		rank[i] = board.NoPieceType
	}

	rank[2*rng.Intn(4)] = board.Bishop
	rank[2*rng.Intn(4)+1] = board.Bishop

	place := func(pt board.PieceType) {
		free := freeFiles(&rank)
		rank[free[rng.Intn(len(free))]] = pt
	}
	place(board.Queen)
	place(board.Knight)
	place(board.Knight)

	free := freeFiles(&rank)
	rank[free[0]] = board.Rook
	rank[free[1]] = board.King
	rank[free[2]] = board.Rook

	return board.PositionFromBackRank(rank)
}

func freeFiles(rank *[8]board.PieceType) []int {
	free := make([]int, 0, 8)
	for f, pt := range rank {
		if pt == board.NoPieceType {
			free = append(free, f)
		}
	}
	return free
}
