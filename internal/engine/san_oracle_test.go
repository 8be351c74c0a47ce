package engine

import (
	"math/rand"
	"testing"

	"github.com/notnil/chess"

	"github.com/hailam/chessarena/internal/board"
)

// TestSANMatchesOracle plays random games and checks every generated SAN
// string, and the size of every legal move list, against an independent
// chess library.
func TestSANMatchesOracle(t *testing.T) {
	games := 20
	if testing.Short() {
		games = 3
	}

	for seed := int64(1); seed <= int64(games); seed++ {
		rng := rand.New(rand.NewSource(seed))
		eng := New()
		ref := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
		var want []string

		for ply := 0; ply < 160; ply++ {
			if eng.Status() == board.Checkmate || eng.Status() == board.Stalemate || ref.Outcome() != chess.NoOutcome {
				break
			}

			pos := eng.Position()
			moves := pos.LegalMoveList()
			valid := ref.ValidMoves()
			if len(moves) != len(valid) {
				t.Fatalf("seed %d ply %d: %d legal moves, oracle has %d\n%s", seed, ply, len(moves), len(valid), eng.FEN())
			}

			m := moves[rng.Intn(len(moves))]
			var refMove *chess.Move
			for _, vm := range valid {
				if vm.String() == m.String() {
					refMove = vm
					break
				}
			}
			if refMove == nil {
				t.Fatalf("seed %d ply %d: oracle rejects %s in %s", seed, ply, m, eng.FEN())
			}

			want = append(want, chess.AlgebraicNotation{}.Encode(ref.Position(), refMove))
			if err := ref.Move(refMove); err != nil {
				t.Fatalf("oracle move %s: %v", refMove, err)
			}
			if err := eng.ApplyMoveUCI(m.String()); err != nil {
				t.Fatalf("seed %d ply %d: %v", seed, ply, err)
			}
		}

		got := eng.SANHistory()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("seed %d move %d: SAN %s, oracle %s (before: %s)", seed, i+1, got[i], want[i], eng.History()[i].Before.FEN())
			}
		}

		replay := New()
		for i, san := range got {
			if err := replay.ApplyMoveSAN(san); err != nil {
				t.Fatalf("seed %d: replaying move %d: %v", seed, i+1, err)
			}
		}
		if replay.FEN() != eng.FEN() {
			t.Errorf("seed %d: SAN replay reached %s, want %s", seed, replay.FEN(), eng.FEN())
		}
	}
}
