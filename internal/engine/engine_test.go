package engine

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/hailam/chessarena/internal/board"
)

func newTestEngine(t *testing.T, fen string) *Engine {
	t.Helper()
	eng := New(WithRand(rand.New(rand.NewSource(1))))
	if fen != "" {
		if err := eng.LoadFEN(fen); err != nil {
			t.Fatalf("LoadFEN(%q): %v", fen, err)
		}
	}
	return eng
}

func playUCI(t *testing.T, eng *Engine, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if err := eng.ApplyMoveUCI(m); err != nil {
			t.Fatalf("ApplyMoveUCI(%s): %v", m, err)
		}
	}
}

func playSAN(t *testing.T, eng *Engine, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if err := eng.ApplyMoveSAN(m); err != nil {
			t.Fatalf("ApplyMoveSAN(%s): %v", m, err)
		}
	}
}

func TestNewEngine(t *testing.T) {
	eng := New()
	if got := eng.FEN(); got != board.StartFEN {
		t.Errorf("FEN() = %s, want %s", got, board.StartFEN)
	}
	if got := eng.StartFEN(); got != board.StartFEN {
		t.Errorf("StartFEN() = %s", got)
	}
	if len(eng.History()) != 0 {
		t.Error("new engine has history")
	}
	if eng.Status() != board.Ongoing {
		t.Errorf("Status() = %v", eng.Status())
	}
}

func TestApplyMoveUCIRejects(t *testing.T) {
	tests := []struct {
		move string
		want error
	}{
		{"e2e5", ErrIllegalMove},
		{"e3e4", ErrNoPieceAtSquare},
		{"e7e5", ErrWrongTurn},
		{"e2e4q", ErrIllegalMove},
		{"E2E4", ErrInvalidFormat},
		{"e2", ErrInvalidFormat},
		{"e2e4k", ErrInvalidFormat},
		{"i2i4", ErrInvalidFormat},
		{"", ErrInvalidFormat},
	}

	for _, tc := range tests {
		t.Run(tc.move, func(t *testing.T) {
			eng := New()
			before := eng.FEN()

			err := eng.ApplyMoveUCI(tc.move)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ApplyMoveUCI(%q) = %v, want %v", tc.move, err, tc.want)
			}
			if !errors.Is(err, ErrInvalidMove) {
				t.Errorf("error %v does not match ErrInvalidMove", err)
			}
			var me *MoveError
			if !errors.As(err, &me) || me.Move != tc.move {
				t.Errorf("error %v does not carry the move text", err)
			}
			if eng.FEN() != before || len(eng.History()) != 0 {
				t.Error("rejected move changed the session")
			}
		})
	}
}

func TestWrongTurnMessage(t *testing.T) {
	err := New().ApplyMoveUCI("e7e5")
	if err == nil {
		t.Fatal("expected error")
	}
	if msg := err.Error(); !strings.Contains(msg, "white's turn") || !strings.Contains(msg, "e7") {
		t.Errorf("unhelpful message: %s", msg)
	}
}

func TestEnPassantSquareLifetime(t *testing.T) {
	eng := New()
	playUCI(t, eng, "e2e4")
	if got := eng.Position().EnPassant; got != board.E3 {
		t.Errorf("EnPassant after e2e4 = %v, want e3", got)
	}
	if !strings.Contains(eng.FEN(), " b KQkq e3 0 1") {
		t.Errorf("FEN() = %s", eng.FEN())
	}
	playUCI(t, eng, "g8f6")
	if got := eng.Position().EnPassant; got != board.NoSquare {
		t.Errorf("EnPassant after g8f6 = %v, want none", got)
	}
}

func TestFoolsMate(t *testing.T) {
	eng := New()
	moves := []string{"f3", "e5", "g4", "Qh4#"}
	playSAN(t, eng, moves...)

	if got := eng.SANHistory(); strings.Join(got, " ") != strings.Join(moves, " ") {
		t.Errorf("SANHistory() = %v, want %v", got, moves)
	}
	if eng.Status() != board.Checkmate {
		t.Errorf("Status() = %v, want checkmate", eng.Status())
	}
	if got := eng.UCIHistory(); strings.Join(got, " ") != "f2f3 e7e5 g2g4 d8h4" {
		t.Errorf("UCIHistory() = %v", got)
	}
}

func TestUCIAndSANAgree(t *testing.T) {
	uci := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5c6", "d7c6", "e1g1", "c8g4", "h2h3", "h7h5"}
	san := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Bxc6", "dxc6", "O-O", "Bg4", "h3", "h5"}

	a, b := New(), New()
	for i := range uci {
		playUCI(t, a, uci[i])
		playSAN(t, b, san[i])
		if a.FEN() != b.FEN() {
			t.Fatalf("after %s/%s: %s != %s", uci[i], san[i], a.FEN(), b.FEN())
		}
	}
	if got := a.SANHistory(); strings.Join(got, " ") != strings.Join(san, " ") {
		t.Errorf("SANHistory() = %v, want %v", got, san)
	}
}

func TestSANDisambiguation(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		san     string
		from    board.Square
		history string
	}{
		{"by file", "4k3/8/8/6N1/8/2N5/8/4K3 w - - 0 1", "Nce4", board.C3, "Nce4"},
		{"by rank", "4k3/8/8/2N5/8/2N5/8/4K3 w - - 0 1", "N3e4", board.C3, "N3e4"},
		{"by square", "4k3/8/8/2N5/8/2N3N1/8/4K3 w - - 0 1", "Nc3e4", board.C3, "Nc3e4"},
		{"unique piece", "4k3/8/8/8/8/2N5/8/4K3 w - - 0 1", "Nce4", board.C3, "Ne4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eng := newTestEngine(t, tc.fen)
			playSAN(t, eng, tc.san)

			h := eng.History()
			if h[0].From != tc.from || h[0].To != board.E4 {
				t.Errorf("played %s%s, want %se4", h[0].From, h[0].To, tc.from)
			}
			if got := eng.SANHistory()[0]; got != tc.history {
				t.Errorf("SANHistory()[0] = %s, want %s", got, tc.history)
			}
		})
	}
}

func TestSANRejects(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		san  string
		want error
	}{
		{"ambiguous by file", "4k3/8/8/6N1/8/2N5/8/4K3 w - - 0 1", "Ne4", ErrAmbiguousMove},
		{"ambiguous by rank", "4k3/8/8/2N5/8/2N5/8/4K3 w - - 0 1", "Nce4", ErrAmbiguousMove},
		{"no such move", "", "Nf4", ErrNoLegalMoveMatches},
		{"no such piece", "", "Qh5", ErrNoLegalMoveMatches},
		{"too short", "", "N", ErrInvalidFormat},
		{"bad square", "", "Nz9", ErrInvalidFormat},
		{"junk hint", "", "N?f3", ErrInvalidFormat},
		{"castle blocked", "", "O-O", ErrIllegalMove},
		{"castle without king", "4k3/8/8/8/8/8/8/4R2K w - - 0 1", "O-O", ErrIllegalMove},
		{"long castle without king", "3k4/8/8/8/8/8/8/K3Q3 w - - 0 1", "O-O-O", ErrIllegalMove},
		{"promotion off last rank", "", "e4=Q", ErrIllegalMove},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eng := newTestEngine(t, tc.fen)
			before := eng.FEN()

			err := eng.ApplyMoveSAN(tc.san)
			if !errors.Is(err, tc.want) {
				t.Fatalf("ApplyMoveSAN(%q) = %v, want %v", tc.san, err, tc.want)
			}
			var me *MoveError
			if !errors.As(err, &me) || me.Move != tc.san {
				t.Errorf("error %v does not carry the SAN text", err)
			}
			if eng.FEN() != before || len(eng.History()) != 0 {
				t.Error("rejected move changed the session")
			}
		})
	}
}

func TestSANPromotionForms(t *testing.T) {
	const fen = "8/P7/8/8/8/8/8/k6K w - - 0 1"

	tests := []struct {
		move    string
		uci     bool
		piece   board.Piece
		history string
	}{
		{"a8=Q", false, board.WhiteQueen, "a8=Q+"},
		{"a8Q", false, board.WhiteQueen, "a8=Q+"},
		{"a8=N", false, board.WhiteKnight, "a8=N"},
		{"a8r+", false, board.WhiteRook, "a8=R+"},
		{"a7a8b", true, board.WhiteBishop, "a8=B"},
		{"a7a8", true, board.WhiteQueen, "a8=Q+"},
	}

	for _, tc := range tests {
		t.Run(tc.move, func(t *testing.T) {
			eng := newTestEngine(t, fen)
			if tc.uci {
				playUCI(t, eng, tc.move)
			} else {
				playSAN(t, eng, tc.move)
			}
			pos := eng.Position()
			if got := pos.PieceAt(board.A8); got != tc.piece {
				t.Errorf("a8 holds %v, want %v", got, tc.piece)
			}
			if got := eng.SANHistory()[0]; got != tc.history {
				t.Errorf("SANHistory()[0] = %s, want %s", got, tc.history)
			}
		})
	}
}

func TestCastlingBothSpellings(t *testing.T) {
	eng := newTestEngine(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	playSAN(t, eng, "O-O", "0-0-0")

	if got, want := eng.FEN(), "2kr3r/8/8/8/8/8/8/R4RK1 w - - 2 2"; got != want {
		t.Errorf("FEN() = %s, want %s", got, want)
	}
	if got := eng.SANHistory(); strings.Join(got, " ") != "O-O O-O-O" {
		t.Errorf("SANHistory() = %v", got)
	}
	h := eng.History()
	if !h[0].CastleKingside || h[0].CastleQueenside || !h[1].CastleQueenside {
		t.Errorf("castling flags wrong: %+v %+v", h[0], h[1])
	}
}

func TestEnPassantCaptureRecord(t *testing.T) {
	eng := New()
	playSAN(t, eng, "e4", "a6", "e5", "d5", "exd6")

	h := eng.History()
	last := h[len(h)-1]
	if last.Captured != board.Pawn {
		t.Errorf("Captured = %v, want pawn", last.Captured)
	}
	if got := eng.SANHistory()[4]; got != "exd6" {
		t.Errorf("SAN = %s, want exd6", got)
	}
	if pos := eng.Position(); pos.PieceAt(board.D5) != board.NoPiece {
		t.Error("captured pawn still on d5")
	}
}

func TestLoadFEN(t *testing.T) {
	eng := New()
	playUCI(t, eng, "e2e4")
	before := eng.FEN()

	err := eng.LoadFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w")
	if !errors.Is(err, board.ErrFieldCount) || !errors.Is(err, board.ErrInvalidFEN) {
		t.Fatalf("LoadFEN = %v, want field count error", err)
	}
	if eng.FEN() != before || len(eng.History()) != 1 {
		t.Error("failed LoadFEN changed the session")
	}

	const fen = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	if err := eng.LoadFEN(fen); err != nil {
		t.Fatal(err)
	}
	if eng.FEN() != fen || eng.StartFEN() != fen {
		t.Errorf("FEN() = %s, StartFEN() = %s", eng.FEN(), eng.StartFEN())
	}
	if len(eng.History()) != 0 {
		t.Error("LoadFEN kept the history")
	}
	if err := eng.LoadFEN(eng.FEN()); err != nil || eng.FEN() != fen {
		t.Errorf("LoadFEN(FEN()) is not a fixed point: %v", err)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	eng := New()
	playUCI(t, eng, "e2e4", "e7e5")

	pos := eng.Position()
	pos.Board[board.E4] = board.NoPiece

	h := eng.History()
	h[0].Before.Board[board.E2] = board.NoPiece
	h[1] = MoveRecord{}

	if live := eng.Position(); live.PieceAt(board.E4) != board.WhitePawn {
		t.Error("Position() aliases the live board")
	}
	fresh := eng.History()
	if fresh[0].Before.PieceAt(board.E2) != board.WhitePawn || fresh[1].From != board.E7 {
		t.Error("History() aliases the stored records")
	}
	if got := eng.SANHistory(); strings.Join(got, " ") != "e4 e5" {
		t.Errorf("SANHistory() = %v", got)
	}
}

func TestEngineLegalMoves(t *testing.T) {
	eng := New()
	if got := eng.LegalMoves(board.E2); len(got) != 2 {
		t.Errorf("LegalMoves(e2) = %v", got)
	}
	// The side not on move still gets its destinations.
	if got := eng.LegalMoves(board.G8); len(got) != 2 {
		t.Errorf("LegalMoves(g8) = %v", got)
	}
	if got := eng.LegalMoves(board.E4); got != nil {
		t.Errorf("LegalMoves(e4) = %v, want nil", got)
	}
	if got := eng.LegalMoves(board.NoSquare); got != nil {
		t.Errorf("LegalMoves(none) = %v, want nil", got)
	}
}

func TestResetClearsHistory(t *testing.T) {
	eng := New(WithRand(rand.New(rand.NewSource(7))))
	playUCI(t, eng, "e2e4")

	eng.Reset(false)
	if eng.FEN() != board.StartFEN || len(eng.History()) != 0 {
		t.Errorf("Reset(false) left %s with %d moves", eng.FEN(), len(eng.History()))
	}

	eng.Reset(true)
	if len(eng.History()) != 0 || eng.StartFEN() != eng.FEN() {
		t.Error("Reset(true) did not start a fresh game")
	}
	if !strings.HasSuffix(eng.FEN(), " w KQkq - 0 1") {
		t.Errorf("Chess960 FEN = %s", eng.FEN())
	}
}
